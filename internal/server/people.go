package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tartampluch/lifereel/internal/age"
	"github.com/tartampluch/lifereel/internal/config"
	"github.com/tartampluch/lifereel/internal/locale"
)

type personView struct {
	age.Person
	Age string `json:"age,omitempty"`
}

type rangeView struct {
	Bucket age.Bucket `json:"bucket"`
	Label  string     `json:"label"`
}

type rangesResponse struct {
	AllPhotos string      `json:"all_photos"`
	Ranges    []rangeView `json:"ranges"`
}

type groupsRequest struct {
	Photos []age.Photo `json:"photos"`
}

type groupView struct {
	Bucket age.Bucket  `json:"bucket"`
	Label  string      `json:"label"`
	Photos []age.Photo `json:"photos"`
}

type groupsResponse struct {
	Groups   []groupView `json:"groups"`
	Excluded int         `json:"excluded"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handlePeople lists the roster with each person's current age.
func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.ready(w)
	if !ok {
		return
	}
	tr := s.translator(r)
	now := s.Now()

	out := make([]personView, 0, len(snap.people))
	for _, p := range snap.people {
		out = append(out, personView{Person: p, Age: tr.AgeText(p, s.Calc.Calculate(p, now))})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRanges lists the stacks a person can show, in display order.
func (s *Server) handleRanges(w http.ResponseWriter, r *http.Request) {
	p, ok := s.person(w, r)
	if !ok {
		return
	}
	tr := s.translator(r)

	buckets := age.Ranges(p)
	out := rangesResponse{AllPhotos: tr.AllPhotos(), Ranges: make([]rangeView, 0, len(buckets))}
	for _, b := range buckets {
		out.Ranges = append(out.Ranges, rangeView{Bucket: b, Label: tr.Label(b)})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGroups stacks the posted photos for a person.
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p, ok := s.person(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)
	var req groupsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, config.HTTPMsgTooMany)
			return
		}
		writeError(w, http.StatusBadRequest, config.HTTPMsgBadBody)
		return
	}
	if len(req.Photos) > config.MaxRequestPhotos {
		writeError(w, http.StatusRequestEntityTooLarge, config.HTTPMsgTooMany)
		return
	}

	view := r.URL.Query().Get(config.QueryView)
	var groups []age.Group
	switch view {
	case config.ViewStrict:
		groups = s.Calc.GroupAndSort(p, req.Photos)
	case config.ViewStacks:
		groups = s.Calc.Stacks(p, req.Photos)
	default:
		groups = s.Calc.GroupForDisplay(p, req.Photos)
	}

	tr := s.translator(r)
	out := groupsResponse{Groups: make([]groupView, 0, len(groups))}
	placed := 0
	for _, g := range groups {
		out.Groups = append(out.Groups, groupView{Bucket: g.Bucket, Label: tr.Label(g.Bucket), Photos: g.Photos})
		placed += len(g.Photos)
		s.Metrics.ObserveClassified(g.Bucket.Kind().String(), len(g.Photos))
	}
	out.Excluded = len(req.Photos) - placed
	s.Metrics.ObserveExcluded(out.Excluded)

	slog.Debug(config.MsgGrouped,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyPerson, p.ID.String(),
		config.LogKeyCount, len(req.Photos),
		config.LogKeyGroups, len(out.Groups),
		config.LogKeyExcluded, out.Excluded,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, out)
}

// person resolves the {id} URL parameter against the current roster.
func (s *Server) person(w http.ResponseWriter, r *http.Request) (age.Person, bool) {
	snap, ok := s.ready(w)
	if !ok {
		return age.Person{}, false
	}
	id, err := uuid.Parse(chi.URLParam(r, config.URLParamID))
	if err != nil {
		writeError(w, http.StatusBadRequest, config.HTTPMsgBadID)
		return age.Person{}, false
	}
	p, ok := snap.byID[id]
	if !ok {
		writeError(w, http.StatusNotFound, config.HTTPMsgNotFound)
		return age.Person{}, false
	}
	return p, true
}

func (s *Server) translator(r *http.Request) *locale.Translator {
	if lang := r.URL.Query().Get(config.QueryLang); lang != "" {
		return s.Translator.With(lang)
	}
	return s.Translator
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
