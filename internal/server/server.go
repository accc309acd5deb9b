// Package server publishes the milestone calendar and the photo stacking API over HTTP.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tartampluch/lifereel/internal/age"
	"github.com/tartampluch/lifereel/internal/config"
	"github.com/tartampluch/lifereel/internal/locale"
	"github.com/tartampluch/lifereel/internal/metrics"
)

// snapshot is the immutable result of one sync as served to clients.
type snapshot struct {
	ics          []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers

	people []age.Person
	byID   map[uuid.UUID]age.Person
}

// Server serves the calendar feed and the people API.
type Server struct {
	// snap uses atomic.Pointer for lock-free reads; it is replaced on every sync.
	snap atomic.Pointer[snapshot]

	Addr       string
	Calc       age.Calculator
	Translator *locale.Translator
	Metrics    *metrics.Metrics

	// Now returns the reference time for current ages.
	Now func() time.Time
}

// New creates a server listening on addr once started.
func New(addr string, calc age.Calculator, tr *locale.Translator, m *metrics.Metrics) *Server {
	if tr == nil {
		tr = locale.New(config.DefaultLanguage)
	}
	return &Server{
		Addr:       addr,
		Calc:       calc,
		Translator: tr,
		Metrics:    m,
		Now:        time.Now,
	}
}

// Register mounts the routes on r.
func (s *Server) Register(r chi.Router) {
	r.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	r.HandleFunc(config.RouteCalendar, s.handleCalendarRequest)
	r.Get(config.RoutePeople, s.handlePeople)
	r.Get(config.RouteRanges, s.handleRanges)
	r.Post(config.RouteGroups, s.handleGroups)
	if s.Metrics != nil {
		r.Method(http.MethodGet, config.RouteMetrics, s.Metrics.Handler())
	}
}

// Handler returns the complete router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.Addr,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served calendar and roster.
func (s *Server) Update(ics []byte, people []age.Person) {
	hash := sha256.Sum256(ics)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	byID := make(map[uuid.UUID]age.Person, len(people))
	for _, p := range people {
		byID[p.ID] = p
	}

	s.snap.Store(&snapshot{
		ics:          ics,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
		people:       people,
		byID:         byID,
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(ics),
		config.LogKeyCount, len(people),
		config.LogKeyETag, etag,
	)
}

// ready returns the current snapshot, or answers 503 when no sync finished yet.
func (s *Server) ready(w http.ResponseWriter) (*snapshot, bool) {
	snap := s.snap.Load()
	if snap == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return nil, false
	}
	return snap, true
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *Server) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	snap, ok := s.ready(w)
	if !ok {
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, snap.etag)
	w.Header().Set(config.HeaderLastModified, snap.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == snap.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, snap.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(snap.ics)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
