package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/lifereel/internal/age"
	"github.com/tartampluch/lifereel/internal/config"
	"github.com/tartampluch/lifereel/internal/metrics"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	emma = age.Person{
		ID:                 uuid.MustParse("6f1c0d62-8d7e-4f55-a0a3-8b8f3bbf0a01"),
		Name:               "Emma",
		BirthDate:          day("2023-06-01"),
		PregnancyTracking:  age.TrackingTrimesters,
		BirthMonthsDisplay: age.MonthsTwentyFour,
	}
	noah = age.Person{
		ID:                 uuid.MustParse("6f1c0d62-8d7e-4f55-a0a3-8b8f3bbf0a02"),
		Name:               "Noah",
		BirthDate:          day("2023-06-01"),
		PregnancyTracking:  age.TrackingNone,
		BirthMonthsDisplay: age.MonthsTwelve,
	}
)

// readyServer returns a server with a roster loaded and a fixed clock.
func readyServer(t *testing.T) (*Server, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	srv := New("127.0.0.1:0", age.Calculator{}, nil, m)
	srv.Now = func() time.Time { return day("2024-09-01") }
	srv.Update([]byte(config.StubVCalendar), []age.Person{emma, noah})
	return srv, m
}

func photosBody(t *testing.T, dates ...string) *bytes.Reader {
	t.Helper()
	req := groupsRequest{}
	for _, d := range dates {
		req.Photos = append(req.Photos, age.Photo{ID: uuid.New(), Taken: day(d)})
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func groupLabels(t *testing.T, w *httptest.ResponseRecorder) ([]string, groupsResponse) {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp groupsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	labels := make([]string, 0, len(resp.Groups))
	for _, g := range resp.Groups {
		labels = append(labels, g.Label)
	}
	return labels, resp
}

func TestPeople(t *testing.T) {
	srv, _ := readyServer(t)

	w := serve(srv, httptest.NewRequest(http.MethodGet, config.RoutePeople, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, config.MimeJSON, w.Header().Get(config.HeaderContentType))

	var people []personView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&people))
	require.Len(t, people, 2)
	assert.Equal(t, emma.ID, people[0].ID)
	assert.Equal(t, age.MonthsTwentyFour, people[0].BirthMonthsDisplay)
	assert.Equal(t, "15 Months", people[0].Age)
	assert.Equal(t, "1 Year", people[1].Age)
}

func TestRanges(t *testing.T) {
	srv, _ := readyServer(t)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/people/"+emma.ID.String()+"/ranges?lang=fr", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp rangesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Toutes les photos", resp.AllPhotos)

	// Pregnancy, birth month, months 1..23, years 2..18.
	require.Len(t, resp.Ranges, 42)
	assert.Equal(t, age.Pregnancy(), resp.Ranges[0].Bucket)
	assert.Equal(t, "Grossesse", resp.Ranges[0].Label)
	assert.Equal(t, age.Month(23), resp.Ranges[24].Bucket)
	assert.Equal(t, age.Year(2), resp.Ranges[25].Bucket)
}

func TestGroups_Views(t *testing.T) {
	dates := []string{"2024-09-01", "2023-03-01", "2023-06-10"}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"Display", "", []string{"Pregnancy", "Birth Month", "15 Months"}},
		{"Strict", "?view=strict", []string{"Pregnancy", "Birth Month", "1 Year"}},
		{"Strict French", "?view=strict&lang=fr", []string{"Grossesse", "Mois de naissance", "1 an"}},
		{"Stacks", "?view=stacks", []string{"Pregnancy", "Birth Month", "15 Months"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := readyServer(t)
			url := "/people/" + emma.ID.String() + "/groups" + tt.query

			labels, resp := groupLabels(t, serve(srv, httptest.NewRequest(http.MethodPost, url, photosBody(t, dates...))))
			assert.Equal(t, tt.want, labels)
			assert.Zero(t, resp.Excluded)
		})
	}
}

func TestGroups_ExclusionAndMetrics(t *testing.T) {
	srv, m := readyServer(t)
	url := "/people/" + noah.ID.String() + "/groups"

	_, resp := groupLabels(t, serve(srv, httptest.NewRequest(http.MethodPost, url, photosBody(t, "2023-03-01", "2023-07-15"))))

	require.Len(t, resp.Groups, 1)
	assert.Equal(t, age.KindMonth, resp.Groups[0].Bucket.Kind())
	assert.Equal(t, 1, resp.Excluded, "pre-birth photos are hidden without pregnancy tracking")

	assert.InDelta(t, 1, testutil.ToFloat64(m.PhotosExcluded), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PhotosClassified.WithLabelValues("month")), 0)
}

func TestPeopleAPI_Errors(t *testing.T) {
	srv, _ := readyServer(t)

	tests := []struct {
		name   string
		method string
		url    string
		body   string
		want   int
	}{
		{"Bad id", http.MethodGet, "/people/not-a-uuid/ranges", "", http.StatusBadRequest},
		{"Unknown person", http.MethodGet, "/people/" + uuid.NewString() + "/ranges", "", http.StatusNotFound},
		{"Malformed body", http.MethodPost, "/people/" + emma.ID.String() + "/groups", "{", http.StatusBadRequest},
		{"Wrong photo type", http.MethodPost, "/people/" + emma.ID.String() + "/groups", `{"photos":3}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(srv, httptest.NewRequest(tt.method, tt.url, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, w.Code)

			var resp errorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestPeopleAPI_Initializing(t *testing.T) {
	srv := newTestServer()

	w := serve(srv, httptest.NewRequest(http.MethodGet, config.RoutePeople, nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, config.RetryAfterSeconds, w.Header().Get(config.HeaderRetryAfter))
}

func TestMetricsRoute(t *testing.T) {
	srv, m := readyServer(t)
	m.ObserveSync(time.Millisecond, 2, nil)

	w := serve(srv, httptest.NewRequest(http.MethodGet, config.RouteMetrics, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lifereel_people_tracked 2")

	w = serve(newTestServer(), httptest.NewRequest(http.MethodGet, config.RouteMetrics, nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "no metrics route without collectors")
}
