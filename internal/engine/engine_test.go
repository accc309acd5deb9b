package engine_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/lifereel/internal/age"
	"github.com/tartampluch/lifereel/internal/config"
	"github.com/tartampluch/lifereel/internal/engine"
	"github.com/tartampluch/lifereel/internal/locale"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.SourceFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// webGenerator returns a generator serving content through a MockFetcher.
func webGenerator(t *testing.T, now time.Time, content string) *engine.Generator {
	t.Helper()
	f := new(MockFetcher)
	f.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(content)), nil)
	return &engine.Generator{Clock: MockClock{CurrentTime: now}, Fetcher: f}
}

var webCfg = engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://test.local"}

func card(fields ...string) string {
	return "BEGIN:VCARD\nVERSION:3.0\n" + strings.Join(fields, "\n") + "\nEND:VCARD\n"
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestRunSync_Local_Success(t *testing.T) {
	// Scenario: a three-month-old baby whose 3-month milestone is today.
	path := filepath.Join(t.TempDir(), "roster.vcf")
	require.NoError(t, os.WriteFile(path, []byte(card("FN:Emma", "BDAY:2024-11-05")), 0o600))

	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: time.Date(2025, 2, 5, 10, 0, 0, 0, time.UTC)},
	}

	res, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: path,
	})
	require.NoError(t, err)

	require.Len(t, res.People, 1)
	p := res.People[0]
	assert.Equal(t, "Emma", p.Name)
	assert.Equal(t, age.TrackingNone, p.PregnancyTracking, "born people default to no pregnancy tracking")
	assert.Equal(t, age.MonthsTwelve, p.BirthMonthsDisplay)
	assert.True(t, p.ShowEmptyStacks)

	assert.Equal(t, 1, res.Today, "the 3-month milestone falls today")

	// Birth (2024), months 1..11, years 1 and 2; year 3 is outside the window.
	assert.Equal(t, 14, res.Events)

	ics := string(res.ICS)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Equal(t, 14, strings.Count(ics, "BEGIN:VEVENT"))
	assert.Contains(t, ics, "SUMMARY:Emma: Birth")
	assert.Contains(t, ics, "SUMMARY:Emma: 3 Months")
	assert.Contains(t, ics, "SUMMARY:Emma: 2 Years")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20250205")
	assert.Contains(t, ics, "CATEGORIES:month")
	assert.Contains(t, ics, p.ID.String()+"-month-3@"+config.ICalDomain)
}

func TestRunSync_Translator(t *testing.T) {
	gen := webGenerator(t, time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), card("FN:Emma", "BDAY:2024-11-05"))
	gen.Translator = locale.New("fr")

	res, err := gen.RunSync(context.Background(), webCfg)
	require.NoError(t, err)

	ics := string(res.ICS)
	assert.Contains(t, ics, "SUMMARY:Emma : 3 mois")
	assert.Contains(t, ics, "SUMMARY:Emma : 1 an")
}

func TestRunSync_TrackingOverrides(t *testing.T) {
	content := card("FN:Lucas", "BDAY:2024-11-05",
		"X-LIFEREEL-PREGNANCY:weeks",
		"X-LIFEREEL-MONTHS:24",
		"X-LIFEREEL-SHOW-EMPTY:false",
		"X-LIFEREEL-SORT:latestToOldest",
		"X-LIFEREEL-REMINDER:yearly")

	gen := webGenerator(t, time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), content)
	res, err := gen.RunSync(context.Background(), webCfg)
	require.NoError(t, err)

	require.Len(t, res.People, 1)
	p := res.People[0]
	assert.Equal(t, age.TrackingWeeks, p.PregnancyTracking)
	assert.Equal(t, age.MonthsTwentyFour, p.BirthMonthsDisplay)
	assert.False(t, p.ShowEmptyStacks)
	assert.Equal(t, age.SortLatestFirst, p.SortOrder)
	assert.Equal(t, age.ReminderYearly, p.ReminderFrequency)

	// Birth, months 1..23 up to 2026-10-05, year 2 on 2026-11-05.
	assert.Equal(t, 25, res.Events)
	assert.Contains(t, string(res.ICS), "SUMMARY:Lucas: 23 Months")
	assert.NotContains(t, string(res.ICS), "SUMMARY:Lucas: 1 Year")
}

func TestRunSync_ExpectedBirth(t *testing.T) {
	// Due in three months: week tracking is suggested and the calendar
	// already announces the birth.
	gen := webGenerator(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), card("FN:Bump", "BDAY:2025-09-01"))

	res, err := gen.RunSync(context.Background(), webCfg)
	require.NoError(t, err)

	require.Len(t, res.People, 1)
	assert.Equal(t, age.TrackingWeeks, res.People[0].PregnancyTracking)
	assert.Equal(t, age.MonthsTwelve, res.People[0].BirthMonthsDisplay)

	// Birth, months 1..11, year 1; Pregnancy has no milestone.
	assert.Equal(t, 13, res.Events)
	assert.Zero(t, res.Today)
	assert.Contains(t, string(res.ICS), "DTSTART;VALUE=DATE:20250901")
}

func TestRunSync_GeneratesYearRange(t *testing.T) {
	// Teenager: only the yearly milestones of the previous, current and next year.
	gen := webGenerator(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), card("FN:Range Test", "BDAY:2010-06-15"))

	res, err := gen.RunSync(context.Background(), webCfg)
	require.NoError(t, err)

	ics := string(res.ICS)
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20240615")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20250615")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20260615")
	assert.Contains(t, ics, "SUMMARY:Range Test: 15 Years")
	assert.Equal(t, 3, strings.Count(ics, "BEGIN:VEVENT"))
}

func TestRunSync_AdultHasNoEvents(t *testing.T) {
	gen := webGenerator(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), card("FN:Adult", "BDAY:1990-01-01"))

	res, err := gen.RunSync(context.Background(), webCfg)
	require.NoError(t, err)

	assert.Len(t, res.People, 1, "adults stay in the roster")
	assert.Zero(t, res.Events)
	assert.Equal(t, config.StubVCalendar, string(res.ICS))
}

func TestRunSync_DateFormats_TableDriven(t *testing.T) {
	tests := []struct {
		name       string
		bdayValue  string
		wantPeople int
	}{
		{"ISO8601 Standard", "2024-10-25", 1},
		{"Basic Format", "20241025", 1},
		{"RFC3339", "2024-10-25T00:00:00Z", 1},
		{"Truncated (Month-Day)", "--10-25", 0},
		{"Truncated Basic", "--1025", 0},
		{"Garbage Data", "not-a-date", 0},
		{"Empty Date", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := webGenerator(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), card("FN:Test", "BDAY:"+tt.bdayValue))

			res, err := gen.RunSync(context.Background(), webCfg)
			require.NoError(t, err)

			assert.Len(t, res.People, tt.wantPeople)
			if tt.wantPeople > 0 {
				assert.Contains(t, string(res.ICS), "DTSTART;VALUE=DATE:20241025")
			} else {
				assert.NotContains(t, string(res.ICS), "BEGIN:VEVENT")
			}
		})
	}
}

func TestRunSync_RosterSortedAndStable(t *testing.T) {
	content := card("FN:Zoe", "BDAY:2023-03-01") + card("N:Martin;Adam;;;", "BDAY:2022-05-10") + card("BDAY:2021-01-01")
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := webGenerator(t, now, content).RunSync(context.Background(), webCfg)
	require.NoError(t, err)
	second, err := webGenerator(t, now.AddDate(0, 1, 0), content).RunSync(context.Background(), webCfg)
	require.NoError(t, err)

	require.Len(t, first.People, 3)
	assert.Equal(t, "Adam Martin", first.People[0].Name, "N is used when FN is missing")
	assert.Equal(t, config.FallbackName, first.People[1].Name)
	assert.Equal(t, "Zoe", first.People[2].Name)

	for i := range first.People {
		assert.Equal(t, first.People[i].ID, second.People[i].ID, "IDs survive re-syncs")
	}
}

func TestRunSync_WithReminders(t *testing.T) {
	gen := webGenerator(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), card("FN:Alarm Test", "BDAY:2020-06-01"))

	cfg := webCfg
	cfg.ReminderTrigger = "-P1D"

	res, err := gen.RunSync(context.Background(), cfg)
	require.NoError(t, err)

	ics := string(res.ICS)
	assert.Contains(t, ics, "BEGIN:VALARM", "ICS should contain an alarm component")
	assert.Contains(t, ics, "TRIGGER:-P1D", "Alarm trigger should match configuration")
	assert.Contains(t, ics, "ACTION:DISPLAY", "Alarm action should be DISPLAY")
}

func TestRunSync_ReminderFrequency(t *testing.T) {
	// Birth (2024), months 1..11, years 1 and 2.
	tests := []struct {
		name   string
		fields []string
		want   age.ReminderFrequency
		alarms int
	}{
		{"Default covers every milestone", nil, age.ReminderMonthly, 14},
		{"Daily", []string{"X-LIFEREEL-REMINDER:Daily"}, age.ReminderDaily, 14},
		{"Yearly keeps birth and birthdays", []string{"X-LIFEREEL-REMINDER:Yearly"}, age.ReminderYearly, 3},
		{"None", []string{"X-LIFEREEL-REMINDER:None"}, age.ReminderNone, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := append([]string{"FN:Emma", "BDAY:2024-11-05"}, tt.fields...)
			gen := webGenerator(t, time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), card(fields...))

			cfg := webCfg
			cfg.ReminderTrigger = "-P1D"
			res, err := gen.RunSync(context.Background(), cfg)
			require.NoError(t, err)

			require.Len(t, res.People, 1)
			assert.Equal(t, tt.want, res.People[0].ReminderFrequency)
			assert.Equal(t, 14, res.Events)
			assert.Equal(t, tt.alarms, strings.Count(string(res.ICS), "BEGIN:VALARM"))
		})
	}
}

func TestRunSync_Web_NetworkError(t *testing.T) {
	mockFetcher := new(MockFetcher)
	expectedErr := errors.New("network unreachable")
	mockFetcher.On("Fetch", mock.Anything, "http://bad-url.com", "alice", "secret").
		Return(nil, expectedErr)

	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: time.Now()},
		Fetcher: mockFetcher,
	}

	res, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:    config.SourceModeWeb,
		WebURL:  "http://bad-url.com",
		WebUser: "alice",
		WebPass: "secret",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Nil(t, res.ICS)
	assert.Nil(t, res.People)
	mockFetcher.AssertExpectations(t)
}

func TestRunSync_ConfigErrors(t *testing.T) {
	gen := &engine.Generator{Clock: MockClock{CurrentTime: time.Now()}}

	tests := []struct {
		name    string
		cfg     engine.SyncConfig
		wantErr string
	}{
		{"Local path missing", engine.SyncConfig{Mode: config.SourceModeLocal}, config.ErrLocalPathEmpty},
		{"Web URL missing", engine.SyncConfig{Mode: config.SourceModeWeb}, config.ErrWebURLEmpty},
		{"Fetcher missing", webCfg, config.ErrFetcherMissing},
		{"Unknown mode", engine.SyncConfig{Mode: "ftp"}, config.ErrModeUnsupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.RunSync(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunSync_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "cancel.vcf")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	gen := &engine.Generator{Clock: MockClock{CurrentTime: time.Now()}}

	_, err := gen.RunSync(ctx, engine.SyncConfig{Mode: config.SourceModeLocal, LocalPath: path})
	assert.ErrorIs(t, err, context.Canceled)
}
