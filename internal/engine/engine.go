// Package engine imports the roster of tracked people from a vCard address
// book and publishes their age milestones as an iCalendar feed.
package engine

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/lifereel/internal/age"
	"github.com/tartampluch/lifereel/internal/config"
	"github.com/tartampluch/lifereel/internal/locale"
)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode            string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath       string // Path to the .vcf file
	WebURL          string // CardDAV or WebDAV export URL
	WebUser         string // HTTP Basic Auth Username
	WebPass         string // HTTP Basic Auth Password
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D")
}

// Result is the outcome of one synchronization.
type Result struct {
	// ICS is the encoded milestone calendar.
	ICS []byte

	// People is the imported roster sorted by name.
	People []age.Person

	// Today counts the milestones falling on the current day.
	Today int

	// Events counts the VEVENTs written to ICS.
	Events int
}

// Generator fetches the roster and renders the milestone calendar.
type Generator struct {
	Clock   Clock         // Interface for time mocking.
	Fetcher SourceFetcher // Interface for network abstraction.

	// Translator localizes event summaries. Nil uses the built-in English labels.
	Translator *locale.Translator
}

// RunSync executes the fetching, parsing, and generation pipeline.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (Result, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	now := g.Clock.Now()
	people, stats, err := decodeRoster(ctx, reader, now)
	if err != nil {
		return Result{}, err
	}
	slices.SortFunc(people, func(a, b age.Person) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID.String(), b.ID.String()))
	})

	res, err := g.buildCalendar(people, now, cfg.ReminderTrigger)
	if err != nil {
		return Result{}, err
	}

	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withBirth),
			slog.Int(config.LogKeyEvents, res.Events),
			slog.Int(config.LogKeyToday, res.Today),
		),
	)
	log.Debug(config.MsgSyncFinished, config.LogKeyDuration, time.Since(start).Milliseconds())
	return res, nil
}

// acquireStream opens the appropriate data source based on configuration.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// buildCalendar encodes one all-day event per milestone of every person,
// restricted to the previous, current and next year.
func (g *Generator) buildCalendar(people []age.Person, now time.Time, reminderTrigger string) (Result, error) {
	res := Result{People: people}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, g.calendarName())
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, p := range people {
		events, today := g.milestoneEvents(p, now, reminderTrigger)
		if today > 0 {
			res.Today += today
			slog.Info(config.MsgMilestone,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, p.Name,
				config.LogKeyPerson, p.ID.String())
		}
		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}
	res.Events = len(cal.Children)

	// An empty VCALENDAR is rejected by the encoder; serve the stub instead.
	if res.Events == 0 {
		res.ICS = []byte(config.StubVCalendar)
		return res, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return Result{}, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	res.ICS = buf.Bytes()
	return res, nil
}

// milestoneEvents returns the events of p inside the three-year window and
// how many of them fall today.
func (g *Generator) milestoneEvents(p age.Person, now time.Time, reminderTrigger string) ([]*ical.Event, int) {
	loc := now.Location()
	todayYear, todayMonth, todayDay := now.Date()

	var events []*ical.Event
	today := 0

	for _, b := range age.Ranges(p) {
		day, ok := age.Milestone(p, b)
		if !ok {
			continue
		}
		y, m, d := day.Date()
		if y < todayYear-1 || y > todayYear+1 {
			continue
		}
		if y == todayYear && m == todayMonth && d == todayDay {
			today++
		}

		summary := g.summary(p.Name, b)

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, p.ID.String(), milestoneKey(b), config.ICalDomain))
		event.Props.SetText(config.PropSummary, summary)
		event.Props.SetText(config.PropCategories, b.Kind().String())

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(time.Date(y, m, d, 0, 0, 0, 0, loc))
		event.Props.Set(dtStartProp)

		if reminderTrigger != "" && p.ReminderFrequency.Covers(b) {
			addAlarm(event, reminderTrigger, summary)
		}
		events = append(events, event)
	}
	return events, today
}

func (g *Generator) summary(name string, b age.Bucket) string {
	if g.Translator != nil {
		return g.Translator.Milestone(name, b)
	}
	if b.Kind() == age.KindBirthMonth {
		return fmt.Sprintf(config.FallbackBirth, name)
	}
	return fmt.Sprintf(config.FallbackMilestone, name, b.String())
}

func (g *Generator) calendarName() string {
	if g.Translator != nil {
		return g.Translator.CalendarName()
	}
	return config.ICalCalName
}

// milestoneKey identifies a bucket inside a person's event UIDs, e.g. "month-3".
func milestoneKey(b age.Bucket) string {
	return b.Kind().String() + "-" + strconv.Itoa(b.Value())
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
