package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"github.com/tartampluch/lifereel/internal/age"
	"github.com/tartampluch/lifereel/internal/config"
)

// rosterNamespace scopes the name-based person UUIDs to this application.
var rosterNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(config.AppID))

type rosterStats struct {
	processed int
	withBirth int
}

// decodeRoster reads every vCard of r and returns the people with a full birth date.
// Malformed cards and dates are skipped.
func decodeRoster(ctx context.Context, r io.Reader, now time.Time) ([]age.Person, rosterStats, error) {
	decoder := vcard.NewDecoder(r)
	var stats rosterStats
	var people []age.Person

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}
		stats.processed++

		p, ok := personFromCard(card, now)
		if !ok {
			continue
		}
		stats.withBirth++
		people = append(people, p)
	}

	return people, stats, nil
}

// personFromCard builds a Person from a vCard. Tracking preferences come from
// the X-LIFEREEL-* extensions, otherwise from the creation-time defaults.
// Without X-LIFEREEL-REMINDER every milestone carries the configured alarm.
func personFromCard(card vcard.Card, now time.Time) (age.Person, bool) {
	bday := card.Get(config.VCardBDAY)
	if bday == nil || bday.Value == "" {
		return age.Person{}, false
	}

	birth, err := parseDate(bday.Value)
	if err != nil {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyValue, bday.Value)
		return age.Person{}, false
	}

	// Name Strategy: FN (Formatted) > N (Structured) > Fallback
	name := config.FallbackName
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		name = fn.Value
	} else if n := card.Name(); n != nil {
		if full := strings.TrimSpace(n.GivenName + " " + n.FamilyName); full != "" {
			name = full
		}
	}

	p := age.Person{
		ID:                 personID(name, birth),
		Name:               name,
		BirthDate:          birth,
		PregnancyTracking:  age.DefaultPregnancyTracking(birth, now),
		BirthMonthsDisplay: age.DefaultBirthMonthsDisplay(birth, now),
		ShowEmptyStacks:    true,
		ReminderFrequency:  age.ReminderMonthly,
	}
	if v := card.Value(config.VCardPregnancy); v != "" {
		p.PregnancyTracking = age.ParsePregnancyTracking(v)
	}
	if v := card.Value(config.VCardMonths); v != "" {
		p.BirthMonthsDisplay = age.ParseBirthMonthsDisplay(v)
	}
	if v := card.Value(config.VCardEmpty); v != "" {
		if show, err := strconv.ParseBool(v); err == nil {
			p.ShowEmptyStacks = show
		}
	}
	if v := card.Value(config.VCardSort); v != "" {
		p.SortOrder = age.ParseSortOrder(v)
	}
	if v := card.Value(config.VCardReminder); v != "" {
		p.ReminderFrequency = age.ParseReminderFrequency(v)
	}
	return p, true
}

// personID is stable across syncs for the same name and birth date.
func personID(name string, birth time.Time) uuid.UUID {
	input := fmt.Sprintf(config.FormatHashInput, name, birth.Format(config.DateFormatFullDash), config.UIDSalt)
	return uuid.NewSHA1(rosterNamespace, []byte(input))
}

// parseDate handles the vCard date formats that carry a year. Year-less
// birthdays (--MM-DD) cannot be aged and are rejected.
func parseDate(value string) (time.Time, error) {
	formats := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formats {
		if t, err := time.Parse(f, value); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.New(config.ErrDateParse)
}
