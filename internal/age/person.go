package age

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PregnancyTracking controls whether and how photos taken before birth are labeled.
type PregnancyTracking int

const (
	TrackingNone PregnancyTracking = iota
	TrackingTrimesters
	TrackingWeeks
)

var trackingNames = [...]string{
	TrackingNone:       "none",
	TrackingTrimesters: "trimesters",
	TrackingWeeks:      "weeks",
}

func (t PregnancyTracking) String() string {
	if t < TrackingNone || t > TrackingWeeks {
		return trackingNames[TrackingNone]
	}
	return trackingNames[t]
}

// ParsePregnancyTracking is lenient: unknown values map to TrackingNone.
func ParsePregnancyTracking(s string) PregnancyTracking {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case trackingNames[TrackingTrimesters]:
		return TrackingTrimesters
	case trackingNames[TrackingWeeks]:
		return TrackingWeeks
	default:
		return TrackingNone
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t PregnancyTracking) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PregnancyTracking) UnmarshalText(b []byte) error {
	*t = ParsePregnancyTracking(string(b))
	return nil
}

// BirthMonthsDisplay is the display-only cutoff after which stacks switch
// from monthly to yearly granularity.
type BirthMonthsDisplay int

const (
	MonthsNone BirthMonthsDisplay = iota
	MonthsTwelve
	MonthsTwentyFour
)

var displayNames = [...]string{
	MonthsNone:       "None",
	MonthsTwelve:     "12 Months",
	MonthsTwentyFour: "24 Months",
}

func (d BirthMonthsDisplay) String() string {
	if d < MonthsNone || d > MonthsTwentyFour {
		return displayNames[MonthsNone]
	}
	return displayNames[d]
}

// Cutoff returns the number of months shown before switching to years.
func (d BirthMonthsDisplay) Cutoff() int {
	switch d {
	case MonthsTwelve:
		return 12
	case MonthsTwentyFour:
		return 24
	default:
		return 0
	}
}

// ParseBirthMonthsDisplay accepts the display labels as well as "none", "12" and "24".
func ParseBirthMonthsDisplay(s string) BirthMonthsDisplay {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "12", "12 months":
		return MonthsTwelve
	case "24", "24 months":
		return MonthsTwentyFour
	default:
		return MonthsNone
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d BirthMonthsDisplay) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *BirthMonthsDisplay) UnmarshalText(b []byte) error {
	*d = ParseBirthMonthsDisplay(string(b))
	return nil
}

// SortOrder orders the photos inside a stack.
type SortOrder int

const (
	SortOldestFirst SortOrder = iota
	SortLatestFirst
)

var sortNames = [...]string{
	SortOldestFirst: "oldestToLatest",
	SortLatestFirst: "latestToOldest",
}

func (o SortOrder) String() string {
	if o < SortOldestFirst || o > SortLatestFirst {
		return sortNames[SortOldestFirst]
	}
	return sortNames[o]
}

// ParseSortOrder is lenient: unknown values map to SortOldestFirst.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case strings.ToLower(sortNames[SortLatestFirst]), "latest", "newest":
		return SortLatestFirst
	default:
		return SortOldestFirst
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o SortOrder) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *SortOrder) UnmarshalText(b []byte) error {
	*o = ParseSortOrder(string(b))
	return nil
}

// ReminderFrequency selects which milestones of a person raise a reminder.
type ReminderFrequency int

const (
	ReminderNone ReminderFrequency = iota
	ReminderDaily
	ReminderMonthly
	ReminderYearly
)

var reminderNames = [...]string{
	ReminderNone:    "None",
	ReminderDaily:   "Daily",
	ReminderMonthly: "Monthly",
	ReminderYearly:  "Yearly",
}

func (f ReminderFrequency) String() string {
	if f < ReminderNone || f > ReminderYearly {
		return reminderNames[ReminderNone]
	}
	return reminderNames[f]
}

// Covers reports whether entering bucket b deserves a reminder. Daily and
// Monthly cover every milestone, Yearly only the birth and the birthdays.
func (f ReminderFrequency) Covers(b Bucket) bool {
	switch f {
	case ReminderDaily, ReminderMonthly:
		return b.kind == KindBirthMonth || b.kind == KindMonth || b.kind == KindYear
	case ReminderYearly:
		return b.kind == KindBirthMonth || b.kind == KindYear
	default:
		return false
	}
}

// ParseReminderFrequency is lenient: unknown values map to ReminderNone.
func ParseReminderFrequency(s string) ReminderFrequency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return ReminderDaily
	case "monthly":
		return ReminderMonthly
	case "yearly":
		return ReminderYearly
	default:
		return ReminderNone
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f ReminderFrequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ReminderFrequency) UnmarshalText(b []byte) error {
	*f = ParseReminderFrequency(string(b))
	return nil
}

// Person is the read-only snapshot of a tracked person used by the classifier.
type Person struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	BirthDate          time.Time          `json:"birth_date"`
	PregnancyTracking  PregnancyTracking  `json:"pregnancy_tracking"`
	BirthMonthsDisplay BirthMonthsDisplay `json:"birth_months_display"`
	ShowEmptyStacks    bool               `json:"show_empty_stacks"`
	SortOrder          SortOrder          `json:"sort_order"`
	ReminderFrequency  ReminderFrequency  `json:"reminder_frequency"`
}

// NewPerson creates a person with the defaults suggested at creation time.
// The defaults are never re-evaluated afterwards.
func NewPerson(name string, birthDate, now time.Time) Person {
	return Person{
		ID:                 uuid.New(),
		Name:               name,
		BirthDate:          birthDate,
		PregnancyTracking:  DefaultPregnancyTracking(birthDate, now),
		BirthMonthsDisplay: DefaultBirthMonthsDisplay(birthDate, now),
		ShowEmptyStacks:    true,
	}
}

// Equal reports structural equality over all fields.
func (p Person) Equal(o Person) bool {
	return p.ID == o.ID &&
		p.Name == o.Name &&
		p.BirthDate.Equal(o.BirthDate) &&
		p.PregnancyTracking == o.PregnancyTracking &&
		p.BirthMonthsDisplay == o.BirthMonthsDisplay &&
		p.ShowEmptyStacks == o.ShowEmptyStacks &&
		p.SortOrder == o.SortOrder &&
		p.ReminderFrequency == o.ReminderFrequency
}

// MediaRef points at externally stored media. It is never interpreted here.
type MediaRef string

// Photo is a dated media item belonging to a person.
type Photo struct {
	ID      uuid.UUID `json:"id"`
	Taken   time.Time `json:"taken"`
	IsVideo bool      `json:"is_video"`
	Media   MediaRef  `json:"media,omitempty"`

	// Stack names a user-defined stack. When set the photo is grouped under
	// Custom(Stack) instead of an age bucket.
	Stack string `json:"stack,omitempty"`
}

// DefaultPregnancyTracking suggests a tracking mode for a person born on birthDate.
// Births more than two whole months away default to week tracking.
func DefaultPregnancyTracking(birthDate, now time.Time) PregnancyTracking {
	if !civil(now).before(civil(birthDate)) {
		return TrackingNone
	}
	if monthsBetween(civil(now), civil(birthDate)) > 2 {
		return TrackingWeeks
	}
	return TrackingTrimesters
}

// DefaultBirthMonthsDisplay shows monthly stacks for people younger than two years.
func DefaultBirthMonthsDisplay(birthDate, now time.Time) BirthMonthsDisplay {
	if civil(now).before(civil(birthDate)) || monthsBetween(civil(birthDate), civil(now)) < 24 {
		return MonthsTwelve
	}
	return MonthsNone
}
