package age

import "time"

const (
	// DefaultMaxPregnancyWeeks caps the reported week count of pre-birth photos.
	DefaultMaxPregnancyWeeks = 42

	// Trimester upper bounds in whole weeks.
	firstTrimesterEnd  = 13
	secondTrimesterEnd = 26

	daysPerWeek   = 7
	monthsPerYear = 12
)

// ExactAge is the calendar difference between a birth date and a target date.
type ExactAge struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`

	// IsPregnancy is set when the target date precedes the birth date.
	// Years, Months and Days are zero in that case.
	IsPregnancy bool `json:"is_pregnancy"`

	// PregnancyWeeks counts down: the whole weeks left until the birth date.
	PregnancyWeeks int `json:"pregnancy_weeks,omitempty"`
	Trimester      int `json:"trimester,omitempty"`

	// IsNewborn is set for ages under one whole month.
	IsNewborn bool `json:"is_newborn"`
}

// TotalMonths returns the age in whole months. Pregnancy ages report zero.
func (a ExactAge) TotalMonths() int {
	return a.Years*monthsPerYear + a.Months
}

// Calculator computes exact ages and buckets. The zero value is ready to use.
// A Calculator holds no mutable state of its own and is safe for concurrent use.
type Calculator struct {
	// MaxPregnancyWeeks clamps PregnancyWeeks. Values <= 0 use DefaultMaxPregnancyWeeks.
	MaxPregnancyWeeks int

	// Location, when set, converts photo timestamps before taking their
	// calendar day. Otherwise each timestamp is read in its own location.
	// Birth dates are calendar dates and are never converted.
	Location *time.Location

	// Memo optionally caches computed ages.
	Memo *Memo
}

// Calculate returns the exact age of p at the given date.
func (c Calculator) Calculate(p Person, at time.Time) ExactAge {
	birth, target := civil(p.BirthDate), c.civil(at)

	if c.Memo != nil {
		key := memoKey{birth: birth, target: target, maxWeeks: c.maxWeeks()}
		if a, ok := c.Memo.get(key); ok {
			return a
		}
		a := c.exactAge(birth, target)
		c.Memo.add(key, a)
		return a
	}
	return c.exactAge(birth, target)
}

func (c Calculator) exactAge(birth, target date) ExactAge {
	if target.before(birth) {
		weeks := daysBetween(target, birth) / daysPerWeek
		weeks = min(max(weeks, 0), c.maxWeeks())
		return ExactAge{
			IsPregnancy:    true,
			PregnancyWeeks: weeks,
			Trimester:      trimester(weeks),
		}
	}

	total := monthsBetween(birth, target)
	anchor := birth.addMonths(total)

	a := ExactAge{
		Years:  total / monthsPerYear,
		Months: total % monthsPerYear,
		Days:   daysBetween(anchor, target),
	}
	a.IsNewborn = a.Years == 0 && a.Months == 0
	return a
}

func (c Calculator) maxWeeks() int {
	if c.MaxPregnancyWeeks <= 0 {
		return DefaultMaxPregnancyWeeks
	}
	return c.MaxPregnancyWeeks
}

func (c Calculator) civil(t time.Time) date {
	if c.Location != nil {
		t = t.In(c.Location)
	}
	return civil(t)
}

// trimester maps a week count to 1, 2 or 3.
func trimester(weeks int) int {
	switch {
	case weeks <= firstTrimesterEnd:
		return 1
	case weeks <= secondTrimesterEnd:
		return 2
	default:
		return 3
	}
}

// date is a calendar day with no time or location.
type date struct {
	year  int
	month time.Month
	day   int
}

func civil(t time.Time) date {
	y, m, d := t.Date()
	return date{year: y, month: m, day: d}
}

func (d date) time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d date) before(o date) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

// addMonths moves d by n months, clamping the day to the target month's
// length so that Jan 31 + 1 month is Feb 28 (or 29).
func (d date) addMonths(n int) date {
	idx := d.year*monthsPerYear + int(d.month-1) + n
	y, m := idx/monthsPerYear, time.Month(idx%monthsPerYear+1)
	if idx < 0 && idx%monthsPerYear != 0 {
		y--
		m = time.Month(idx%monthsPerYear + monthsPerYear + 1)
	}
	return date{year: y, month: m, day: min(d.day, daysIn(y, m))}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// daysBetween returns the signed number of days from a to b.
func daysBetween(a, b date) int {
	return int(b.time().Sub(a.time()).Hours() / 24)
}

// monthsBetween returns the signed number of whole months from a to b.
// A month is complete once the (clamped) anniversary day has been reached.
func monthsBetween(a, b date) int {
	if b.before(a) {
		return -monthsBetween(b, a)
	}
	n := (b.year-a.year)*monthsPerYear + int(b.month) - int(a.month)
	if b.before(a.addMonths(n)) {
		n--
	}
	return n
}
