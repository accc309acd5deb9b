package age

import "time"

// Classify returns the bucket of a photo taken at photoDate.
// The boolean is false when the photo is excluded from all buckets, which
// happens for pre-birth photos of a person without pregnancy tracking.
func (c Calculator) Classify(p Person, photoDate time.Time) (Bucket, bool) {
	return BucketOf(p, c.Calculate(p, photoDate))
}

// BucketOf maps an already computed age to its bucket for p.
func BucketOf(p Person, a ExactAge) (Bucket, bool) {
	switch {
	case a.IsPregnancy:
		if p.PregnancyTracking == TrackingNone {
			return Bucket{}, false
		}
		return Pregnancy(), true
	case a.IsNewborn:
		return BirthMonth(), true
	case a.Years == 0:
		return Month(a.Months), true
	default:
		return Year(a.Years), true
	}
}

// Display applies the birth-months display policy to a classified bucket.
// It never changes Pregnancy, BirthMonth or Custom buckets.
//
// With 24 months, ages of 12 to 23 months are shown as months. With None,
// month buckets collapse into BirthMonth.
func Display(b Bucket, a ExactAge, d BirthMonthsDisplay) Bucket {
	switch d {
	case MonthsTwentyFour:
		if b.kind == KindYear && a.Years == 1 {
			return Month(monthsPerYear + a.Months)
		}
	case MonthsNone:
		if b.kind == KindMonth {
			return BirthMonth()
		}
	}
	return b
}

// ClassifyForDisplay composes Classify and Display using the person's policy.
func (c Calculator) ClassifyForDisplay(p Person, photoDate time.Time) (Bucket, bool) {
	a := c.Calculate(p, photoDate)
	b, ok := BucketOf(p, a)
	if !ok {
		return b, false
	}
	return Display(b, a, p.BirthMonthsDisplay), true
}

// Ranges enumerates, in display order, every age stack the person can show.
func Ranges(p Person) []Bucket {
	cutoff := p.BirthMonthsDisplay.Cutoff()
	firstYear := max(cutoff/monthsPerYear, 1)

	out := make([]Bucket, 0, 2+cutoff+MaxYear)
	if p.PregnancyTracking != TrackingNone {
		out = append(out, Pregnancy())
	}
	out = append(out, BirthMonth())
	for m := 1; m < cutoff; m++ {
		out = append(out, Month(m))
	}
	for y := firstYear; y <= MaxYear; y++ {
		out = append(out, Year(y))
	}
	return out
}

// Convenience wrappers around a zero Calculator.

func Calculate(p Person, at time.Time) ExactAge { return Calculator{}.Calculate(p, at) }

func Classify(p Person, photoDate time.Time) (Bucket, bool) {
	return Calculator{}.Classify(p, photoDate)
}

func GroupAndSort(p Person, photos []Photo) []Group {
	return Calculator{}.GroupAndSort(p, photos)
}
