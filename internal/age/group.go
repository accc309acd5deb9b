package age

import (
	"slices"
	"strings"
	"time"
)

// Group is one bucket with its photos ordered by the person's SortOrder.
type Group struct {
	Bucket Bucket  `json:"bucket"`
	Photos []Photo `json:"photos"`
}

// GroupAndSort classifies every photo and returns the non-empty buckets in
// display order. Excluded photos are dropped and photos with a Stack go to
// the matching Custom bucket. The result does not depend on input order.
func (c Calculator) GroupAndSort(p Person, photos []Photo) []Group {
	return c.group(p, photos, false)
}

// GroupForDisplay is GroupAndSort with the person's display policy applied.
func (c Calculator) GroupForDisplay(p Person, photos []Photo) []Group {
	return c.group(p, photos, true)
}

func (c Calculator) group(p Person, photos []Photo, display bool) []Group {
	index := make(map[Bucket]int)
	var groups []Group

	for _, ph := range photos {
		a := c.Calculate(p, ph.Taken)
		b, ok := BucketOf(p, a)
		if !ok {
			continue
		}
		switch {
		case ph.Stack != "":
			b = Custom(ph.Stack)
		case display:
			b = Display(b, a, p.BirthMonthsDisplay)
		}

		i, seen := index[b]
		if !seen {
			i = len(groups)
			index[b] = i
			groups = append(groups, Group{Bucket: b})
		}
		groups[i].Photos = append(groups[i].Photos, ph)
	}

	for i := range groups {
		sortPhotos(groups[i].Photos, p.SortOrder)
	}
	slices.SortFunc(groups, func(x, y Group) int {
		return x.Bucket.Compare(y.Bucket)
	})
	return groups
}

// Stacks lays the display groups over Ranges(p). Empty ranges are kept only
// when the person shows empty stacks. Groups outside the ranges, custom
// stacks included, follow in bucket order.
func (c Calculator) Stacks(p Person, photos []Photo) []Group {
	groups := c.GroupForDisplay(p, photos)
	byBucket := make(map[Bucket]Group, len(groups))
	for _, g := range groups {
		byBucket[g.Bucket] = g
	}

	var out []Group
	for _, r := range Ranges(p) {
		if g, ok := byBucket[r]; ok {
			out = append(out, g)
			delete(byBucket, r)
			continue
		}
		if p.ShowEmptyStacks {
			out = append(out, Group{Bucket: r, Photos: []Photo{}})
		}
	}
	for _, g := range groups {
		if _, left := byBucket[g.Bucket]; left {
			out = append(out, g)
		}
	}
	return out
}

// Filter returns the photos of one display bucket in the person's sort order.
func (c Calculator) Filter(p Person, photos []Photo, b Bucket) []Photo {
	for _, g := range c.GroupForDisplay(p, photos) {
		if g.Bucket == b {
			return g.Photos
		}
	}
	return nil
}

// Visible returns every photo that belongs to some bucket, in the person's
// sort order.
func (c Calculator) Visible(p Person, photos []Photo) []Photo {
	out := make([]Photo, 0, len(photos))
	for _, ph := range photos {
		if _, ok := c.Classify(p, ph.Taken); ok {
			out = append(out, ph)
		}
	}
	sortPhotos(out, p.SortOrder)
	return out
}

// sortPhotos orders photos by capture time, latest first when asked.
// Ties keep a stable order in both directions.
func sortPhotos(photos []Photo, order SortOrder) {
	if order == SortLatestFirst {
		slices.SortFunc(photos, func(a, b Photo) int { return comparePhotos(b, a) })
		return
	}
	slices.SortFunc(photos, comparePhotos)
}

func comparePhotos(a, b Photo) int {
	if c := a.Taken.Compare(b.Taken); c != 0 {
		return c
	}
	if c := strings.Compare(a.ID.String(), b.ID.String()); c != 0 {
		return c
	}
	return strings.Compare(string(a.Media), string(b.Media))
}

// Milestone returns the calendar day (UTC midnight) on which the person
// enters bucket b. Pregnancy and Custom buckets have no milestone.
func Milestone(p Person, b Bucket) (time.Time, bool) {
	d := civil(p.BirthDate)
	switch b.kind {
	case KindBirthMonth:
		return d.time(), true
	case KindMonth:
		return d.addMonths(b.n).time(), true
	case KindYear:
		return d.addMonths(b.n * monthsPerYear).time(), true
	default:
		return time.Time{}, false
	}
}
