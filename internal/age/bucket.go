package age

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// MaxMonth and MaxYear bound the Month and Year buckets.
	MaxMonth = 24
	MaxYear  = 18
)

// Kind discriminates the Bucket variants. The declaration order is the
// display order.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindPregnancy
	KindBirthMonth
	KindMonth
	KindYear
	KindCustom
)

var kindNames = [...]string{
	KindInvalid:    "invalid",
	KindPregnancy:  "pregnancy",
	KindBirthMonth: "birth_month",
	KindMonth:      "month",
	KindYear:       "year",
	KindCustom:     "custom",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return kindNames[KindInvalid]
	}
	return kindNames[k]
}

// Bucket is a named age category. It is a comparable value and can be used
// as a map key. Build it with Pregnancy, BirthMonth, Month, Year or Custom.
type Bucket struct {
	kind  Kind
	n     int
	label string
}

// Pregnancy holds photos taken before birth while pregnancy tracking is on.
func Pregnancy() Bucket { return Bucket{kind: KindPregnancy} }

// BirthMonth holds photos taken during the first month.
func BirthMonth() Bucket { return Bucket{kind: KindBirthMonth} }

// Month returns the bucket for n whole months, clamped to 1..MaxMonth.
func Month(n int) Bucket {
	return Bucket{kind: KindMonth, n: min(max(n, 1), MaxMonth)}
}

// Year returns the bucket for n whole years, clamped to 1..MaxYear.
func Year(n int) Bucket {
	return Bucket{kind: KindYear, n: min(max(n, 1), MaxYear)}
}

// Custom returns a user-defined bucket. The label is passed through unchanged.
func Custom(label string) Bucket {
	return Bucket{kind: KindCustom, label: label}
}

func (b Bucket) Kind() Kind { return b.kind }

// Value returns n for Month and Year buckets and zero otherwise.
func (b Bucket) Value() int { return b.n }

// Label returns the custom label, empty for age buckets.
func (b Bucket) Label() string { return b.label }

func (b Bucket) IsZero() bool { return b.kind == KindInvalid }

// Compare orders buckets Pregnancy < BirthMonth < Month(n) < Year(n) < Custom,
// numerically within months and years and by label within custom buckets.
func (b Bucket) Compare(o Bucket) int {
	if b.kind != o.kind {
		if b.kind < o.kind {
			return -1
		}
		return 1
	}
	switch b.kind {
	case KindMonth, KindYear:
		switch {
		case b.n < o.n:
			return -1
		case b.n > o.n:
			return 1
		}
		return 0
	case KindCustom:
		return strings.Compare(b.label, o.label)
	default:
		return 0
	}
}

// String returns the English display label.
func (b Bucket) String() string {
	switch b.kind {
	case KindPregnancy:
		return "Pregnancy"
	case KindBirthMonth:
		return "Birth Month"
	case KindMonth:
		return plural(b.n, "Month")
	case KindYear:
		return plural(b.n, "Year")
	case KindCustom:
		return b.label
	default:
		return ""
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

type bucketJSON struct {
	Kind  string `json:"kind"`
	Value int    `json:"value,omitempty"`
	Label string `json:"label,omitempty"`
}

// MarshalJSON encodes the bucket as {"kind":..., "value":..., "label":...}.
func (b Bucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(bucketJSON{Kind: b.kind.String(), Value: b.n, Label: b.label})
}

// UnmarshalJSON decodes the MarshalJSON form. Unknown kinds yield the zero bucket.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	var v bucketJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Kind {
	case kindNames[KindPregnancy]:
		*b = Pregnancy()
	case kindNames[KindBirthMonth]:
		*b = BirthMonth()
	case kindNames[KindMonth]:
		*b = Month(v.Value)
	case kindNames[KindYear]:
		*b = Year(v.Value)
	case kindNames[KindCustom]:
		*b = Custom(v.Label)
	default:
		*b = Bucket{}
	}
	return nil
}
