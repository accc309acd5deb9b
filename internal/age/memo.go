package age

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoSize is the number of ages a Memo keeps before evicting.
const DefaultMemoSize = 4096

type memoKey struct {
	birth    date
	target   date
	maxWeeks int
}

// Memo is a bounded least-recently-used cache of computed ages, keyed by
// calendar days. It is owned by whoever builds it and injected into a
// Calculator; it is safe for concurrent use.
type Memo struct {
	cache *lru.Cache[memoKey, ExactAge]
}

// NewMemo returns a Memo holding at most size entries.
func NewMemo(size int) (*Memo, error) {
	c, err := lru.New[memoKey, ExactAge](size)
	if err != nil {
		return nil, err
	}
	return &Memo{cache: c}, nil
}

func (m *Memo) get(k memoKey) (ExactAge, bool) { return m.cache.Get(k) }

func (m *Memo) add(k memoKey, a ExactAge) { m.cache.Add(k, a) }

// Len returns the number of cached ages.
func (m *Memo) Len() int { return m.cache.Len() }

// Purge drops every cached age.
func (m *Memo) Purge() { m.cache.Purge() }
