// Package freq holds reference n-gram frequency tables and n-gram counting.
package freq

import (
	"fmt"
	"math"
	"sort"

	"github.com/verte-zerg/shiftscope/internal/cipher"
)

// Entry is one n-gram with its expected share of text, in percent.
type Entry struct {
	Gram    string
	Percent float64
}

// Table is an immutable n-gram frequency table.
type Table struct {
	order   int
	entries []Entry
	index   map[string]int
}

// New validates entries and builds a Table of the given n-gram order (1 or 2).
// Unigram tables must cover the whole alphabet.
func New(order int, entries []Entry) (Table, error) {
	if order != 1 && order != 2 {
		return Table{}, fmt.Errorf("unsupported n-gram order %d", order)
	}
	if len(entries) == 0 {
		return Table{}, fmt.Errorf("table is empty")
	}
	t := Table{
		order:   order,
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if len(e.Gram) != order || !isLetters(e.Gram) {
			return Table{}, fmt.Errorf("invalid %d-gram %q", order, e.Gram)
		}
		if !(e.Percent > 0) || math.IsInf(e.Percent, 0) {
			return Table{}, fmt.Errorf("frequency for %q must be positive, got %v", e.Gram, e.Percent)
		}
		if _, ok := t.index[e.Gram]; ok {
			return Table{}, fmt.Errorf("duplicate entry %q", e.Gram)
		}
		t.index[e.Gram] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	if order == 1 && len(t.entries) != cipher.Size {
		return Table{}, fmt.Errorf("unigram table must cover all %d letters, got %d", cipher.Size, len(t.entries))
	}
	return t, nil
}

// FromPercentages builds a Table from a gram -> percent map. Entries are
// ordered by descending frequency, then by gram.
func FromPercentages(order int, m map[string]float64) (Table, error) {
	entries := make([]Entry, 0, len(m))
	for gram, pct := range m {
		entries = append(entries, Entry{Gram: gram, Percent: pct})
	}
	sortEntries(entries)
	return New(order, entries)
}

func mustNew(order int, entries []Entry) Table {
	t, err := New(order, entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Order is the n-gram length.
func (t Table) Order() int { return t.order }

// Len is the number of tabulated n-grams.
func (t Table) Len() int { return len(t.entries) }

// Lookup returns the expected percentage of gram.
func (t Table) Lookup(gram string) (float64, bool) {
	i, ok := t.index[gram]
	if !ok {
		return 0, false
	}
	return t.entries[i].Percent, true
}

// Entries returns a copy of the table in its canonical order.
func (t Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Each calls fn for every entry in canonical order.
func (t Table) Each(fn func(Entry)) {
	for _, e := range t.entries {
		fn(e)
	}
}

// Percentages returns a copy of the table as a map.
func (t Table) Percentages() map[string]float64 {
	out := make(map[string]float64, len(t.entries))
	for _, e := range t.entries {
		out[e.Gram] = e.Percent
	}
	return out
}

// Sum is the total of all percentages.
func (t Table) Sum() float64 {
	var sum float64
	for _, e := range t.entries {
		sum += e.Percent
	}
	return sum
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Percent == entries[j].Percent {
			return entries[i].Gram < entries[j].Gram
		}
		return entries[i].Percent > entries[j].Percent
	})
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if cipher.Index(s[i]) < 0 {
			return false
		}
	}
	return true
}
