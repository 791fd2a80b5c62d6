package lexicon

import (
	"slices"
	"strings"
)

// All is the filter value that matches every dialect or part of speech.
const All = "all"

// Filters restricts a search to one dialect and/or part of speech. The zero
// value and All both mean "no restriction".
type Filters struct {
	Dialect string `json:"dialect,omitempty"`
	POS     string `json:"pos,omitempty"`
}

func (f Filters) match(e *Entry) bool {
	return matchFilter(f.Dialect, e.Dialect) && matchFilter(f.POS, e.POS)
}

func matchFilter(want, got string) bool {
	return want == "" || want == All || want == got
}

// Deriver returns extra search keywords for an entry, appended to its search
// text when an index is built.
type Deriver func(Entry) []string

// IndexOption configures NewIndex.
type IndexOption func(*indexOptions)

type indexOptions struct {
	derive Deriver
}

// WithDeriver appends derived keywords to every entry's search text. Derived
// keywords only take part in the text-contains rule.
func WithDeriver(d Deriver) IndexOption {
	return func(o *indexOptions) {
		o.derive = d
	}
}

// Index is the searchable projection of an entry set. It keeps the entries in
// insertion order together with their precomputed search text and normalized
// forms. An Index is immutable; build a new one when the entries change.
type Index struct {
	entries    []Entry
	candidates []candidate
	byID       map[string]int
}

// NewIndex builds an index over entries. The index keeps a reference to the
// slice, which must not be modified afterwards.
func NewIndex(entries []Entry, opts ...IndexOption) *Index {
	var o indexOptions
	for _, opt := range opts {
		opt(&o)
	}

	idx := &Index{
		entries:    entries,
		candidates: make([]candidate, len(entries)),
		byID:       make(map[string]int, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		idx.candidates[i] = newCandidate(e, o.derive)
		if _, exists := idx.byID[e.ID]; !exists {
			idx.byID[e.ID] = i
		}
	}
	return idx
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Entries returns the indexed entries in insertion order.
func (idx *Index) Entries() []*Entry {
	out := make([]*Entry, len(idx.entries))
	for i := range idx.entries {
		out[i] = &idx.entries[i]
	}
	return out
}

// Lookup returns the first entry with the given ID.
func (idx *Index) Lookup(id string) (*Entry, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return &idx.entries[i], true
}

// SearchText returns the cached search text of the entry with the given ID.
func (idx *Index) SearchText(id string) (string, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return "", false
	}
	return idx.candidates[i].text, true
}

// Score scores the entry with the given ID against the raw query. Unknown IDs
// score zero.
func (idx *Index) Score(id, rawQuery string) int {
	i, ok := idx.byID[id]
	if !ok {
		return 0
	}
	q := parseQuery(rawQuery)
	return evaluate(&idx.candidates[i], &q, nil)
}

// Explain lists the rules that fired for the entry with the given ID.
func (idx *Index) Explain(id, rawQuery string) []Hit {
	i, ok := idx.byID[id]
	if !ok {
		return nil
	}
	q := parseQuery(rawQuery)
	var hits []Hit
	evaluate(&idx.candidates[i], &q, &hits)
	return hits
}

// Result is a ranked entry.
type Result struct {
	Entry *Entry `json:"entry"`
	Score int    `json:"score"`
}

// Rank filters the index and, for a non-empty query, scores every remaining
// entry, drops those scoring zero and orders the rest by descending score.
// Entries with equal scores keep their insertion order. An empty (or
// whitespace) query returns the filtered entries in insertion order with a
// zero score.
func (idx *Index) Rank(f Filters, rawQuery string) []Result {
	q := parseQuery(rawQuery)

	var results []Result
	for i := range idx.entries {
		e := &idx.entries[i]
		if !f.match(e) {
			continue
		}
		if q.empty() {
			results = append(results, Result{Entry: e})
			continue
		}
		if s := evaluate(&idx.candidates[i], &q, nil); s > 0 {
			results = append(results, Result{Entry: e, Score: s})
		}
	}

	if !q.empty() {
		slices.SortStableFunc(results, func(a, b Result) int {
			return b.Score - a.Score
		})
	}
	return results
}

// Search is Rank without the scores.
func (idx *Index) Search(f Filters, rawQuery string) []*Entry {
	ranked := idx.Rank(f, rawQuery)
	out := make([]*Entry, len(ranked))
	for i, r := range ranked {
		out[i] = r.Entry
	}
	return out
}

// Search ranks entries against the raw query with a throwaway index. Callers
// that query the same entries repeatedly should keep an Index instead.
func Search(entries []Entry, f Filters, rawQuery string) []*Entry {
	return NewIndex(entries).Search(f, rawQuery)
}

// Facets lists the distinct filter values present in an index.
type Facets struct {
	Dialects []string `json:"dialects"`
	POS      []string `json:"pos"`
}

// Facets returns the distinct non-empty dialect and part-of-speech values in
// first-seen order.
func (idx *Index) Facets() Facets {
	f := Facets{Dialects: []string{}, POS: []string{}}
	seenDialect := map[string]bool{}
	seenPOS := map[string]bool{}
	for i := range idx.entries {
		e := &idx.entries[i]
		if d := strings.TrimSpace(e.Dialect); d != "" && !seenDialect[d] {
			seenDialect[d] = true
			f.Dialects = append(f.Dialects, d)
		}
		if p := strings.TrimSpace(e.POS); p != "" && !seenPOS[p] {
			seenPOS[p] = true
			f.POS = append(f.POS, p)
		}
	}
	return f
}
