package dict

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// ErrDuplicateID is returned when two entries of a working set share an ID.
var ErrDuplicateID = errors.New("duplicate entry id")

// Prepare applies importer defaults to raw entries in place: text fields and
// list items are trimmed, empty list items dropped, a missing ID becomes
// "<prefix>-<n>" (n is the 1-based position) and a missing dialect becomes
// defaultDialect. Headwords may stay empty.
func Prepare(entries []lexicon.Entry, prefix, defaultDialect string) {
	for i := range entries {
		e := &entries[i]
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			e.ID = fmt.Sprintf("%s-%d", prefix, i+1)
		}
		e.Headword = strings.TrimSpace(e.Headword)
		e.Gloss = strings.TrimSpace(e.Gloss)
		e.Dialect = strings.TrimSpace(e.Dialect)
		if e.Dialect == "" {
			e.Dialect = defaultDialect
		}
		e.POS = strings.TrimSpace(e.POS)
		e.Senses = cleanList(e.Senses)
		e.Tags = cleanList(e.Tags)
		e.Aliases = cleanList(e.Aliases)
		e.Keywords = cleanList(e.Keywords)
		e.Syllables = cleanList(e.Syllables)
		if p := e.Pronunciation; p != nil {
			p.Romanization = strings.TrimSpace(p.Romanization)
			p.IPA = strings.TrimSpace(p.IPA)
			p.Tone = strings.TrimSpace(p.Tone)
			p.AlternateRomanizations = cleanList(p.AlternateRomanizations)
		}
		examples := e.Examples[:0]
		for _, ex := range e.Examples {
			ex.Sentence = strings.TrimSpace(ex.Sentence)
			ex.Note = strings.TrimSpace(ex.Note)
			if ex.Sentence != "" || ex.Note != "" {
				examples = append(examples, ex)
			}
		}
		if len(examples) == 0 {
			examples = nil
		}
		e.Examples = examples
	}
}

// CheckUnique reports the first ID shared by two entries.
func CheckUnique(entries []lexicon.Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for i := range entries {
		id := entries[i].ID
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func cleanList(items []string) []string {
	var out []string
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func countMissingHeadwords(entries []lexicon.Entry) int {
	n := 0
	for i := range entries {
		if entries[i].Headword == "" {
			n++
		}
	}
	return n
}
