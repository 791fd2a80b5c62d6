// Package lexicon is the search core of the dialect dictionary: text
// normalization, searchable-text construction, edit distance, the scoring
// ladder and the filtered ranking engine.
//
// Everything in this package is pure computation over in-memory values. An
// Index is read-only once built and may be queried from any number of
// goroutines; replacing the entry set means building a new Index.
package lexicon

// Entry is a single dictionary record.
type Entry struct {
	ID            string         `json:"id"`
	Headword      string         `json:"headword"`
	Gloss         string         `json:"gloss,omitempty"`
	Dialect       string         `json:"dialect,omitempty"`
	POS           string         `json:"pos,omitempty"`
	Pronunciation *Pronunciation `json:"pronunciation,omitempty"`
	Senses        []string       `json:"senses,omitempty"`
	Examples      []Example      `json:"examples,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	Aliases       []string       `json:"aliases,omitempty"`
	Keywords      []string       `json:"keywords,omitempty"`
	Syllables     []string       `json:"syllables,omitempty"`
}

// Pronunciation holds the transcriptions of an entry.
type Pronunciation struct {
	Romanization           string   `json:"romanization,omitempty"`
	IPA                    string   `json:"ipa,omitempty"`
	AlternateRomanizations []string `json:"alternateRomanizations,omitempty"`
	Tone                   string   `json:"tone,omitempty"`
}

// Example is a usage sentence with an optional note or translation.
type Example struct {
	Sentence string `json:"sentence"`
	Note     string `json:"note,omitempty"`
}

// Romanization returns the primary romanization, or "" when the entry has no
// pronunciation.
func (e *Entry) Romanization() string {
	if e.Pronunciation == nil {
		return ""
	}
	return e.Pronunciation.Romanization
}

// IPA returns the IPA transcription, or "".
func (e *Entry) IPA() string {
	if e.Pronunciation == nil {
		return ""
	}
	return e.Pronunciation.IPA
}

func (e *Entry) alternates() []string {
	if e.Pronunciation == nil {
		return nil
	}
	return e.Pronunciation.AlternateRomanizations
}
