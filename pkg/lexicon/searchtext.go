package lexicon

import "strings"

// BuildSearchText flattens the searchable fields of e into a single
// space-separated string. Field order is headword, gloss, romanization, IPA,
// alternate romanizations, senses, tags, examples (sentence then note),
// aliases, keywords and syllables. Empty fields are skipped. Case is
// preserved; callers fold at comparison time.
func BuildSearchText(e *Entry) string {
	var b textBuilder
	b.add(e.Headword)
	b.add(e.Gloss)
	b.add(e.Romanization())
	b.add(e.IPA())
	b.add(e.alternates()...)
	b.add(e.Senses...)
	b.add(e.Tags...)
	for _, ex := range e.Examples {
		b.add(ex.Sentence, ex.Note)
	}
	b.add(e.Aliases...)
	b.add(e.Keywords...)
	b.add(e.Syllables...)
	return b.String()
}

type textBuilder struct {
	strings.Builder
}

func (b *textBuilder) add(parts ...string) {
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
}
