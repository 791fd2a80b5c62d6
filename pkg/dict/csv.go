package dict

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// csvColumns is the column order written on export and assumed for CSV files
// without a header row.
var csvColumns = []string{
	"id", "headword", "gloss", "dialect", "pos",
	"romanization", "ipa", "alternate_romanizations", "tone",
	"senses", "tags", "aliases", "keywords", "syllables", "examples",
}

// columnAliases maps accepted header spellings to canonical column names.
var columnAliases = map[string]string{
	"word":                   "headword",
	"part_of_speech":         "pos",
	"alternates":             "alternate_romanizations",
	"alternateromanizations": "alternate_romanizations",
	"alias":                  "aliases",
	"keyword":                "keywords",
	"tag":                    "tags",
	"sense":                  "senses",
	"example":                "examples",
}

// exampleSeparator splits a sentence from its note inside an examples cell.
const exampleSeparator = "::"

// searchableColumns are the columns of which a header must carry at least one.
var searchableColumns = []string{
	"headword", "romanization", "ipa", "alternate_romanizations", "gloss",
	"senses", "aliases", "keywords",
}

// escapeChar protects separator characters inside list items and examples.
const escapeChar = '\\'

func canonicalColumn(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	if c, ok := columnAliases[h]; ok {
		return c
	}
	return h
}

func readCSV(r io.Reader, layout FormatSpec) ([]lexicon.Entry, error) {
	// Transcode non-UTF-8 encodings declared in the manifest.
	if enc := layout.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		r = transform.NewReader(r, e.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.Comma = layout.delimiter()
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	// Resolve column indices from the header, or assume csvColumns order.
	colIdx := make(map[string]int)
	if layout.hasHeader() {
		header, err := cr.Read()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		for i, h := range header {
			if i == 0 {
				h = strings.TrimPrefix(h, "\ufeff")
			}
			name := canonicalColumn(h)
			if _, dup := colIdx[name]; !dup {
				colIdx[name] = i
			}
		}
		if !hasAnyColumn(colIdx, searchableColumns) {
			return nil, fmt.Errorf("header %v has no searchable column", header)
		}
	} else {
		for i, name := range csvColumns {
			colIdx[name] = i
		}
	}

	sep := layout.listSeparator()
	var entries []lexicon.Entry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blankRecord(record) {
			continue
		}

		cell := func(name string) string {
			i, ok := colIdx[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		list := func(name string) []string {
			return splitList(cell(name), sep)
		}

		e := lexicon.Entry{
			ID:        cell("id"),
			Headword:  cell("headword"),
			Gloss:     cell("gloss"),
			Dialect:   cell("dialect"),
			POS:       cell("pos"),
			Senses:    list("senses"),
			Tags:      list("tags"),
			Aliases:   list("aliases"),
			Keywords:  list("keywords"),
			Syllables: list("syllables"),
		}
		p := lexicon.Pronunciation{
			Romanization:           cell("romanization"),
			IPA:                    cell("ipa"),
			AlternateRomanizations: list("alternate_romanizations"),
			Tone:                   cell("tone"),
		}
		if p.Romanization != "" || p.IPA != "" || p.Tone != "" || len(p.AlternateRomanizations) > 0 {
			e.Pronunciation = &p
		}
		for _, item := range splitEscaped(cell("examples"), sep) {
			parts := splitEscaped(item, exampleSeparator)
			ex := lexicon.Example{Sentence: strings.TrimSpace(unescape(parts[0]))}
			if len(parts) > 1 {
				ex.Note = strings.TrimSpace(unescape(strings.Join(parts[1:], exampleSeparator)))
			}
			if ex.Sentence != "" || ex.Note != "" {
				e.Examples = append(e.Examples, ex)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func writeCSV(w io.Writer, entries []*lexicon.Entry, layout FormatSpec) error {
	sep := layout.listSeparator()
	cw := csv.NewWriter(w)
	cw.Comma = layout.delimiter()

	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	specials := sep + exampleSeparator
	join := func(items []string) string {
		escaped := make([]string, len(items))
		for i, item := range items {
			escaped[i] = escape(item, sep)
		}
		return strings.Join(escaped, sep)
	}
	for _, e := range entries {
		examples := make([]string, len(e.Examples))
		for i, ex := range e.Examples {
			examples[i] = escape(ex.Sentence, specials)
			if ex.Note != "" {
				examples[i] += exampleSeparator + escape(ex.Note, specials)
			}
		}
		var alternates []string
		var tone string
		if e.Pronunciation != nil {
			alternates = e.Pronunciation.AlternateRomanizations
			tone = e.Pronunciation.Tone
		}
		record := []string{
			e.ID, e.Headword, e.Gloss, e.Dialect, e.POS,
			e.Romanization(), e.IPA(), join(alternates), tone,
			join(e.Senses),
			join(e.Tags),
			join(e.Aliases),
			join(e.Keywords),
			join(e.Syllables),
			strings.Join(examples, sep),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write entry %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func splitList(cell, sep string) []string {
	var out []string
	for _, item := range splitEscaped(cell, sep) {
		if item = strings.TrimSpace(unescape(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// escape prefixes the escape character and every character of specials in s
// with the escape character.
func escape(s, specials string) string {
	var b strings.Builder
	for _, r := range s {
		if r == escapeChar || strings.ContainsRune(specials, r) {
			b.WriteRune(escapeChar)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitEscaped splits s on sep, ignoring separators preceded by the escape
// character. Escapes are kept in the returned items.
func splitEscaped(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); {
		switch {
		case s[i] == escapeChar && i+1 < len(s):
			i += 2
		case strings.HasPrefix(s[i:], sep):
			out = append(out, s[start:i])
			i += len(sep)
			start = i
		default:
			i++
		}
	}
	return append(out, s[start:])
}

func unescape(s string) string {
	if strings.IndexByte(s, escapeChar) < 0 {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == escapeChar && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func hasAnyColumn(colIdx map[string]int, names []string) bool {
	for _, name := range names {
		if _, ok := colIdx[name]; ok {
			return true
		}
	}
	return false
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
