package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer maps a raw string to its comparable form.
type Normalizer func(string) string

// superscriptDigits maps superscript tone digits to ASCII digits.
var superscriptDigits = map[rune]rune{
	'¹': '1', '²': '2', '³': '3',
	'⁴': '4', '⁵': '5', '⁶': '6',
	'⁷': '7', '⁸': '8', '⁹': '9',
}

func isRomanizationSeparator(r rune) bool {
	switch r {
	case '-', '_', '\'', '’':
		return true
	}
	return unicode.IsSpace(r)
}

func isIPAPunct(r rune) bool {
	switch r {
	case '[', ']', '(', ')', '/',
		'ˈ', 'ˌ', // stress
		'ː', 'ˑ': // length
		return true
	}
	return unicode.IsSpace(r)
}

// Chains are built per call: a transform.Chain carries state and must not be
// shared between goroutines.
func romanizationFolder() transform.Transformer {
	return transform.Chain(
		runes.Remove(runes.Predicate(isRomanizationSeparator)),
		runes.Map(func(r rune) rune {
			if d, ok := superscriptDigits[r]; ok {
				return d
			}
			return r
		}),
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
}

// NormalizePlain lowercases and trims s.
func NormalizePlain(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// NormalizeRomanization folds a transliteration so that spacing, hyphenation,
// superscript tone digits and diacritics do not affect comparison
// (e.g. "Nùng²" and "nung-2" both become "nung2").
func NormalizeRomanization(s string) string {
	s = NormalizePlain(s)
	if s == "" {
		return ""
	}
	out, _, err := transform.String(romanizationFolder(), s)
	if err != nil {
		// Only reachable on invalid UTF-8; fall back to the plain form.
		return s
	}
	return out
}

// NormalizeIPA drops delimiters, stress and length marks and whitespace from
// an IPA transcription: "[ˈnuŋ˧˧]" becomes "nuŋ˧˧".
func NormalizeIPA(s string) string {
	s = NormalizePlain(s)
	if s == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if isIPAPunct(r) {
			return -1
		}
		return r
	}, s)
}
