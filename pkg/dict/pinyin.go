package dict

import (
	"strings"

	"github.com/mozillazg/go-pinyin"

	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// MandarinPinyin returns the Mandarin reading of the Han characters in s,
// once with tone numbers ("nong2") and once without ("nong"). Syllables are
// joined without spaces because separators are stripped from romanized
// queries anyway. Non-Han text yields nothing.
func MandarinPinyin(s string) []string {
	toned := pinyin.NewArgs()
	toned.Style = pinyin.Tone3
	syllables := pinyin.LazyPinyin(s, toned)
	if len(syllables) == 0 {
		return nil
	}
	plain := pinyin.LazyPinyin(s, pinyin.NewArgs())

	withTone := strings.Join(syllables, "")
	withoutTone := strings.Join(plain, "")
	if withTone == withoutTone {
		return []string{withTone}
	}
	return []string{withTone, withoutTone}
}

// pinyinDeriver derives Mandarin pinyin for entries whose dialect belongs to
// a dataset with mandarin_pinyin enabled. It returns nil when no dialect
// qualifies.
func pinyinDeriver(dialects map[string]bool) lexicon.Deriver {
	if len(dialects) == 0 {
		return nil
	}
	return func(e lexicon.Entry) []string {
		if !dialects[e.Dialect] {
			return nil
		}
		return MandarinPinyin(e.Headword)
	}
}
