package lexicon

import (
	"strings"
	"unicode/utf8"
)

// Scores awarded by the ladder.
const (
	ScoreHeadwordExact      = 1000
	ScoreRomanizationExact  = 900
	ScoreIPAExact           = 850
	ScoreHeadwordPrefix     = 700
	ScoreRomanizationPrefix = 650

	ScoreTextContains         = 300
	ScoreRomanizationContains = 260
	ScoreRomanizationFuzzy    = 200 // minus fuzzyPenalty per edit
	ScoreHeadwordFuzzy        = 120
)

const (
	maxRomanizationDistance = 2
	maxHeadwordDistance     = 1
	fuzzyPenalty            = 60

	// minHeadwordFuzzyLen is the plain query length (in runes) required
	// before headword typos earn credit. Romanization fuzzing has no such
	// floor.
	minHeadwordFuzzyLen = 2
)

// candidate is the precomputed projection of an entry that rules compare
// against. It is built once per entry when an Index is constructed.
type candidate struct {
	entry *Entry

	text     string // BuildSearchText plus derived keywords
	folded   string // lowercase text
	headword string // NormalizePlain(headword)
	roman    string // NormalizeRomanization(romanization)
	ipa      string // NormalizeIPA(ipa)
}

func newCandidate(e *Entry, derive Deriver) candidate {
	text := BuildSearchText(e)
	if derive != nil {
		var b textBuilder
		b.add(text)
		b.add(derive(*e)...)
		text = b.String()
	}
	return candidate{
		entry:    e,
		text:     text,
		folded:   strings.ToLower(text),
		headword: NormalizePlain(e.Headword),
		roman:    NormalizeRomanization(e.Romanization()),
		ipa:      NormalizeIPA(e.IPA()),
	}
}

// query holds the normalized forms of a raw query string.
type query struct {
	plain string
	roman string
	ipa   string
}

func parseQuery(raw string) query {
	return query{
		plain: NormalizePlain(raw),
		roman: NormalizeRomanization(raw),
		ipa:   NormalizeIPA(raw),
	}
}

func (q *query) empty() bool {
	return q.plain == ""
}

type ruleKind int

const (
	// exclusive rules end evaluation with their score when they fire.
	exclusive ruleKind = iota
	// additive rules are summed when no exclusive rule fired.
	additive
)

type rule struct {
	name string
	kind ruleKind
	eval func(c *candidate, q *query) (int, bool)
}

// ladder is evaluated in order. All exclusive rules precede the additive
// ones.
var ladder = []rule{
	{"headword-exact", exclusive, func(c *candidate, q *query) (int, bool) {
		return ScoreHeadwordExact, equal(c.headword, q.plain)
	}},
	{"romanization-exact", exclusive, func(c *candidate, q *query) (int, bool) {
		return ScoreRomanizationExact, equal(c.roman, q.roman)
	}},
	{"ipa-exact", exclusive, func(c *candidate, q *query) (int, bool) {
		return ScoreIPAExact, equal(c.ipa, q.ipa)
	}},
	{"headword-prefix", exclusive, func(c *candidate, q *query) (int, bool) {
		return ScoreHeadwordPrefix, prefix(c.headword, q.plain)
	}},
	{"romanization-prefix", exclusive, func(c *candidate, q *query) (int, bool) {
		return ScoreRomanizationPrefix, prefix(c.roman, q.roman)
	}},
	{"text-contains", additive, func(c *candidate, q *query) (int, bool) {
		return ScoreTextContains, contains(c.folded, q.plain)
	}},
	{"romanization-contains", additive, func(c *candidate, q *query) (int, bool) {
		return ScoreRomanizationContains, contains(c.roman, q.roman)
	}},
	{"romanization-fuzzy", additive, func(c *candidate, q *query) (int, bool) {
		if c.roman == "" || q.roman == "" {
			return 0, false
		}
		d := Distance(q.roman, c.roman)
		if d > maxRomanizationDistance {
			return 0, false
		}
		return ScoreRomanizationFuzzy - d*fuzzyPenalty, true
	}},
	{"headword-fuzzy", additive, func(c *candidate, q *query) (int, bool) {
		if c.headword == "" || utf8.RuneCountInString(q.plain) < minHeadwordFuzzyLen {
			return 0, false
		}
		return ScoreHeadwordFuzzy, Distance(q.plain, c.headword) <= maxHeadwordDistance
	}},
}

// Fields that are empty on either side never match.
func equal(field, q string) bool {
	return field != "" && q != "" && field == q
}

func prefix(field, q string) bool {
	return field != "" && q != "" && strings.HasPrefix(field, q)
}

func contains(field, q string) bool {
	return field != "" && q != "" && strings.Contains(field, q)
}

// Hit records a rule that fired and the points it contributed.
type Hit struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
}

// evaluate folds the ladder over c. When hits is non-nil every firing rule is
// appended to it.
func evaluate(c *candidate, q *query, hits *[]Hit) int {
	if q.empty() {
		return 0
	}
	total := 0
	for i := range ladder {
		r := &ladder[i]
		pts, ok := r.eval(c, q)
		if !ok {
			continue
		}
		if hits != nil {
			*hits = append(*hits, Hit{Rule: r.name, Points: pts})
		}
		if r.kind == exclusive {
			return pts
		}
		total += pts
	}
	return total
}

// Score returns the ladder score of e for the raw query. Zero means no match;
// an empty query always scores zero.
func Score(e *Entry, rawQuery string) int {
	c := newCandidate(e, nil)
	q := parseQuery(rawQuery)
	return evaluate(&c, &q, nil)
}

// Explain returns the rules that fired for e and the raw query, in ladder
// order. The points sum to Score(e, rawQuery).
func Explain(e *Entry, rawQuery string) []Hit {
	c := newCandidate(e, nil)
	q := parseQuery(rawQuery)
	var hits []Hit
	evaluate(&c, &q, &hits)
	return hits
}
