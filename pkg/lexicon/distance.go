package lexicon

// Distance returns the Levenshtein edit distance between a and b, counting
// single-rune insertions, deletions and substitutions at unit cost. It keeps
// one row of min(|a|,|b|)+1 cells.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	// Iterate over the longer string so the row tracks the shorter one.
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		diag := row[0] // row[i-1][j-1]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			up := row[j] // row[i-1][j]
			row[j] = min(
				up+1,       // deletion
				row[j-1]+1, // insertion
				diag+cost,  // substitution
			)
			diag = up
		}
	}
	return row[len(rb)]
}
