package knowledge

// minFuzzyLength is the shortest token fuzzy matching applies to. Below it
// the false-positive rate is too high and Similar falls back to equality.
const minFuzzyLength = 4

// Similar reports whether two tokens are within threshold edits of each
// other. Tokens shorter than four runes must match exactly.
func Similar(a, b string, threshold int) bool {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) < minFuzzyLength || len(rb) < minFuzzyLength {
		return a == b
	}

	return editDistance(ra, rb) <= threshold
}

// editDistance computes the Levenshtein distance between a and b with
// unit-cost inserts, deletes and substitutions.
func editDistance(a, b []rune) int {
	d := make([][]int, len(b)+1)
	for i := range d {
		d[i] = make([]int, len(a)+1)
		d[i][0] = i
	}
	for j := 0; j <= len(a); j++ {
		d[0][j] = j
	}

	for i := 1; i <= len(b); i++ {
		for j := 1; j <= len(a); j++ {
			if a[j-1] == b[i-1] {
				d[i][j] = d[i-1][j-1]
			} else {
				d[i][j] = 1 + min3(d[i-1][j-1], d[i][j-1], d[i-1][j])
			}
		}
	}

	return d[len(b)][len(a)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
