package key

import "github.com/pmezard/go-difflib/difflib"

const fuzzyCutoff = 0.6

// closestMatch returns the possibility most similar to word, provided its
// similarity ratio is at least cutoff. Ties on the ratio go to the greater
// string.
func closestMatch(word string, possibilities []string, cutoff float64) (string, bool) {
	m := difflib.NewMatcher(nil, runes(word))

	best, bestScore, found := "", 0.0, false
	for _, p := range possibilities {
		m.SetSeq1(runes(p))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		score := m.Ratio()
		if score < cutoff {
			continue
		}
		if !found || score > bestScore || (score == bestScore && p > best) {
			best, bestScore, found = p, score, true
		}
	}
	return best, found
}

// runes splits s into one-element strings so the line-oriented matcher
// compares characters.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
