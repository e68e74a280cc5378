package keyword

import (
	"sort"
	"strings"
)

// maxSuggestDistance is the largest edit distance considered a typo.
const maxSuggestDistance = 2

// Suggest replaces unknown query terms with the closest indexed term, preferring
// smaller typo distance and then higher document frequency.
func (b *BleveIndex) Suggest(query string) (string, error) {
	freqs, err := b.termFrequencies()
	if err != nil {
		return "", err
	}
	return suggestFrom(freqs, query), nil
}

func suggestFrom(freqs map[string]uint64, query string) string {
	terms := tokenizeQuery(query)
	if len(terms) == 0 || len(freqs) == 0 {
		return ""
	}
	dictionary := make([]string, 0, len(freqs))
	for term := range freqs {
		dictionary = append(dictionary, term)
	}
	sort.Strings(dictionary)

	corrected := make([]string, len(terms))
	changed := false
	for i, term := range terms {
		corrected[i] = term
		if _, ok := freqs[term]; ok {
			continue
		}
		best, bestDist := "", maxSuggestDistance+1
		for _, candidate := range dictionary {
			if abs(len(candidate)-len(term)) > maxSuggestDistance {
				continue
			}
			d := TypoDistance(term, candidate)
			if d < bestDist || (d == bestDist && freqs[candidate] > freqs[best]) {
				best, bestDist = candidate, d
			}
		}
		if best != "" {
			corrected[i] = best
			changed = true
		}
	}
	if !changed {
		return ""
	}
	return strings.Join(corrected, " ")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
