package state

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Rows are rendered table lines, so a query is split into words and a row
// matches only when every word fuzzy-matches it. "queue q1" narrows on the
// schema column and the object name column at once.

func queryTerms(query string) []string {
	return strings.Fields(query)
}

// matchScore sums the fuzzy distance of every term against label. It
// returns -1 when some term does not match.
func matchScore(label string, terms []string) int {
	total := 0
	for _, term := range terms {
		d := fuzzy.RankMatchNormalizedFold(term, label)
		if d < 0 {
			return -1
		}
		total += d
	}
	return total
}

// columnPrefix reports whether some column of label starts with term.
func columnPrefix(label, term string) bool {
	term = strings.ToLower(term)
	for _, field := range strings.Fields(label) {
		if strings.HasPrefix(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// FilterItems returns the items whose labels match every word of query, in
// their original order.
func FilterItems(items []Item, query string) []Item {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return CloneItems(items)
	}
	matched := make([]Item, 0, len(items))
	for _, item := range items {
		if matchScore(item.Label, terms) >= 0 {
			matched = append(matched, item)
		}
	}
	return matched
}

// BestMatchIndex picks the row to select for query. Rows with a column that
// starts with the first word win; after that the lowest fuzzy distance wins
// and ties go to the earlier row. It returns 0 when nothing matches and -1
// for an empty list.
func BestMatchIndex(items []Item, query string) int {
	if len(items) == 0 {
		return -1
	}
	terms := queryTerms(query)
	if len(terms) == 0 {
		return 0
	}
	best, bestScore, bestPrefix := 0, -1, false
	for i, item := range items {
		score := matchScore(item.Label, terms)
		if score < 0 {
			continue
		}
		prefix := columnPrefix(item.Label, terms[0])
		switch {
		case bestScore < 0,
			prefix && !bestPrefix,
			prefix == bestPrefix && score < bestScore:
			best, bestScore, bestPrefix = i, score, prefix
		}
	}
	return best
}
