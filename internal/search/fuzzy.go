package search

import "strings"

// Score rates how well text matches query on a four-tier relevance ladder:
// direct substring, word prefix, word substring, character subsequence.
// The tier order and constants are part of the engine's output contract;
// consumers depend on the exact ranking.
//
// Zero means "no match" and callers must exclude the item.
func Score(query, text string) int {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return 0
	}
	text = strings.ToLower(text)

	// Tier 1: substring. Earlier matches rank higher, floored at 50.
	if idx := strings.Index(text, query); idx >= 0 {
		score := 100 - idx
		if score < 50 {
			score = 50
		}
		return score
	}

	words := strings.Fields(text)

	// A word-level hit on a single-token query is always a whole-text
	// substring hit too, so tiers 2 and 3 only matter if tier 1's scan
	// is ever narrowed.

	// Tier 2: some word starts with the query.
	for _, w := range words {
		if strings.HasPrefix(w, query) {
			return 75
		}
	}

	// Tier 3: some word contains the query.
	for _, w := range words {
		if strings.Contains(w, query) {
			return 60
		}
	}

	// Tier 4: greedy left-to-right subsequence. Only a complete match
	// counts; partial consumption scores zero.
	queryRunes := []rune(query)
	matched := 0
	for _, r := range text {
		if matched == len(queryRunes) {
			break
		}
		if r == queryRunes[matched] {
			matched++
		}
	}
	if matched == len(queryRunes) {
		return matched * 40 / len(queryRunes)
	}
	return 0
}
