// Package ranking scores palette items against a query and orders them.
package ranking

import (
	"strings"
	"unicode/utf8"
)

// NoMatch is returned by Score when the query does not match the text.
const NoMatch = -1.0

// Score bands. A prefix match lands in [500, 600], a substring match in
// [100, 150], and a scattered subsequence match stays well below 100 for
// queries of ordinary length.
const (
	exactScore    = 1000.0
	prefixBase    = 500.0
	prefixSpan    = 100.0
	containsBase  = 100.0
	containsSpan  = 50.0
	bonusIncrease = 0.5
)

// Score returns the relevance of text for query, higher is better.
// Matching is case-insensitive. NoMatch means the query characters do not
// all appear in order in text.
func Score(query, text string) float64 {
	return scoreLower(strings.ToLower(query), strings.ToLower(text))
}

// scoreLower expects both arguments already lowercased.
func scoreLower(q, t string) float64 {
	if q == t {
		return exactScore
	}

	if strings.HasPrefix(t, q) {
		return prefixBase + lengthRatio(q, t)*prefixSpan
	}

	if strings.Contains(t, q) {
		return containsBase + lengthRatio(q, t)*containsSpan
	}

	return subsequenceScore(q, t)
}

// lengthRatio rewards queries that cover more of the text. t is never
// empty here because a non-empty t is required to contain q without
// being equal to it.
func lengthRatio(q, t string) float64 {
	return float64(utf8.RuneCountInString(q)) / float64(utf8.RuneCountInString(t))
}

// subsequenceScore walks t once, consuming query runes in order. Runs of
// consecutive matches earn a growing bonus; any miss resets it.
func subsequenceScore(q, t string) float64 {
	qr := []rune(q)
	if len(qr) == 0 {
		return NoMatch
	}

	qi := 0
	score := 0.0
	bonus := 0.0
	for _, c := range t {
		if qi >= len(qr) {
			break
		}
		if c == qr[qi] {
			score += 1 + bonus
			bonus += bonusIncrease
			qi++
		} else {
			bonus = 0
		}
	}

	if qi != len(qr) {
		return NoMatch
	}
	return score
}
