// Package search ranks stored tenders against free-text keywords after
// structured filtering against the relational projection.
package search

import (
	"strings"
	"unicode/utf8"
)

// Terms splits a keyword query on whitespace into distinct lowercase
// terms. Repeated terms count once; presence is what matters.
func Terms(keywords string) []string {
	fields := strings.Fields(strings.ToLower(keywords))
	if len(fields) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// Relevance scores a description against query terms as the fraction of
// terms present as substrings of the lowercased description, in [0,1].
// With no terms every candidate scores 0; the query is then unranked
// rather than an error.
func Relevance(description string, terms []string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(description)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// Excerpt truncates a description to at most max characters, marking the
// cut with an ellipsis. The cut lands on a rune boundary so multi-byte
// text is never split mid-character.
func Excerpt(description string, max int) string {
	if max <= 0 || utf8.RuneCountInString(description) <= max {
		return description
	}
	return string([]rune(description)[:max]) + "..."
}
