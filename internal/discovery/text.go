package discovery

import "strings"

// Score computes the free-text relevance of a record against a query.
//
// The query is tokenized on whitespace and lower-cased; each token adds
// one point when it appears as a substring of the record's searchable
// fields, matched case-insensitively. A score of zero means the record
// does not match the query at all and is dropped from search results.
//
// An empty (or all-whitespace) query scores zero tokens against zero
// matches; callers treat that case as "no text constraint" and must not
// use the score for exclusion.
func Score(fields []string, query string) int {
	toks := tokenize(query)
	if len(toks) == 0 {
		return 0
	}

	haystack := strings.ToLower(strings.Join(fields, " "))

	score := 0
	for _, tok := range toks {
		if strings.Contains(haystack, tok) {
			score++
		}
	}
	return score
}

// tokenize splits a query on whitespace and lower-cases every token.
func tokenize(query string) []string {
	raw := strings.Fields(query)
	if len(raw) == 0 {
		return nil
	}

	toks := make([]string, len(raw))
	for i, t := range raw {
		toks[i] = strings.ToLower(t)
	}
	return toks
}
