package search

import "strings"

// Query is a pre-tokenized search string. Tokenizing once and matching
// many tools is the hot path, so the expansion happens up front.
type Query struct {
	raw    string
	tokens [][]string // one variant list per query token
}

// NewQuery tokenizes and expands a raw search string.
func NewQuery(raw string) Query {
	tokens := Tokenize(raw)
	expanded := make([][]string, len(tokens))
	for i, t := range tokens {
		expanded[i] = variants(t)
	}
	return Query{raw: raw, tokens: expanded}
}

// Raw returns the original search string.
func (q Query) Raw() string { return q.raw }

// Empty reports whether the query has no tokens. An empty query matches
// every tool.
func (q Query) Empty() bool { return len(q.tokens) == 0 }

// Matches decides whether a tool's path and description satisfy the query:
// every query token must match at least one haystack token (conjunction of
// tokens, disjunction of variants).
func (q Query) Matches(path, description string) bool {
	if q.Empty() {
		return true
	}
	haystack := haystackTokens(path + " " + description)

	for _, vars := range q.tokens {
		if !anyTokenMatches(haystack, vars) {
			return false
		}
	}
	return true
}

func anyTokenMatches(haystack []string, variants []string) bool {
	for _, h := range haystack {
		stripped := strings.ReplaceAll(h, "_", "")
		compacted := compact(h)
		for _, v := range variants {
			if strings.Contains(h, v) ||
				strings.Contains(stripped, v) ||
				strings.Contains(compacted, compact(v)) {
				return true
			}
		}
	}
	return false
}
