// Package search implements the token-based fuzzy matcher used to filter
// the tool inventory. It is stateless: free text in, match decision out.
package search

import (
	"strings"
	"unicode"
)

// Tokenize splits free text into normalized lowercase tokens. Boundaries
// are runs of non-alphanumeric characters plus case transitions, so
// "fooBar_baz" yields ["foo", "bar", "baz"] and "HTTPServer" yields
// ["http", "server"].
func Tokenize(s string) []string {
	return tokenize(s, false)
}

// haystackTokens tokenizes tool text for the match side. Unlike query
// tokens, haystack tokens keep underscores, so "api_key" survives as one
// token and the underscore-stripping rule in the matcher can connect it
// to a query for "apikey".
func haystackTokens(s string) []string {
	return tokenize(s, true)
}

func tokenize(s string, keepUnderscore bool) []string {
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' && keepUnderscore {
			if cur.Len() > 0 {
				cur.WriteRune(r)
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			next := rune(0)
			if i+1 < len(runes) {
				next = runes[i+1]
			}
			// lower→upper starts a new word; so does the last capital of a
			// SCREAMING run followed by a lowercase letter (HTTPServer).
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && unicode.IsLower(next)) {
				flush()
			}
		}
		cur.WriteRune(r)
	}
	flush()
	return tokens
}

// singularize strips a trailing "s" from tokens longer than two runes.
// Deliberately crude: it makes "users" find "user" and accepts the
// occasional miss on irregular plurals.
func singularize(token string) string {
	if len(token) > 2 && strings.HasSuffix(token, "s") {
		return token[:len(token)-1]
	}
	return token
}

// compact reduces a string to its alphanumeric characters, lowercased,
// so "api_key" and "apikey" compare equal.
func compact(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// variants expands a query token into the forms it may match under:
// the token itself, its singular, and the compacted form of both.
func variants(token string) []string {
	out := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	add(token)
	add(singularize(token))
	add(compact(token))
	add(compact(singularize(token)))
	return out
}
