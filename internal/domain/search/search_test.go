package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"snake and camel", "fooBar_baz", []string{"foo", "bar", "baz"}},
		{"dotted path", "github.issues.list", []string{"github", "issues", "list"}},
		{"screaming run", "HTTP_SERVER", []string{"http", "server"}},
		{"screaming into word", "HTTPServer", []string{"http", "server"}},
		{"mixed case path", "gitHub.repos.list", []string{"git", "hub", "repos", "list"}},
		{"digits stay attached", "oauth2.token", []string{"oauth2", "token"}},
		{"empty", "", nil},
		{"punctuation only", "...---", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.input))
		})
	}
}

func TestHaystackTokensKeepUnderscores(t *testing.T) {
	assert.Equal(t, []string{"auth", "api_key", "rotate"}, haystackTokens("auth.api_key.rotate"))
	assert.Equal(t, []string{"foo", "bar_baz"}, haystackTokens("fooBar_baz"))
}

func TestQueryMatches(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		path        string
		description string
		match       bool
	}{
		{"empty query matches everything", "", "anything.at.all", "", true},
		{"exact segment", "get", "users.profile.get", "", true},
		{"plural query singular haystack", "users", "user.profile.get", "", true},
		{"singular query plural haystack", "user", "users.profile.get", "", true},
		{"conjunction all match", "user get", "users.profile.get", "", true},
		{"conjunction one misses", "user get", "gitHub.repos.list", "", false},
		{"underscore compaction", "apikey", "auth.api_key.rotate", "", true},
		{"reverse compaction", "api_key", "auth.apikey.rotate", "", true},
		{"matches description", "paginate", "github.issues.list", "Lists issues, paginated", true},
		{"case insensitive", "GitHub", "github.issues.list", "", true},
		{"substring of token", "issu", "github.issues.list", "", true},
		{"no match", "slack", "github.issues.list", "Lists issues", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuery(tt.query)
			assert.Equal(t, tt.match, q.Matches(tt.path, tt.description))
		})
	}
}

func TestQueryEmpty(t *testing.T) {
	assert.True(t, NewQuery("").Empty())
	assert.True(t, NewQuery("  ...  ").Empty())
	assert.False(t, NewQuery("x").Empty())
}
