package inventory

import (
	"errors"
	"fmt"
	"regexp"
)

// SourceType defines the protocol of a configured source.
type SourceType string

const (
	SourceMCP     SourceType = "mcp"
	SourceOpenAPI SourceType = "openapi"
	SourceGraphQL SourceType = "graphql"
)

// SourceRecord is a configured external origin contributing tools.
// Records are created, edited, and deleted by the configuration layer;
// the view engine only observes the current list.
type SourceRecord struct {
	// ID uniquely identifies the record across renames.
	ID string `json:"id" yaml:"id"`

	// Name is unique per configuration and keys the tool source strings.
	Name string `json:"name" yaml:"name"`

	Type    SourceType `json:"type" yaml:"type"`
	Enabled bool       `json:"enabled" yaml:"enabled"`

	// Config is opaque to the engine: command lines for MCP servers,
	// endpoint URLs, descriptor file paths.
	Config map[string]string `json:"config,omitempty" yaml:"config,omitempty"`
}

var sourceNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks the invariants the rest of the system relies on.
func (s SourceRecord) Validate() error {
	if s.Name == "" {
		return errors.New("source name is required")
	}
	if !sourceNameRe.MatchString(s.Name) {
		return fmt.Errorf("source name %q must be lowercase alphanumeric with - or _", s.Name)
	}
	switch s.Type {
	case SourceMCP, SourceOpenAPI, SourceGraphQL:
		return nil
	default:
		return fmt.Errorf("unknown source type %q", s.Type)
	}
}
