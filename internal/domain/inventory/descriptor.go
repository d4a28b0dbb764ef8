// Package inventory provides the core data model for the tool inventory:
// tool descriptors, configured sources, and inventory snapshots.
package inventory

import "strings"

// ApprovalMode gates whether invoking a tool needs human confirmation.
type ApprovalMode string

const (
	ApprovalRequired ApprovalMode = "required"
	ApprovalAuto     ApprovalMode = "auto"
)

// LocalSourceLabel is the display label for tools without a source prefix.
const LocalSourceLabel = "local"

// DisplayHints carries the expensive descriptive fields of a tool.
// They may be absent from the bulk listing and filled in lazily.
type DisplayHints struct {
	ArgsType    string `json:"argsType,omitempty"`
	ReturnsType string `json:"returnsType,omitempty"`
	Schema      any    `json:"schema,omitempty"`
}

// ToolDescriptor represents one callable operation exposed by a source.
//
// Path is the globally unique identifier. It is dot-segmented: the last
// segment is the operation name, everything before it is the namespace.
type ToolDescriptor struct {
	Path        string        `json:"path"`
	Description string        `json:"description,omitempty"`
	Source      string        `json:"source,omitempty"` // "<type>:<name>", empty for built-in tools
	Approval    ApprovalMode  `json:"approval"`
	Display     *DisplayHints `json:"display,omitempty"`
}

// Namespace returns all path segments but the last, joined with dots.
// A single-segment path has an empty namespace.
func (t ToolDescriptor) Namespace() string {
	idx := strings.LastIndex(t.Path, ".")
	if idx < 0 {
		return ""
	}
	return t.Path[:idx]
}

// Operation returns the final path segment.
func (t ToolDescriptor) Operation() string {
	idx := strings.LastIndex(t.Path, ".")
	return t.Path[idx+1:]
}

// SourceLabel returns the human label of the tool's origin: the portion of
// the source string after the first colon. Missing or malformed source
// strings resolve to LocalSourceLabel rather than failing.
func (t ToolDescriptor) SourceLabel() string {
	if t.Source == "" {
		return LocalSourceLabel
	}
	idx := strings.Index(t.Source, ":")
	if idx < 0 || idx == len(t.Source)-1 {
		return LocalSourceLabel
	}
	return t.Source[idx+1:]
}

// SourceType returns the portion of the source string before the first
// colon, or the empty string for local tools.
func (t ToolDescriptor) SourceType() string {
	idx := strings.Index(t.Source, ":")
	if idx <= 0 {
		return ""
	}
	return t.Source[:idx]
}

// HasDetail reports whether the descriptor already carries renderable
// detail, meaning a hydration fetch would add nothing.
func (t ToolDescriptor) HasDetail() bool {
	if strings.TrimSpace(t.Description) != "" {
		return true
	}
	if t.Display == nil {
		return false
	}
	if t.Display.ArgsType != "" || t.Display.ReturnsType != "" {
		return true
	}
	return nontrivialSchema(t.Display.Schema)
}

func nontrivialSchema(schema any) bool {
	switch s := schema.(type) {
	case nil:
		return false
	case map[string]any:
		if len(s) == 0 {
			return false
		}
		// {"type":"object"} alone carries no information worth rendering.
		if len(s) == 1 {
			if typ, ok := s["type"]; ok {
				return typ != "object"
			}
		}
		return true
	case string:
		return s != ""
	default:
		return true
	}
}
