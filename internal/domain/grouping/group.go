// Package grouping builds the hierarchical views of the tool inventory.
// Builders are pure functions over an already-filtered tool list; trees
// are rebuilt from scratch on every pass rather than maintained
// incrementally.
package grouping

import (
	"github.com/toolscope/toolscope/internal/domain/inventory"
)

// GroupType distinguishes the two node kinds in the tree.
type GroupType string

const (
	GroupSource    GroupType = "source"
	GroupNamespace GroupType = "namespace"
)

// Group key prefixes. Keys are synthetic and deterministic so that
// selection and expansion state stays valid across rebuilds.
const (
	approvalRequiredKey = "approval:required"
	approvalAutoKey     = "approval:auto"
)

// SourceKey returns the key of a top-level source group.
func SourceKey(label string) string { return "source:" + label }

// SourceNamespaceKey returns the key of a namespace group nested under a
// source group.
func SourceNamespaceKey(label, ns string) string { return "source:" + label + ":ns:" + ns }

// NamespaceKey returns the key of a top-level namespace group.
func NamespaceKey(ns string) string { return "ns:" + ns }

// Group is one node of a hierarchical inventory view.
//
// Children are homogeneous: exactly one of Groups and Tools is non-nil.
// ChildCount and ApprovalCount always describe the leaf tools reachable
// beneath the node at the moment the tree was built.
type Group struct {
	Key        string    `json:"key"`
	Label      string    `json:"label"`
	Type       GroupType `json:"type"`
	SourceType string    `json:"sourceType,omitempty"`

	ChildCount    int `json:"childCount"`
	ApprovalCount int `json:"approvalCount"`

	// LoadingPlaceholders requests that many synthetic skeleton rows for
	// a source whose tools have not arrived yet.
	LoadingPlaceholders int `json:"loadingPlaceholderCount,omitempty"`

	Groups []*Group                   `json:"groups,omitempty"`
	Tools  []inventory.ToolDescriptor `json:"tools,omitempty"`
}

// Leaves returns every tool reachable beneath the group.
func (g *Group) Leaves() []inventory.ToolDescriptor {
	if g == nil {
		return nil
	}
	if g.Tools != nil {
		out := make([]inventory.ToolDescriptor, len(g.Tools))
		copy(out, g.Tools)
		return out
	}
	var out []inventory.ToolDescriptor
	for _, child := range g.Groups {
		out = append(out, child.Leaves()...)
	}
	return out
}

// FindByKey locates a group anywhere in the forest. A miss returns nil:
// stale keys resolve to nothing rather than failing.
func FindByKey(groups []*Group, key string) *Group {
	for _, g := range groups {
		if g.Key == key {
			return g
		}
		if found := FindByKey(g.Groups, key); found != nil {
			return found
		}
	}
	return nil
}

// Keys returns the keys of every group in the forest that contains at
// least one tool. Placeholder-only groups are skipped, so the result can
// drive search auto-expansion directly.
func Keys(groups []*Group) []string {
	var out []string
	for _, g := range groups {
		if g.ChildCount > 0 {
			out = append(out, g.Key)
		}
		out = append(out, Keys(g.Groups)...)
	}
	return out
}

func countApproval(tools []inventory.ToolDescriptor) int {
	n := 0
	for _, t := range tools {
		if t.Approval == inventory.ApprovalRequired {
			n++
		}
	}
	return n
}
