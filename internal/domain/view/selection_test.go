package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolscope/toolscope/internal/domain/grouping"
	"github.com/toolscope/toolscope/internal/domain/inventory"
)

func sampleTree() []*grouping.Group {
	return grouping.BySourceNamespace([]inventory.ToolDescriptor{
		{Path: "github.issues.list", Source: "mcp:github"},
		{Path: "github.issues.create", Source: "mcp:github", Approval: inventory.ApprovalRequired},
		{Path: "slack.chat.send", Source: "mcp:slack"},
	})
}

func TestToggleToolFlipsMembership(t *testing.T) {
	s := NewState()
	s.ToggleTool("github.issues.list")
	assert.True(t, s.IsSelected("github.issues.list"))
	s.ToggleTool("github.issues.list")
	assert.False(t, s.IsSelected("github.issues.list"))
}

func TestToggleGroupSelectsAllLeaves(t *testing.T) {
	s := NewState()
	tree := sampleTree()

	s.ToggleGroup("source:github", tree)
	assert.True(t, s.IsSelected("github.issues.list"))
	assert.True(t, s.IsSelected("github.issues.create"))
	assert.True(t, s.IsSelected("source:github"))
	assert.False(t, s.IsSelected("slack.chat.send"))
}

func TestToggleGroupIdempotence(t *testing.T) {
	s := NewState()
	tree := sampleTree()

	// From empty: select-all then clear-all round-trips.
	s.ToggleGroup("source:github", tree)
	s.ToggleGroup("source:github", tree)
	assert.Empty(t, s.Selected(), "double toggle from empty clears the selection")

	// Unrelated selections survive the round trip.
	s.ToggleTool("slack.chat.send")
	s.ToggleGroup("source:github", tree)
	s.ToggleGroup("source:github", tree)
	assert.Equal(t, []string{"slack.chat.send"}, s.Selected())
}

func TestToggleGroupCompletesPartialSelection(t *testing.T) {
	s := NewState()
	tree := sampleTree()
	s.ToggleTool("github.issues.list")

	// One of two leaves selected: toggling selects the rest, not clears.
	s.ToggleGroup("source:github", tree)
	assert.True(t, s.IsSelected("github.issues.list"))
	assert.True(t, s.IsSelected("github.issues.create"))

	// All selected now: the next toggle clears them.
	s.ToggleGroup("source:github", tree)
	assert.False(t, s.IsSelected("github.issues.list"))
	assert.False(t, s.IsSelected("github.issues.create"))
	assert.False(t, s.IsSelected("source:github"))
}

func TestToggleGroupStaleKeyIsNoOp(t *testing.T) {
	s := NewState()
	s.ToggleTool("github.issues.list")
	before := s.Selected()

	s.ToggleGroup("source:gone", sampleTree())
	assert.Equal(t, before, s.Selected())
}

func TestEffectiveExpansionOverridesDuringSearch(t *testing.T) {
	s := NewState()
	s.ToggleExpand("source:slack")
	tree := grouping.BySourceNamespace([]inventory.ToolDescriptor{
		{Path: "github.issues.create", Source: "mcp:github"},
	})

	auto := s.EffectiveExpansion("create", tree)
	assert.Contains(t, auto, "source:github")
	assert.Contains(t, auto, "source:github:ns:github.issues")
	assert.NotContains(t, auto, "source:slack", "override, not merge")

	// Clearing or shortening the search reverts to the manual set.
	manual := s.EffectiveExpansion("", tree)
	assert.Contains(t, manual, "source:slack")
	assert.NotContains(t, manual, "source:github")

	short := s.EffectiveExpansion("c", tree)
	assert.Contains(t, short, "source:slack", "sub-2-char query does not auto-expand")
}

func TestResetExpansionToSource(t *testing.T) {
	s := NewState()
	s.ToggleExpand("source:github")
	s.ToggleExpand("ns:github.issues")

	s.ResetExpansionToSource("slack")
	require.Equal(t, []string{"source:slack"}, s.Expanded())

	s.ResetExpansionToSource("")
	assert.Empty(t, s.Expanded())
}
