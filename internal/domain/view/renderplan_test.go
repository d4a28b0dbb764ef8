package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolscope/toolscope/internal/domain/grouping"
	"github.com/toolscope/toolscope/internal/domain/inventory"
)

func manyTools(n int) []inventory.ToolDescriptor {
	out := make([]inventory.ToolDescriptor, n)
	alphabet := "abcdefghijklmnopqrstuvwxyz"
	for i := range out {
		out[i] = inventory.ToolDescriptor{
			Path: "ns." + string(alphabet[i/26%26]) + string(alphabet[i%26]) + ".op",
		}
	}
	return out
}

func TestPlanTreeCollapsedSubtreesEmitNoLeaves(t *testing.T) {
	tree := sampleTree()

	collapsed := PlanTree(tree, nil)
	for _, row := range collapsed.Rows {
		assert.Equal(t, RowGroup, row.Kind)
	}
	// Two source groups, nothing else.
	assert.Len(t, collapsed.Rows, 2)
}

func TestPlanTreeExpandedSubtreeEmitsLeaves(t *testing.T) {
	tree := sampleTree()
	expanded := map[string]struct{}{
		"source:github":                  {},
		"source:github:ns:github.issues": {},
	}

	plan := PlanTree(tree, expanded)

	var kinds []RowKind
	var depths []int
	for _, row := range plan.Rows {
		kinds = append(kinds, row.Kind)
		depths = append(depths, row.Depth)
	}
	// github group, its namespace group, two leaves, then collapsed slack.
	assert.Equal(t, []RowKind{RowGroup, RowGroup, RowTool, RowTool, RowGroup}, kinds)
	assert.Equal(t, []int{0, 1, 2, 2, 0}, depths)
}

func TestPlanTreePlaceholderRows(t *testing.T) {
	groups := grouping.BySources(nil,
		[]inventory.SourceRecord{{ID: "1", Name: "slow", Type: inventory.SourceMCP, Enabled: true}},
		nil, 2)
	plan := PlanTree(groups, map[string]struct{}{"source:slow": {}})

	require.Len(t, plan.Rows, 3)
	assert.Equal(t, RowGroup, plan.Rows[0].Kind)
	assert.Equal(t, RowPlaceholder, plan.Rows[1].Kind)
	assert.Equal(t, "slow", plan.Rows[1].SourceOf)
	assert.Equal(t, RowPlaceholder, plan.Rows[2].Kind)
}

func TestPlanFlatWindowMaterializesVisibleRangeOnly(t *testing.T) {
	tools := manyTools(500)
	plan := PlanFlatWindow(tools, nil, 0, Window{
		ScrollTop:      1000,
		ViewportHeight: 200,
		RowHeight:      20,
		Overscan:       5,
	})

	assert.Equal(t, 500, plan.Total)
	assert.Equal(t, 45, plan.Offset, "scrollTop/rowHeight minus overscan")
	assert.Len(t, plan.Rows, 200/20+1+2*5)
	assert.True(t, plan.HasMore)
}

func TestPlanFlatWindowClampsAtEdges(t *testing.T) {
	tools := manyTools(10)

	top := PlanFlatWindow(tools, nil, 0, Window{ScrollTop: 0, ViewportHeight: 100, RowHeight: 20, Overscan: 3})
	assert.Equal(t, 0, top.Offset)
	assert.Len(t, top.Rows, 10)
	assert.False(t, top.HasMore)

	past := PlanFlatWindow(tools, nil, 0, Window{ScrollTop: 10000, ViewportHeight: 100, RowHeight: 20, Overscan: 0})
	assert.Empty(t, past.Rows)
	assert.False(t, past.HasMore)
}

func TestPlanFlatPagePagination(t *testing.T) {
	tools := manyTools(25)

	first := PlanFlatPage(tools, nil, 0, 0, 10)
	assert.Len(t, first.Rows, 10)
	assert.True(t, first.HasMore)

	last := PlanFlatPage(tools, nil, 0, 20, 10)
	assert.Len(t, last.Rows, 5)
	assert.False(t, last.HasMore)

	over := PlanFlatPage(tools, nil, 0, 99, 10)
	assert.Empty(t, over.Rows)
	assert.Equal(t, 25, over.Total)
}

func TestFlatPlaceholdersInterleaveByLabel(t *testing.T) {
	tools := []inventory.ToolDescriptor{
		{Path: "alpha.op", Source: "mcp:alpha"},
		{Path: "zeta.op", Source: "mcp:zeta"},
	}
	loading := map[string]struct{}{"mid": {}}

	plan := PlanFlatPage(tools, loading, 1, 0, 0)
	require.Len(t, plan.Rows, 3)
	assert.Equal(t, "alpha.op", plan.Rows[0].Tool.Path)
	assert.Equal(t, RowPlaceholder, plan.Rows[1].Kind)
	assert.Equal(t, "mid", plan.Rows[1].SourceOf)
	assert.Equal(t, "zeta.op", plan.Rows[2].Tool.Path)
}
