package view

import (
	"sort"

	"github.com/toolscope/toolscope/internal/domain/grouping"
	"github.com/toolscope/toolscope/internal/domain/inventory"
)

// RowKind tags the rows a render plan emits.
type RowKind string

const (
	RowGroup       RowKind = "group"
	RowTool        RowKind = "tool"
	RowPlaceholder RowKind = "placeholder"
)

// Row is one renderable line of a plan. Group rows carry the group node,
// tool rows the descriptor; placeholder rows carry only the source label
// they stand in for.
type Row struct {
	Kind     RowKind                   `json:"kind"`
	Depth    int                       `json:"depth"`
	Group    *grouping.Group           `json:"group,omitempty"`
	Tool     *inventory.ToolDescriptor `json:"tool,omitempty"`
	SourceOf string                    `json:"sourceOf,omitempty"`
	Expanded bool                      `json:"expanded,omitempty"`
}

// Plan is the materialized slice of rows the presentation layer should
// actually lay out, plus enough bookkeeping to continue scrolling.
type Plan struct {
	Rows    []Row `json:"rows"`
	Total   int   `json:"total"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// Window describes the visible scroll range of a windowed flat list in
// fixed-height rows.
type Window struct {
	ScrollTop      int `json:"scrollTop"`
	ViewportHeight int `json:"viewportHeight"`
	RowHeight      int `json:"rowHeight"`
	Overscan       int `json:"overscan"`
}

// PlanTree walks the grouped forest and emits rows for every group plus
// the leaf rows of expanded subtrees only; collapsed subtrees contribute
// zero leaf rows, which is the primary large-N mitigation in tree mode.
// Placeholder rows are interleaved directly under their loading group.
func PlanTree(groups []*grouping.Group, expanded map[string]struct{}) Plan {
	var rows []Row
	rows = planSubtree(rows, groups, expanded, 0)
	return Plan{Rows: rows, Total: len(rows)}
}

func planSubtree(rows []Row, groups []*grouping.Group, expanded map[string]struct{}, depth int) []Row {
	for _, g := range groups {
		_, open := expanded[g.Key]
		rows = append(rows, Row{Kind: RowGroup, Depth: depth, Group: g, Expanded: open})
		if !open {
			continue
		}
		for i := 0; i < g.LoadingPlaceholders; i++ {
			rows = append(rows, Row{Kind: RowPlaceholder, Depth: depth + 1, SourceOf: g.Label})
		}
		if g.Groups != nil {
			rows = planSubtree(rows, g.Groups, expanded, depth+1)
			continue
		}
		for i := range g.Tools {
			rows = append(rows, Row{Kind: RowTool, Depth: depth + 1, Tool: &g.Tools[i]})
		}
	}
	return rows
}

// flatRows builds the complete flat row list: tools sorted by path with
// placeholder rows for loading sources spliced in where that source's
// tools would sort.
func flatRows(tools []inventory.ToolDescriptor, loading map[string]struct{}, placeholderRows int) []Row {
	sorted := grouping.SortedByPath(tools)

	pending := make([]string, 0, len(loading))
	for name := range loading {
		has := false
		for _, t := range sorted {
			if t.SourceLabel() == name {
				has = true
				break
			}
		}
		if !has {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)

	rows := make([]Row, 0, len(sorted)+len(pending)*placeholderRows)
	emitPending := func(before string) {
		remaining := pending[:0]
		for _, name := range pending {
			if before == "" || name < before {
				for i := 0; i < placeholderRows; i++ {
					rows = append(rows, Row{Kind: RowPlaceholder, SourceOf: name})
				}
				continue
			}
			remaining = append(remaining, name)
		}
		pending = remaining
	}

	for i := range sorted {
		emitPending(sorted[i].Path)
		rows = append(rows, Row{Kind: RowTool, Tool: &sorted[i]})
	}
	emitPending("")
	return rows
}

// PlanFlatWindow materializes only the rows inside (or near) the visible
// scroll range, with fixed-height row estimation. Rows outside the window
// are left to the presentation layer as empty scroll space.
func PlanFlatWindow(tools []inventory.ToolDescriptor, loading map[string]struct{}, placeholderRows int, w Window) Plan {
	rows := flatRows(tools, loading, placeholderRows)
	total := len(rows)

	if w.RowHeight <= 0 || w.ViewportHeight <= 0 {
		return Plan{Rows: rows, Total: total}
	}

	first := w.ScrollTop/w.RowHeight - w.Overscan
	if first < 0 {
		first = 0
	}
	count := w.ViewportHeight/w.RowHeight + 1 + 2*w.Overscan
	last := first + count
	if last > total {
		last = total
	}
	if first > last {
		first = last
	}

	return Plan{
		Rows:    rows[first:last],
		Total:   total,
		Offset:  first,
		HasMore: last < total,
	}
}

// PlanFlatPage materializes one page of the flat list for incremental
// (infinite-scroll) loading; the caller requests the next page as the
// scroll position approaches the end of what it has. Windowing and
// pagination are alternative strategies, never combined in one view.
func PlanFlatPage(tools []inventory.ToolDescriptor, loading map[string]struct{}, placeholderRows, offset, limit int) Plan {
	rows := flatRows(tools, loading, placeholderRows)
	total := len(rows)

	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	return Plan{
		Rows:    rows[offset:end],
		Total:   total,
		Offset:  offset,
		HasMore: end < total,
	}
}
