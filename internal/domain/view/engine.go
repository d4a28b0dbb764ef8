package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/toolscope/toolscope/internal/domain/grouping"
	"github.com/toolscope/toolscope/internal/domain/inventory"
	"github.com/toolscope/toolscope/internal/domain/search"
	"github.com/toolscope/toolscope/internal/telemetry"
)

// GroupMode selects the hierarchical shape of the tree view.
type GroupMode string

const (
	GroupBySource    GroupMode = "source"
	GroupByNamespace GroupMode = "namespace"
	GroupByApproval  GroupMode = "approval"
)

// Engine owns all transient view state for one inventory view: the
// stabilized source list, selection and expansion sets, the hydration
// cache, and the current search/grouping inputs. Data flows one way:
// snapshot → stabilize → hydrate overlay → filter → group → plan.
// All state lives on the instance; concurrent views get their own Engine.
type Engine struct {
	mu      sync.Mutex
	logger  *zap.Logger
	metrics *telemetry.Metrics

	snapshot   inventory.Snapshot
	stabilizer *Stabilizer
	state      *State
	hydrator   *Hydrator

	query           string
	activeSource    string
	mode            GroupMode
	placeholderRows int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the engine metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithPlaceholderRows overrides the skeleton row count for loading sources.
func WithPlaceholderRows(n int) Option {
	return func(e *Engine) { e.placeholderRows = n }
}

// NewEngine builds an engine over the given detail provider.
func NewEngine(details DetailProvider, opts ...Option) *Engine {
	e := &Engine{
		logger:          zap.NewNop(),
		metrics:         nil,
		stabilizer:      NewStabilizer(),
		state:           NewState(),
		mode:            GroupBySource,
		placeholderRows: grouping.DefaultPlaceholderRows,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.placeholderRows <= 0 {
		e.placeholderRows = grouping.DefaultPlaceholderRows
	}
	if e.metrics == nil {
		e.metrics = telemetry.Nop()
	}
	e.hydrator = NewHydrator(details, e.logger.Named("hydrator"), e.metrics)
	return e
}

// SetSnapshot replaces the engine's inventory observation and runs source
// stabilization against it.
func (e *Engine) SetSnapshot(snap inventory.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.snapshot = snap
	_, changed := e.stabilizer.Reconcile(snap.Sources, snap.CountBySource(), snap.Loading)
	if changed {
		e.metrics.SourceEmissions.Inc()
		e.logger.Debug("stabilized source list changed",
			zap.Int("sources", len(e.stabilizer.Sources())))
	}
}

// SetSearch replaces the active search string.
func (e *Engine) SetSearch(query string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if query != "" && query != e.query {
		e.metrics.Searches.Inc()
	}
	e.query = query
}

// SetGroupMode replaces the grouping strategy for the tree view.
func (e *Engine) SetGroupMode(mode GroupMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch mode {
	case GroupBySource, GroupByNamespace, GroupByApproval:
		e.mode = mode
	default:
		e.mode = GroupBySource
	}
}

// SetActiveSource narrows the view to one source and resets the expansion
// set to exactly that source's top-level group (empty for "all sources").
func (e *Engine) SetActiveSource(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activeSource = name
	e.state.ResetExpansionToSource(name)
}

// Sources returns the stabilized source list.
func (e *Engine) Sources() []inventory.SourceRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stabilizer.Sources()
}

// ToggleTool flips selection of one tool path.
func (e *Engine) ToggleTool(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.ToggleTool(path)
}

// ToggleGroup toggles a whole group against the current tree.
func (e *Engine) ToggleGroup(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tree, _ := e.buildTreeLocked()
	e.state.ToggleGroup(key, tree)
}

// ToggleExpand flips a group's manual expansion and, when the row exposes
// tools that still need detail, kicks off their hydration.
func (e *Engine) ToggleExpand(ctx context.Context, key string) {
	e.mu.Lock()
	e.state.ToggleExpand(key)
	_, open := e.state.expanded[key]
	var leaves []inventory.ToolDescriptor
	if open {
		tree, _ := e.buildTreeLocked()
		if g := grouping.FindByKey(tree, key); g != nil && g.Tools != nil {
			leaves = g.Leaves()
		}
	}
	e.mu.Unlock()

	for _, t := range leaves {
		e.hydrator.Ensure(ctx, t)
	}
}

// ExpandTool requests hydration for a single tool row being expanded.
func (e *Engine) ExpandTool(ctx context.Context, path string) {
	e.mu.Lock()
	var tool *inventory.ToolDescriptor
	for i := range e.snapshot.Tools {
		if e.snapshot.Tools[i].Path == path {
			t := e.hydrator.Apply(e.snapshot.Tools[i : i+1])[0]
			tool = &t
			break
		}
	}
	e.mu.Unlock()

	if tool != nil {
		e.hydrator.Ensure(ctx, *tool)
	}
}

// Hydrator exposes the detail cache for callers that need loading state.
func (e *Engine) Hydrator() *Hydrator { return e.hydrator }

// Tool looks up one tool by path in the current snapshot, ignoring the
// active search and source filters, with the detail overlay applied.
func (e *Engine) Tool(path string) (inventory.ToolDescriptor, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.snapshot.Tools {
		if e.snapshot.Tools[i].Path == path {
			return e.hydrator.Apply(e.snapshot.Tools[i : i+1])[0], true
		}
	}
	return inventory.ToolDescriptor{}, false
}

// ViewModel is one computed render of the tree view.
type ViewModel struct {
	Groups        []*grouping.Group        `json:"groups"`
	Plan          Plan                     `json:"plan"`
	Selected      []string                 `json:"selected"`
	Expanded      []string                 `json:"expanded"`
	Query         string                   `json:"query,omitempty"`
	ActiveSource  string                   `json:"activeSource,omitempty"`
	WarningCounts map[string]int           `json:"warningCounts,omitempty"`
	Sources       []inventory.SourceRecord `json:"sources"`
}

// Tree computes the grouped view for the current snapshot, search, and
// grouping mode. The whole pass is synchronous and derives everything
// from one snapshot, so stale and fresh data never interleave.
func (e *Engine) Tree() ViewModel {
	e.mu.Lock()
	defer e.mu.Unlock()

	tree, _ := e.buildTreeLocked()
	expanded := e.state.EffectiveExpansion(e.query, tree)

	return ViewModel{
		Groups:        tree,
		Plan:          PlanTree(tree, expanded),
		Selected:      e.state.Selected(),
		Expanded:      sortedKeys(expanded),
		Query:         e.query,
		ActiveSource:  e.activeSource,
		WarningCounts: e.snapshot.WarningCounts(),
		Sources:       e.stabilizer.Sources(),
	}
}

// FlatWindow computes the windowed flat view.
func (e *Engine) FlatWindow(w Window) Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	tools := e.filteredLocked()
	return PlanFlatWindow(tools, e.snapshot.Loading, e.placeholderRows, w)
}

// FlatPage computes one page of the incrementally loaded flat view.
func (e *Engine) FlatPage(offset, limit int) Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	tools := e.filteredLocked()
	return PlanFlatPage(tools, e.snapshot.Loading, e.placeholderRows, offset, limit)
}

// buildTreeLocked derives the current tree from the snapshot. Callers
// hold e.mu.
func (e *Engine) buildTreeLocked() ([]*grouping.Group, []inventory.ToolDescriptor) {
	tools := e.filteredLocked()
	switch e.mode {
	case GroupByNamespace:
		return grouping.ByNamespace(tools), tools
	case GroupByApproval:
		return grouping.ByApproval(tools), tools
	default:
		// Placeholder slots are only for sources with no tools loaded at
		// all; a source whose tools were merely filtered out by the
		// search must not degrade to a skeleton.
		counts := e.snapshot.CountBySource()
		var unloaded []inventory.SourceRecord
		for _, src := range e.stabilizer.Sources() {
			if counts[src.Name] == 0 {
				unloaded = append(unloaded, src)
			}
		}
		return grouping.BySources(tools, unloaded, e.snapshot.Loading, e.placeholderRows), tools
	}
}

func (e *Engine) filteredLocked() []inventory.ToolDescriptor {
	tools := e.hydrator.Apply(e.snapshot.Tools)

	if e.activeSource != "" {
		narrowed := make([]inventory.ToolDescriptor, 0, len(tools))
		for _, t := range tools {
			if t.SourceLabel() == e.activeSource {
				narrowed = append(narrowed, t)
			}
		}
		tools = narrowed
	}

	q := search.NewQuery(e.query)
	if q.Empty() {
		return tools
	}
	matched := make([]inventory.ToolDescriptor, 0, len(tools))
	for _, t := range tools {
		if q.Matches(t.Path, t.Description) {
			matched = append(matched, t)
		}
	}
	return matched
}
