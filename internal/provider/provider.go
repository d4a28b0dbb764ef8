// Package provider collects tool inventories from configured sources and
// merges them into the snapshots the view engine observes.
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/toolscope/toolscope/internal/domain/inventory"
	"github.com/toolscope/toolscope/internal/domain/view"
)

// Source contributes tools for one configured origin.
type Source interface {
	// List returns the source's lightweight tool descriptors.
	List(ctx context.Context) ([]inventory.ToolDescriptor, error)
	// Details returns the expensive fields for the given paths.
	Details(ctx context.Context, paths []string) (map[string]view.Detail, error)
	// Close releases any underlying connection.
	Close() error
}

// Factory builds a Source for a configured record.
type Factory func(record inventory.SourceRecord, logger *zap.Logger) (Source, error)

// DefaultFactory wires the built-in source types: MCP servers over the
// go-sdk, and descriptor files for OpenAPI/GraphQL sources.
func DefaultFactory(record inventory.SourceRecord, logger *zap.Logger) (Source, error) {
	switch record.Type {
	case inventory.SourceMCP:
		return NewMCPSource(record, logger), nil
	case inventory.SourceOpenAPI, inventory.SourceGraphQL:
		return NewStaticSource(record), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", record.Type)
	}
}

type sourceState struct {
	record inventory.SourceRecord
	source Source
	tools  []inventory.ToolDescriptor
}

// Aggregator owns one Source per enabled configured record, loads their
// inventories concurrently, and merges the results into a single
// Snapshot. It also routes detail fetches back to the owning source, so
// it doubles as the engine's DetailProvider.
type Aggregator struct {
	mu       sync.Mutex
	logger   *zap.Logger
	factory  Factory
	onUpdate func(inventory.Snapshot)

	states   map[string]*sourceState
	loading  map[string]struct{}
	warnings map[string]string
	owners   map[string]string // tool path → source name
	records  []inventory.SourceRecord
}

// NewAggregator builds an aggregator. onUpdate is invoked with a fresh
// snapshot after every inventory change; it may be nil.
func NewAggregator(factory Factory, logger *zap.Logger, onUpdate func(inventory.Snapshot)) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if factory == nil {
		factory = DefaultFactory
	}
	return &Aggregator{
		logger:   logger,
		factory:  factory,
		onUpdate: onUpdate,
		states:   make(map[string]*sourceState),
		loading:  make(map[string]struct{}),
		warnings: make(map[string]string),
		owners:   make(map[string]string),
	}
}

// SetConfig reconciles the aggregator against a new configured-source
// list. Unchanged sources keep their loaded tools; new or changed ones
// are (re)loaded in the background; removed ones are closed and their
// tools dropped.
func (a *Aggregator) SetConfig(ctx context.Context, records []inventory.SourceRecord) {
	a.mu.Lock()

	desired := make(map[string]inventory.SourceRecord)
	for _, r := range records {
		if r.Enabled {
			desired[r.Name] = r
		}
	}
	a.records = append([]inventory.SourceRecord(nil), records...)

	for name, state := range a.states {
		record, keep := desired[name]
		if keep && sameSourceConfig(record, state.record) {
			delete(desired, name)
			continue
		}
		if err := state.source.Close(); err != nil {
			a.logger.Warn("closing source", zap.String("source", name), zap.Error(err))
		}
		delete(a.states, name)
		delete(a.warnings, name)
		delete(a.loading, name)
	}

	var started []string
	for name, record := range desired {
		source, err := a.factory(record, a.logger.Named(name))
		if err != nil {
			a.warnings[name] = fmt.Sprintf("cannot configure source '%s': %v", name, err)
			continue
		}
		a.states[name] = &sourceState{record: record, source: source}
		a.loading[name] = struct{}{}
		started = append(started, name)
	}
	a.mu.Unlock()

	a.emit()
	for _, name := range started {
		go a.load(ctx, name)
	}
}

func (a *Aggregator) load(ctx context.Context, name string) {
	a.mu.Lock()
	state, ok := a.states[name]
	a.mu.Unlock()
	if !ok {
		return
	}

	tools, err := state.source.List(ctx)

	a.mu.Lock()
	if current, still := a.states[name]; still && current == state {
		delete(a.loading, name)
		if err != nil {
			a.warnings[name] = fmt.Sprintf("failed to load source '%s': %v", name, err)
			a.logger.Warn("source load failed", zap.String("source", name), zap.Error(err))
		} else {
			delete(a.warnings, name)
			state.tools = tools
			a.logger.Info("source loaded",
				zap.String("source", name), zap.Int("tools", len(tools)))
		}
	}
	a.mu.Unlock()

	a.emit()
}

// Refresh re-lists every source without changing configuration.
func (a *Aggregator) Refresh(ctx context.Context) {
	a.mu.Lock()
	var names []string
	for name := range a.states {
		a.loading[name] = struct{}{}
		names = append(names, name)
	}
	a.mu.Unlock()

	a.emit()
	for _, name := range names {
		go a.load(ctx, name)
	}
}

// Snapshot returns the current merged inventory.
func (a *Aggregator) Snapshot() inventory.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() inventory.Snapshot {
	var tools []inventory.ToolDescriptor
	for path := range a.owners {
		delete(a.owners, path)
	}

	names := make([]string, 0, len(a.states))
	for name := range a.states {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, t := range a.states[name].tools {
			a.owners[t.Path] = name
			tools = append(tools, t)
		}
	}

	loading := make(map[string]struct{}, len(a.loading))
	for name := range a.loading {
		loading[name] = struct{}{}
	}

	warnNames := make([]string, 0, len(a.warnings))
	for name := range a.warnings {
		warnNames = append(warnNames, name)
	}
	sort.Strings(warnNames)
	warnings := make([]string, 0, len(warnNames))
	for _, name := range warnNames {
		warnings = append(warnings, a.warnings[name])
	}

	return inventory.Snapshot{
		Tools:    tools,
		Sources:  append([]inventory.SourceRecord(nil), a.records...),
		Loading:  loading,
		Warnings: warnings,
	}
}

func (a *Aggregator) emit() {
	if a.onUpdate == nil {
		return
	}
	a.onUpdate(a.Snapshot())
}

// LoadDetails routes each path to its owning source and merges the
// results. It satisfies the view engine's DetailProvider contract.
func (a *Aggregator) LoadDetails(ctx context.Context, paths []string) (map[string]view.Detail, error) {
	byOwner := make(map[string][]string)
	a.mu.Lock()
	for _, path := range paths {
		if owner, ok := a.owners[path]; ok {
			byOwner[owner] = append(byOwner[owner], path)
		}
	}
	sources := make(map[string]Source, len(byOwner))
	for owner := range byOwner {
		if state, ok := a.states[owner]; ok {
			sources[owner] = state.source
		}
	}
	a.mu.Unlock()

	out := make(map[string]view.Detail)
	for owner, ownerPaths := range byOwner {
		source, ok := sources[owner]
		if !ok {
			continue
		}
		details, err := source.Details(ctx, ownerPaths)
		if err != nil {
			return nil, fmt.Errorf("details from source '%s': %w", owner, err)
		}
		for p, d := range details {
			out[p] = d
		}
	}
	return out, nil
}

// Close shuts down every source.
func (a *Aggregator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var firstErr error
	for name, state := range a.states {
		if err := state.source.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(a.states, name)
	}
	return firstErr
}

func sameSourceConfig(a, b inventory.SourceRecord) bool {
	if a.ID != b.ID || a.Type != b.Type {
		return false
	}
	if len(a.Config) != len(b.Config) {
		return false
	}
	for k, v := range a.Config {
		if b.Config[k] != v {
			return false
		}
	}
	return true
}
