package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toolscope/toolscope/internal/domain/inventory"
	"github.com/toolscope/toolscope/internal/domain/view"
)

type fakeSource struct {
	mu     sync.Mutex
	tools  []inventory.ToolDescriptor
	err    error
	closed bool
}

func (f *fakeSource) List(context.Context) ([]inventory.ToolDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.tools, nil
}

func (f *fakeSource) Details(_ context.Context, paths []string) (map[string]view.Detail, error) {
	out := make(map[string]view.Detail, len(paths))
	for _, p := range paths {
		out[p] = view.Detail{Description: "detail for " + p}
	}
	return out, nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func fakeFactory(sources map[string]*fakeSource) Factory {
	return func(record inventory.SourceRecord, _ *zap.Logger) (Source, error) {
		src, ok := sources[record.Name]
		if !ok {
			return nil, errors.New("no fake for " + record.Name)
		}
		return src, nil
	}
}

func githubRecord() inventory.SourceRecord {
	return inventory.SourceRecord{ID: "1", Name: "github", Type: inventory.SourceMCP, Enabled: true}
}

func waitLoaded(t *testing.T, a *Aggregator, wantTools int) inventory.Snapshot {
	t.Helper()
	var snap inventory.Snapshot
	require.Eventually(t, func() bool {
		snap = a.Snapshot()
		return len(snap.Loading) == 0 && len(snap.Tools) == wantTools
	}, time.Second, 5*time.Millisecond)
	return snap
}

func TestAggregatorLoadsConfiguredSources(t *testing.T) {
	github := &fakeSource{tools: []inventory.ToolDescriptor{
		{Path: "github.issues.list", Source: "mcp:github"},
	}}
	a := NewAggregator(fakeFactory(map[string]*fakeSource{"github": github}), nil, nil)

	a.SetConfig(context.Background(), []inventory.SourceRecord{githubRecord()})

	// Freshly configured sources report as loading until their listing
	// lands.
	first := a.Snapshot()
	if len(first.Tools) == 0 {
		assert.True(t, first.IsLoading("github"))
	}

	snap := waitLoaded(t, a, 1)
	assert.Equal(t, "github.issues.list", snap.Tools[0].Path)
	assert.Empty(t, snap.Warnings)
}

func TestAggregatorWarnsOnLoadFailure(t *testing.T) {
	broken := &fakeSource{err: errors.New("connection refused")}
	a := NewAggregator(fakeFactory(map[string]*fakeSource{"github": broken}), nil, nil)

	a.SetConfig(context.Background(), []inventory.SourceRecord{githubRecord()})

	var snap inventory.Snapshot
	require.Eventually(t, func() bool {
		snap = a.Snapshot()
		return len(snap.Loading) == 0 && len(snap.Warnings) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Contains(t, snap.Warnings[0], "source 'github'")
	assert.Equal(t, 1, snap.WarningCounts()["github"])
}

func TestAggregatorRemovesAndClosesSources(t *testing.T) {
	github := &fakeSource{tools: []inventory.ToolDescriptor{
		{Path: "github.issues.list", Source: "mcp:github"},
	}}
	a := NewAggregator(fakeFactory(map[string]*fakeSource{"github": github}), nil, nil)

	a.SetConfig(context.Background(), []inventory.SourceRecord{githubRecord()})
	waitLoaded(t, a, 1)

	a.SetConfig(context.Background(), nil)
	snap := a.Snapshot()
	assert.Empty(t, snap.Tools)

	github.mu.Lock()
	defer github.mu.Unlock()
	assert.True(t, github.closed)
}

func TestAggregatorKeepsUnchangedSources(t *testing.T) {
	github := &fakeSource{tools: []inventory.ToolDescriptor{
		{Path: "github.issues.list", Source: "mcp:github"},
	}}
	a := NewAggregator(fakeFactory(map[string]*fakeSource{"github": github}), nil, nil)

	record := githubRecord()
	a.SetConfig(context.Background(), []inventory.SourceRecord{record})
	waitLoaded(t, a, 1)

	// Same record again: no reload, tools stay visible immediately.
	a.SetConfig(context.Background(), []inventory.SourceRecord{record})
	snap := a.Snapshot()
	assert.Len(t, snap.Tools, 1)
	assert.False(t, snap.IsLoading("github"))
}

func TestAggregatorRoutesDetailFetches(t *testing.T) {
	github := &fakeSource{tools: []inventory.ToolDescriptor{
		{Path: "github.issues.list", Source: "mcp:github"},
	}}
	a := NewAggregator(fakeFactory(map[string]*fakeSource{"github": github}), nil, nil)
	a.SetConfig(context.Background(), []inventory.SourceRecord{githubRecord()})
	waitLoaded(t, a, 1)

	details, err := a.LoadDetails(context.Background(), []string{"github.issues.list", "unknown.path"})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "detail for github.issues.list", details["github.issues.list"].Description)
}

func TestAggregatorNotifiesOnUpdate(t *testing.T) {
	github := &fakeSource{}
	var mu sync.Mutex
	updates := 0
	a := NewAggregator(fakeFactory(map[string]*fakeSource{"github": github}), nil,
		func(inventory.Snapshot) {
			mu.Lock()
			updates++
			mu.Unlock()
		})

	a.SetConfig(context.Background(), []inventory.SourceRecord{githubRecord()})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return updates >= 2 // once on configure, once on load completion
	}, time.Second, 5*time.Millisecond)
}

func TestStaticSourceListAndDetails(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "billing.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`tools:
  - path: billing.invoices.list
    description: List invoices
    approval: auto
    args_type: ListInvoicesArgs
    returns_type: InvoicePage
    detail: Lists invoices with cursor pagination.
  - path: billing.invoices.void
    approval: required
`), 0644))

	src := NewStaticSource(inventory.SourceRecord{
		Name: "billing", Type: inventory.SourceOpenAPI, Enabled: true,
		Config: map[string]string{"file": file},
	})

	tools, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "openapi:billing", tools[0].Source)
	assert.Equal(t, inventory.ApprovalRequired, tools[1].Approval)

	details, err := src.Details(context.Background(), []string{"billing.invoices.list"})
	require.NoError(t, err)
	require.Contains(t, details, "billing.invoices.list")
	assert.Equal(t, "Lists invoices with cursor pagination.", details["billing.invoices.list"].Description)
	assert.Equal(t, "ListInvoicesArgs", details["billing.invoices.list"].Display.ArgsType)
}

func TestStaticSourceMissingFile(t *testing.T) {
	src := NewStaticSource(inventory.SourceRecord{
		Name: "billing", Type: inventory.SourceOpenAPI,
		Config: map[string]string{"file": "/nonexistent/billing.yaml"},
	})
	_, err := src.List(context.Background())
	assert.Error(t, err)

	unconfigured := NewStaticSource(inventory.SourceRecord{Name: "billing", Type: inventory.SourceOpenAPI})
	_, err = unconfigured.List(context.Background())
	assert.ErrorContains(t, err, "no descriptor file")
}
