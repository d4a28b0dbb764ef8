package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/toolscope/toolscope/internal/domain/inventory"
	"github.com/toolscope/toolscope/internal/telemetry"
)

// Detail carries the expensive per-tool fields returned by a detail fetch.
type Detail struct {
	Description string                  `json:"description,omitempty"`
	Display     *inventory.DisplayHints `json:"display,omitempty"`
}

// DetailProvider fetches expensive tool fields on demand. The hydrator
// calls it with a single path at a time.
type DetailProvider interface {
	LoadDetails(ctx context.Context, paths []string) (map[string]Detail, error)
}

// Hydrator fills in expensive tool fields on first expansion and caches
// them in a side-table keyed by path. Fetch failures are swallowed here
// (logged, counted) and always clear the in-flight marker; surfacing them
// is the caller's concern.
type Hydrator struct {
	mu       sync.Mutex
	provider DetailProvider
	logger   *zap.Logger
	metrics  *telemetry.Metrics

	loading map[string]struct{}
	details map[string]Detail
}

// NewHydrator builds a hydrator over the given provider.
func NewHydrator(provider DetailProvider, logger *zap.Logger, metrics *telemetry.Metrics) *Hydrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = telemetry.Nop()
	}
	return &Hydrator{
		provider: provider,
		logger:   logger,
		metrics:  metrics,
		loading:  make(map[string]struct{}),
		details:  make(map[string]Detail),
	}
}

// Ensure requests detail for the tool if it has none yet. The fetch runs
// asynchronously and is fire-and-forget: collapsing the row mid-flight
// does not cancel it, the result is simply cached for the next expansion.
// Duplicate calls while a fetch is in flight issue nothing.
func (h *Hydrator) Ensure(ctx context.Context, tool inventory.ToolDescriptor) {
	if h.provider == nil || tool.HasDetail() {
		return
	}

	h.mu.Lock()
	if _, cached := h.details[tool.Path]; cached {
		h.mu.Unlock()
		return
	}
	if _, inFlight := h.loading[tool.Path]; inFlight {
		h.mu.Unlock()
		return
	}
	h.loading[tool.Path] = struct{}{}
	h.mu.Unlock()

	h.metrics.DetailFetches.Inc()
	go h.fetch(ctx, tool.Path)
}

func (h *Hydrator) fetch(ctx context.Context, path string) {
	defer func() {
		h.mu.Lock()
		delete(h.loading, path)
		h.mu.Unlock()
	}()

	found, err := h.provider.LoadDetails(ctx, []string{path})
	if err != nil {
		h.metrics.DetailFetchErrors.Inc()
		h.logger.Warn("detail fetch failed", zap.String("path", path), zap.Error(err))
		return
	}

	h.mu.Lock()
	for p, d := range found {
		h.details[p] = d
	}
	h.mu.Unlock()
}

// IsLoading reports whether a fetch for the path is in flight.
func (h *Hydrator) IsLoading(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.loading[path]
	return ok
}

// Apply overlays cached detail onto the base tool list, field by field,
// without mutating the input. The rest of the pipeline never notices
// whether a tool arrived hydrated or was filled in later.
func (h *Hydrator) Apply(tools []inventory.ToolDescriptor) []inventory.ToolDescriptor {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.details) == 0 {
		return tools
	}
	out := make([]inventory.ToolDescriptor, len(tools))
	copy(out, tools)
	for i, t := range out {
		d, ok := h.details[t.Path]
		if !ok {
			continue
		}
		if d.Description != "" {
			out[i].Description = d.Description
		}
		if d.Display != nil {
			out[i].Display = d.Display
		}
	}
	return out
}
