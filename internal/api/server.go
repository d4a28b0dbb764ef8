package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/toolscope/toolscope/internal/config"
	"github.com/toolscope/toolscope/internal/domain/inventory"
	"github.com/toolscope/toolscope/internal/domain/view"
	"github.com/toolscope/toolscope/internal/provider"
)

// ControlServer handles management requests from the admin console and
// the CLI: inventory queries, source CRUD, and view state.
type ControlServer struct {
	mux     *http.ServeMux
	engine  *view.Engine
	store   *config.Store
	sources *provider.Aggregator
	logger  *zap.Logger
	started time.Time
}

// NewControlServer creates a new management server. registry may be nil
// to disable the /metrics endpoint.
func NewControlServer(engine *view.Engine, store *config.Store, sources *provider.Aggregator, logger *zap.Logger, registry *prometheus.Registry) *ControlServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ControlServer{
		mux:     http.NewServeMux(),
		engine:  engine,
		store:   store,
		sources: sources,
		logger:  logger,
		started: time.Now(),
	}
	s.routes(registry)
	return s
}

func (s *ControlServer) routes(registry *prometheus.Registry) {
	s.mux.HandleFunc("GET /api/tools", s.handleGetTools)
	s.mux.HandleFunc("GET /api/tools/window", s.handleGetToolsWindow)
	s.mux.HandleFunc("GET /api/tools/detail", s.handleGetToolDetail)
	s.mux.HandleFunc("GET /api/tree", s.handleGetTree)
	s.mux.HandleFunc("GET /api/sources", s.handleGetSources)
	s.mux.HandleFunc("POST /api/sources", s.handleCreateSource)
	s.mux.HandleFunc("PUT /api/sources", s.handleUpdateSource)
	s.mux.HandleFunc("DELETE /api/sources", s.handleDeleteSource)
	s.mux.HandleFunc("POST /api/sources/enable", s.handleEnableSource)
	s.mux.HandleFunc("POST /api/view/select", s.handleSelect)
	s.mux.HandleFunc("POST /api/view/expand", s.handleExpand)
	s.mux.HandleFunc("POST /api/view/source", s.handleActiveSource)
	s.mux.HandleFunc("GET /api/status", s.handleGetStatus)
	if registry != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
}

func (s *ControlServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Global CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func (s *ControlServer) handleGetTools(w http.ResponseWriter, r *http.Request) {
	s.engine.SetSearch(r.URL.Query().Get("q"))
	plan := s.engine.FlatPage(queryInt(r, "offset", 0), queryInt(r, "limit", 100))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plan)
}

func (s *ControlServer) handleGetToolsWindow(w http.ResponseWriter, r *http.Request) {
	s.engine.SetSearch(r.URL.Query().Get("q"))
	plan := s.engine.FlatWindow(view.Window{
		ScrollTop:      queryInt(r, "scrollTop", 0),
		ViewportHeight: queryInt(r, "viewportHeight", 0),
		RowHeight:      queryInt(r, "rowHeight", 0),
		Overscan:       queryInt(r, "overscan", 0),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plan)
}

func (s *ControlServer) handleGetTree(w http.ResponseWriter, r *http.Request) {
	if group := r.URL.Query().Get("group"); group != "" {
		s.engine.SetGroupMode(view.GroupMode(group))
	}
	s.engine.SetSearch(r.URL.Query().Get("q"))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.engine.Tree())
}

func (s *ControlServer) handleGetToolDetail(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	// Kick hydration; the descriptor below already carries the detail
	// overlay if a previous fetch finished. The fetch must outlive this
	// request, so detach it from the request context.
	s.engine.ExpandTool(context.WithoutCancel(r.Context()), path)

	tool, ok := s.engine.Tool(path)
	if !ok {
		http.Error(w, "tool not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Tool    inventory.ToolDescriptor `json:"tool"`
		Loading bool                     `json:"loading"`
	}{
		Tool:    tool,
		Loading: s.engine.Hydrator().IsLoading(path),
	})
}

func (s *ControlServer) handleGetSources(w http.ResponseWriter, r *http.Request) {
	snap := s.sources.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Sources  []inventory.SourceRecord `json:"sources"`
		Warnings []string                 `json:"warnings,omitempty"`
	}{
		Sources:  s.engine.Sources(),
		Warnings: snap.Warnings,
	})
}

func (s *ControlServer) handleCreateSource(w http.ResponseWriter, r *http.Request) {
	var record inventory.SourceRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := s.store.AddSource(record)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.applyConfig(r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (s *ControlServer) handleUpdateSource(w http.ResponseWriter, r *http.Request) {
	var record inventory.SourceRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.UpdateSource(record); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.applyConfig(r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(record)
}

func (s *ControlServer) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	if err := s.store.RemoveSource(name); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.applyConfig(r)

	w.WriteHeader(http.StatusNoContent)
}

func (s *ControlServer) handleEnableSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Enabled bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.SetEnabled(req.Name, req.Enabled); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.applyConfig(r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// applyConfig pushes the stored source list straight into the aggregator
// after a mutation. The config watcher fires too, but it is debounced;
// the direct push keeps the API read-your-writes.
func (s *ControlServer) applyConfig(r *http.Request) {
	records, _, err := s.store.Load()
	if err != nil {
		s.logger.Warn("reloading sources after mutation failed", zap.Error(err))
		return
	}
	s.sources.SetConfig(context.WithoutCancel(r.Context()), records)
}

func (s *ControlServer) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path,omitempty"`
		Key  string `json:"key,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case req.Path != "":
		s.engine.ToggleTool(req.Path)
	case req.Key != "":
		s.engine.ToggleGroup(req.Key)
	default:
		http.Error(w, "path or key is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Selected []string `json:"selected"`
	}{Selected: s.engine.Tree().Selected})
}

func (s *ControlServer) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}

	s.engine.ToggleExpand(context.WithoutCancel(r.Context()), req.Key)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Expanded []string `json:"expanded"`
	}{Expanded: s.engine.Tree().Expanded})
}

func (s *ControlServer) handleActiveSource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.engine.SetActiveSource(req.Name)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// StatusResponse summarizes daemon health for `toolscope status`.
type StatusResponse struct {
	UptimeSeconds int            `json:"uptimeSeconds"`
	Tools         int            `json:"tools"`
	Sources       int            `json:"sources"`
	Loading       []string       `json:"loading,omitempty"`
	WarningCounts map[string]int `json:"warningCounts,omitempty"`
}

func (s *ControlServer) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.sources.Snapshot()

	loading := make([]string, 0, len(snap.Loading))
	for name := range snap.Loading {
		loading = append(loading, name)
	}
	sort.Strings(loading)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(StatusResponse{
		UptimeSeconds: int(time.Since(s.started).Seconds()),
		Tools:         len(snap.Tools),
		Sources:       len(s.engine.Sources()),
		Loading:       loading,
		WarningCounts: snap.WarningCounts(),
	})
}
