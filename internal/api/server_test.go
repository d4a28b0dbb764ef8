package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toolscope/toolscope/internal/config"
	"github.com/toolscope/toolscope/internal/domain/inventory"
	"github.com/toolscope/toolscope/internal/domain/view"
	"github.com/toolscope/toolscope/internal/provider"
)

type stubSource struct {
	tools []inventory.ToolDescriptor
}

func (s *stubSource) List(context.Context) ([]inventory.ToolDescriptor, error) {
	return s.tools, nil
}

func (s *stubSource) Details(_ context.Context, paths []string) (map[string]view.Detail, error) {
	out := make(map[string]view.Detail, len(paths))
	for _, p := range paths {
		out[p] = view.Detail{Description: "hydrated " + p}
	}
	return out, nil
}

func (s *stubSource) Close() error { return nil }

func newTestServer(t *testing.T, tools []inventory.ToolDescriptor) (*ControlServer, *view.Engine) {
	t.Helper()

	factory := func(record inventory.SourceRecord, _ *zap.Logger) (provider.Source, error) {
		return &stubSource{tools: tools}, nil
	}

	var engine *view.Engine
	agg := provider.NewAggregator(factory, nil, func(snap inventory.Snapshot) {
		engine.SetSnapshot(snap)
	})
	engine = view.NewEngine(agg)
	store := config.NewStore(filepath.Join(t.TempDir(), "toolscope.yaml"))

	return NewControlServer(engine, store, agg, nil, nil), engine
}

func doJSON(t *testing.T, srv *ControlServer, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func sampleTools() []inventory.ToolDescriptor {
	return []inventory.ToolDescriptor{
		{Path: "github.issues.create", Source: "mcp:github", Approval: inventory.ApprovalRequired},
		{Path: "github.issues.list", Source: "mcp:github", Approval: inventory.ApprovalAuto},
		{Path: "slack.chat.post", Source: "mcp:slack", Approval: inventory.ApprovalAuto},
	}
}

func TestControlServerSourceLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, sampleTools())

	w := doJSON(t, srv, "POST", "/api/sources",
		`{"name":"github","type":"mcp","enabled":true}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created inventory.SourceRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)

	// The stub source loads in the background; tools show up shortly.
	require.Eventually(t, func() bool {
		w := doJSON(t, srv, "GET", "/api/tools", "")
		var plan view.Plan
		if err := json.NewDecoder(w.Body).Decode(&plan); err != nil {
			return false
		}
		return plan.Total == 3 && len(plan.Rows) == 3 && plan.Rows[0].Tool != nil
	}, time.Second, 5*time.Millisecond)

	w = doJSON(t, srv, "GET", "/api/sources", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sources struct {
		Sources []inventory.SourceRecord `json:"sources"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sources))
	require.Len(t, sources.Sources, 1)
	assert.Equal(t, "github", sources.Sources[0].Name)

	created.Config = map[string]string{"command": "github-mcp"}
	body, err := json.Marshal(created)
	require.NoError(t, err)
	w = doJSON(t, srv, "PUT", "/api/sources", string(body))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	w = doJSON(t, srv, "POST", "/api/sources/enable", `{"name":"github","enabled":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	require.Eventually(t, func() bool {
		w := doJSON(t, srv, "GET", "/api/tools", "")
		var plan view.Plan
		if err := json.NewDecoder(w.Body).Decode(&plan); err != nil {
			return false
		}
		return plan.Total == 0
	}, time.Second, 5*time.Millisecond)

	w = doJSON(t, srv, "DELETE", "/api/sources?name=github", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, srv, "DELETE", "/api/sources?name=github", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestControlServerRejectsDuplicateSource(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := doJSON(t, srv, "POST", "/api/sources", `{"name":"github","type":"mcp","enabled":true}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, "POST", "/api/sources", `{"name":"github","type":"mcp","enabled":true}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestControlServerSearchAndTree(t *testing.T) {
	srv, engine := newTestServer(t, nil)
	engine.SetSnapshot(inventory.Snapshot{Tools: sampleTools()})

	w := doJSON(t, srv, "GET", "/api/tools?q=create", "")
	require.Equal(t, http.StatusOK, w.Code)
	var plan view.Plan
	require.NoError(t, json.NewDecoder(w.Body).Decode(&plan))
	require.Equal(t, 1, plan.Total)
	assert.Equal(t, "github.issues.create", plan.Rows[0].Tool.Path)

	w = doJSON(t, srv, "GET", "/api/tree?group=approval&q=", "")
	require.Equal(t, http.StatusOK, w.Code)
	var vm view.ViewModel
	require.NoError(t, json.NewDecoder(w.Body).Decode(&vm))
	require.Len(t, vm.Groups, 2)
	assert.Equal(t, "approval:required", vm.Groups[0].Key)
}

func TestControlServerPagination(t *testing.T) {
	srv, engine := newTestServer(t, nil)
	engine.SetSnapshot(inventory.Snapshot{Tools: sampleTools()})

	w := doJSON(t, srv, "GET", "/api/tools?offset=1&limit=1", "")
	var plan view.Plan
	require.NoError(t, json.NewDecoder(w.Body).Decode(&plan))
	assert.Equal(t, 3, plan.Total)
	assert.Equal(t, 1, plan.Offset)
	require.Len(t, plan.Rows, 1)
	assert.True(t, plan.HasMore)
}

func TestControlServerViewState(t *testing.T) {
	srv, engine := newTestServer(t, nil)
	engine.SetSnapshot(inventory.Snapshot{Tools: sampleTools()})

	w := doJSON(t, srv, "POST", "/api/view/select", `{"key":"source:github"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var sel struct {
		Selected []string `json:"selected"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sel))
	assert.Equal(t, []string{"github.issues.create", "github.issues.list", "source:github"}, sel.Selected)

	w = doJSON(t, srv, "POST", "/api/view/expand", `{"key":"source:slack"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var exp struct {
		Expanded []string `json:"expanded"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&exp))
	assert.Contains(t, exp.Expanded, "source:slack")

	w = doJSON(t, srv, "POST", "/api/view/select", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestControlServerToolDetail(t *testing.T) {
	srv, _ := newTestServer(t, sampleTools())

	w := doJSON(t, srv, "POST", "/api/sources", `{"name":"github","type":"mcp","enabled":true}`)
	require.Equal(t, http.StatusCreated, w.Code)

	type detailResponse struct {
		Tool    inventory.ToolDescriptor `json:"tool"`
		Loading bool                     `json:"loading"`
	}

	// First request kicks hydration; repeat until the overlay lands.
	var resp detailResponse
	require.Eventually(t, func() bool {
		w := doJSON(t, srv, "GET", "/api/tools/detail?path=github.issues.list", "")
		if w.Code != http.StatusOK {
			return false
		}
		resp = detailResponse{}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			return false
		}
		return resp.Tool.Description == "hydrated github.issues.list" && !resp.Loading
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "mcp:github", resp.Tool.Source)

	w = doJSON(t, srv, "GET", "/api/tools/detail?path=nope.missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestControlServerStatus(t *testing.T) {
	srv, engine := newTestServer(t, nil)
	engine.SetSnapshot(inventory.Snapshot{Tools: sampleTools()})

	w := doJSON(t, srv, "GET", "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status StatusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	assert.Equal(t, 0, status.Tools) // aggregator itself has no sources yet
}

func TestControlServerCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest("OPTIONS", "/api/tools", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
