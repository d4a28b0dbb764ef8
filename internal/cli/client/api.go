package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/toolscope/toolscope/internal/api"
	"github.com/toolscope/toolscope/internal/domain/inventory"
	"github.com/toolscope/toolscope/internal/domain/view"
)

type ControlClient struct {
	baseURL string
	client  *http.Client
}

func NewControlClient(baseURL string, timeout time.Duration) *ControlClient {
	return &ControlClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListTools fetches one page of the flat tool list, filtered by query.
func (c *ControlClient) ListTools(query string, offset, limit int) (*view.Plan, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var plan view.Plan
	err := c.get("/api/tools?"+q.Encode(), &plan)
	return &plan, err
}

// Tree fetches the grouped view.
func (c *ControlClient) Tree(group, query string) (*view.ViewModel, error) {
	q := url.Values{}
	if group != "" {
		q.Set("group", group)
	}
	if query != "" {
		q.Set("q", query)
	}

	var vm view.ViewModel
	err := c.get("/api/tree?"+q.Encode(), &vm)
	return &vm, err
}

type SourcesResponse struct {
	Sources  []inventory.SourceRecord `json:"sources"`
	Warnings []string                 `json:"warnings,omitempty"`
}

func (c *ControlClient) ListSources() (*SourcesResponse, error) {
	var resp SourcesResponse
	err := c.get("/api/sources", &resp)
	return &resp, err
}

func (c *ControlClient) AddSource(record inventory.SourceRecord) (*inventory.SourceRecord, error) {
	var created inventory.SourceRecord
	err := c.post("/api/sources", record, &created)
	return &created, err
}

func (c *ControlClient) RemoveSource(name string) error {
	req, err := http.NewRequest("DELETE", c.baseURL+"/api/sources?name="+url.QueryEscape(name), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return responseError(resp)
	}
	return nil
}

func (c *ControlClient) SetSourceEnabled(name string, enabled bool) error {
	body := map[string]interface{}{
		"name":    name,
		"enabled": enabled,
	}
	return c.post("/api/sources/enable", body, nil)
}

type ToolDetail struct {
	Tool    inventory.ToolDescriptor `json:"tool"`
	Loading bool                     `json:"loading"`
}

// GetToolDetail fetches one tool with its hydrated detail. The daemon
// hydrates lazily, so the first call may come back with Loading set;
// poll until the detail lands or the deadline passes.
func (c *ControlClient) GetToolDetail(path string, wait time.Duration) (*ToolDetail, error) {
	deadline := time.Now().Add(wait)
	for {
		var detail ToolDetail
		if err := c.get("/api/tools/detail?path="+url.QueryEscape(path), &detail); err != nil {
			return nil, err
		}
		if !detail.Loading || time.Now().After(deadline) {
			return &detail, nil
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func (c *ControlClient) GetStatus() (*api.StatusResponse, error) {
	var status api.StatusResponse
	err := c.get("/api/status", &status)
	return &status, err
}

func (c *ControlClient) get(path string, v interface{}) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *ControlClient) post(path string, body interface{}, v interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return responseError(resp)
	}

	if v != nil {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	text := bytes.TrimSpace(body)
	if len(text) == 0 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, text)
}
