package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/toolscope/toolscope/internal/cli/client"
)

// DetailCache persists hydrated tool details between CLI invocations so
// `show` does not wait on the daemon's lazy fetch every time.
type DetailCache struct {
	dir string
}

func NewDetailCache(dir string) *DetailCache {
	return &DetailCache{dir: dir}
}

func (c *DetailCache) Get(path string) (*client.ToolDetail, bool) {
	data, err := os.ReadFile(c.file(path))
	if err != nil {
		return nil, false
	}
	var detail client.ToolDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, false
	}
	return &detail, true
}

func (c *DetailCache) Set(path string, detail *client.ToolDetail) error {
	if detail.Loading {
		return nil // only cache settled details
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.file(path), data, 0644)
}

func (c *DetailCache) file(path string) string {
	return filepath.Join(c.dir, path+".json")
}
