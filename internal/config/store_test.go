package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolscope/toolscope/internal/domain/inventory"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "sources.yaml"))
}

func TestStoreLoadMissingFile(t *testing.T) {
	s := testStore(t)
	sources, settings, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, sources)
	assert.Equal(t, DefaultSettings(), settings)
}

func TestStoreAddAndReload(t *testing.T) {
	s := testStore(t)

	added, err := s.AddSource(inventory.SourceRecord{
		Name:    "github",
		Type:    inventory.SourceMCP,
		Enabled: true,
		Config:  map[string]string{"command": "github-mcp"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID, "store mints an id")

	sources, _, err := s.Load()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, added, sources[0])
}

func TestStoreRejectsDuplicateNames(t *testing.T) {
	s := testStore(t)
	record := inventory.SourceRecord{Name: "github", Type: inventory.SourceMCP, Enabled: true}

	_, err := s.AddSource(record)
	require.NoError(t, err)
	_, err = s.AddSource(record)
	assert.ErrorContains(t, err, "already exists")
}

func TestStoreRejectsInvalidRecords(t *testing.T) {
	s := testStore(t)
	_, err := s.AddSource(inventory.SourceRecord{Name: "Bad Name", Type: inventory.SourceMCP})
	assert.Error(t, err)
}

func TestStoreUpdateRemoveEnable(t *testing.T) {
	s := testStore(t)
	added, err := s.AddSource(inventory.SourceRecord{Name: "github", Type: inventory.SourceMCP, Enabled: true})
	require.NoError(t, err)

	added.Type = inventory.SourceOpenAPI
	require.NoError(t, s.UpdateSource(added))

	require.NoError(t, s.SetEnabled("github", false))

	sources, _, err := s.Load()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, inventory.SourceOpenAPI, sources[0].Type)
	assert.False(t, sources[0].Enabled)

	require.NoError(t, s.RemoveSource("github"))
	sources, _, _ = s.Load()
	assert.Empty(t, sources)

	assert.Error(t, s.RemoveSource("github"))
	assert.Error(t, s.SetEnabled("github", true))
}
