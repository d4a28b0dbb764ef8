package provider

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/toolscope/toolscope/internal/domain/inventory"
	"github.com/toolscope/toolscope/internal/domain/view"
)

// StaticSource serves tools from a descriptor file on disk. OpenAPI and
// GraphQL sources use it: their schemas are converted to descriptor
// files by an import step elsewhere, so this layer never fetches or
// parses a remote schema.
type StaticSource struct {
	record inventory.SourceRecord
}

// descriptorFile is the YAML shape of an imported inventory.
type descriptorFile struct {
	Tools []descriptorEntry `yaml:"tools"`
}

type descriptorEntry struct {
	Path        string `yaml:"path"`
	Description string `yaml:"description"`
	Approval    string `yaml:"approval"`
	ArgsType    string `yaml:"args_type"`
	ReturnsType string `yaml:"returns_type"`
	Detail      string `yaml:"detail"`
}

// NewStaticSource builds a descriptor-file source for the record; the
// file path comes from the record config's "file" key.
func NewStaticSource(record inventory.SourceRecord) *StaticSource {
	return &StaticSource{record: record}
}

func (s *StaticSource) read() ([]descriptorEntry, error) {
	path := s.record.Config["file"]
	if path == "" {
		return nil, fmt.Errorf("source '%s' has no descriptor file configured", s.record.Name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("descriptor file %s: %w", path, err)
	}
	return file.Tools, nil
}

// List returns the lightweight descriptors. Long-form detail text and
// type signatures stay behind until a Details call asks for them.
func (s *StaticSource) List(_ context.Context) ([]inventory.ToolDescriptor, error) {
	entries, err := s.read()
	if err != nil {
		return nil, err
	}

	out := make([]inventory.ToolDescriptor, 0, len(entries))
	for _, e := range entries {
		approval := inventory.ApprovalAuto
		if e.Approval == string(inventory.ApprovalRequired) {
			approval = inventory.ApprovalRequired
		}
		out = append(out, inventory.ToolDescriptor{
			Path:        e.Path,
			Description: e.Description,
			Source:      string(s.record.Type) + ":" + s.record.Name,
			Approval:    approval,
		})
	}
	return out, nil
}

// Details re-reads the file and returns the expensive fields.
func (s *StaticSource) Details(_ context.Context, paths []string) (map[string]view.Detail, error) {
	entries, err := s.read()
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		wanted[p] = struct{}{}
	}

	out := make(map[string]view.Detail, len(paths))
	for _, e := range entries {
		if _, ok := wanted[e.Path]; !ok {
			continue
		}
		description := e.Detail
		if description == "" {
			description = e.Description
		}
		out[e.Path] = view.Detail{
			Description: description,
			Display: &inventory.DisplayHints{
				ArgsType:    e.ArgsType,
				ReturnsType: e.ReturnsType,
			},
		}
	}
	return out, nil
}

// Close is a no-op; the file is opened per read.
func (s *StaticSource) Close() error { return nil }
