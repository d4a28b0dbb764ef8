package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/toolscope/toolscope/internal/domain/inventory"
)

// Store handles persistence of source records and settings to a YAML file.
// It owns create/update/delete of sources; the view engine only ever
// observes the resulting list.
type Store struct {
	mu   sync.Mutex
	path string
}

// File is the top-level structure of the YAML file.
type File struct {
	Sources  []inventory.SourceRecord `yaml:"sources"`
	Settings Settings                 `yaml:"settings"`
}

// NewStore creates a store backed by the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the config file. A missing file yields an empty source list
// and default settings rather than an error.
func (s *Store) Load() ([]inventory.SourceRecord, Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() ([]inventory.SourceRecord, Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []inventory.SourceRecord{}, DefaultSettings(), nil
		}
		return nil, Settings{}, err
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, Settings{}, err
	}

	if file.Settings.ControlPort == 0 {
		file.Settings.ControlPort = DefaultSettings().ControlPort
	}
	if file.Settings.PlaceholderRows == 0 {
		file.Settings.PlaceholderRows = DefaultSettings().PlaceholderRows
	}
	if file.Settings.DetailTimeoutMS == 0 {
		file.Settings.DetailTimeoutMS = DefaultSettings().DetailTimeoutMS
	}

	return file.Sources, file.Settings, nil
}

// Save writes the config file.
func (s *Store) Save(sources []inventory.SourceRecord, settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(sources, settings)
}

func (s *Store) saveLocked(sources []inventory.SourceRecord, settings Settings) error {
	data, err := yaml.Marshal(File{Sources: sources, Settings: settings})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// AddSource validates a new record, assigns it an ID, and persists it.
// Names must be unique.
func (s *Store) AddSource(record inventory.SourceRecord) (inventory.SourceRecord, error) {
	if err := record.Validate(); err != nil {
		return inventory.SourceRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sources, settings, err := s.loadLocked()
	if err != nil {
		return inventory.SourceRecord{}, err
	}
	for _, existing := range sources {
		if existing.Name == record.Name {
			return inventory.SourceRecord{}, fmt.Errorf("source %q already exists", record.Name)
		}
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	sources = append(sources, record)
	if err := s.saveLocked(sources, settings); err != nil {
		return inventory.SourceRecord{}, err
	}
	return record, nil
}

// UpdateSource replaces the record with the matching ID.
func (s *Store) UpdateSource(record inventory.SourceRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sources, settings, err := s.loadLocked()
	if err != nil {
		return err
	}
	for i, existing := range sources {
		if existing.ID == record.ID {
			sources[i] = record
			return s.saveLocked(sources, settings)
		}
	}
	return fmt.Errorf("source %q not found", record.ID)
}

// RemoveSource deletes the record with the matching name.
func (s *Store) RemoveSource(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources, settings, err := s.loadLocked()
	if err != nil {
		return err
	}
	for i, existing := range sources {
		if existing.Name == name {
			sources = append(sources[:i], sources[i+1:]...)
			return s.saveLocked(sources, settings)
		}
	}
	return fmt.Errorf("source %q not found", name)
}

// SetEnabled toggles a source without touching the rest of its record.
func (s *Store) SetEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sources, settings, err := s.loadLocked()
	if err != nil {
		return err
	}
	for i, existing := range sources {
		if existing.Name == name {
			sources[i].Enabled = enabled
			return s.saveLocked(sources, settings)
		}
	}
	return fmt.Errorf("source %q not found", name)
}
