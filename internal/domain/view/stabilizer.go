// Package view implements the stateful side of the inventory engine:
// source stabilization, selection and expansion state, lazy detail
// hydration, and render planning. One Engine instance backs one view;
// nothing in this package uses package-level mutable state.
package view

import (
	"sort"

	"github.com/toolscope/toolscope/internal/domain/inventory"
)

// Stabilizer reconciles the fluctuating configured-source list against the
// sources already on screen. A source that momentarily vanishes from the
// configuration (a save round-trip, a reload race) is retained as long as
// it still shows tools or is mid-load, so the sidebar never flickers.
type Stabilizer struct {
	retained map[string]inventory.SourceRecord
	last     []inventory.SourceRecord
}

// NewStabilizer returns an empty stabilizer.
func NewStabilizer() *Stabilizer {
	return &Stabilizer{retained: make(map[string]inventory.SourceRecord)}
}

// Reconcile merges the currently configured sources into the retained set
// and returns the stabilized list, sorted by name. The boolean reports
// whether the list differs from the previous emission by id, name, type,
// or enabled; when it does not, the previous slice is returned unchanged
// so downstream consumers can skip their own work.
func (s *Stabilizer) Reconcile(configured []inventory.SourceRecord, toolCounts map[string]int, loading map[string]struct{}) ([]inventory.SourceRecord, bool) {
	enabled := make(map[string]struct{}, len(configured))
	for _, src := range configured {
		if !src.Enabled {
			continue
		}
		enabled[src.Name] = struct{}{}
		s.retained[src.Name] = src
	}

	for name := range s.retained {
		if _, still := enabled[name]; still {
			continue
		}
		if toolCounts[name] > 0 {
			continue
		}
		if _, mid := loading[name]; mid {
			continue
		}
		delete(s.retained, name)
	}

	out := make([]inventory.SourceRecord, 0, len(s.retained))
	for _, src := range s.retained {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	if sameSourceList(out, s.last) {
		return s.last, false
	}
	s.last = out
	return out, true
}

// Sources returns the most recently emitted stabilized list.
func (s *Stabilizer) Sources() []inventory.SourceRecord {
	return s.last
}

func sameSourceList(a, b []inventory.SourceRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Name != b[i].Name ||
			a[i].Type != b[i].Type || a[i].Enabled != b[i].Enabled {
			return false
		}
	}
	return true
}
