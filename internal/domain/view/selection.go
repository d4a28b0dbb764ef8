package view

import (
	"sort"
	"strings"

	"github.com/toolscope/toolscope/internal/domain/grouping"
)

// autoExpandMinQuery is the minimum search length that drives automatic
// group expansion. Shorter queries still filter the list.
const autoExpandMinQuery = 2

// State holds the selection and expansion sets. Both are sets of opaque
// keys (tool paths or group keys) mutated only through toggles, so they
// stay valid across regrouping.
type State struct {
	selected map[string]struct{}
	expanded map[string]struct{}
}

// NewState returns empty selection and expansion state.
func NewState() *State {
	return &State{
		selected: make(map[string]struct{}),
		expanded: make(map[string]struct{}),
	}
}

// ToggleTool flips the selection membership of a single tool path.
func (s *State) ToggleTool(path string) {
	if _, ok := s.selected[path]; ok {
		delete(s.selected, path)
	} else {
		s.selected[path] = struct{}{}
	}
}

// ToggleGroup resolves the group's leaf tools in the current tree and
// either selects or deselects all of them together with the group key:
// if every resolved tool is already selected the whole set is cleared,
// otherwise the whole set is selected. A key that no longer resolves
// yields an empty leaf set, making the call a harmless no-op deselect.
func (s *State) ToggleGroup(key string, tree []*grouping.Group) {
	leaves := grouping.FindByKey(tree, key).Leaves()

	allSelected := true
	for _, t := range leaves {
		if _, ok := s.selected[t.Path]; !ok {
			allSelected = false
			break
		}
	}

	if allSelected {
		for _, t := range leaves {
			delete(s.selected, t.Path)
		}
		delete(s.selected, key)
		return
	}
	for _, t := range leaves {
		s.selected[t.Path] = struct{}{}
	}
	s.selected[key] = struct{}{}
}

// ToggleExpand flips a group's manual expansion state.
func (s *State) ToggleExpand(key string) {
	if _, ok := s.expanded[key]; ok {
		delete(s.expanded, key)
	} else {
		s.expanded[key] = struct{}{}
	}
}

// ResetExpansionToSource replaces the expansion set with the single
// top-level group of the given source, or empties it for "all sources".
func (s *State) ResetExpansionToSource(name string) {
	s.expanded = make(map[string]struct{})
	if name != "" {
		s.expanded[grouping.SourceKey(name)] = struct{}{}
	}
}

// ClearSelection empties the selection set.
func (s *State) ClearSelection() {
	s.selected = make(map[string]struct{})
}

// IsSelected reports membership of a tool path or group key.
func (s *State) IsSelected(key string) bool {
	_, ok := s.selected[key]
	return ok
}

// Selected returns the selection set as a sorted slice.
func (s *State) Selected() []string {
	return sortedKeys(s.selected)
}

// Expanded returns the manual expansion set as a sorted slice.
func (s *State) Expanded() []string {
	return sortedKeys(s.expanded)
}

// EffectiveExpansion returns the expansion set a render should use. While
// a search of at least autoExpandMinQuery characters is active, the manual
// set is overridden (not merged) by every group in the filtered tree that
// contains a match; clearing the search reverts to the manual set.
func (s *State) EffectiveExpansion(query string, tree []*grouping.Group) map[string]struct{} {
	if len(strings.TrimSpace(query)) >= autoExpandMinQuery {
		auto := make(map[string]struct{})
		for _, key := range grouping.Keys(tree) {
			auto[key] = struct{}{}
		}
		return auto
	}
	manual := make(map[string]struct{}, len(s.expanded))
	for key := range s.expanded {
		manual[key] = struct{}{}
	}
	return manual
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
