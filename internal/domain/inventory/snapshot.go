package inventory

import "regexp"

// Snapshot is one consistent observation of the inventory: the tools known
// so far, the configured sources, the set of source names still loading,
// and any human-readable warnings emitted while collecting them.
//
// Snapshots are value-semantics inputs to the view engine; a render pass
// never mixes data from two snapshots.
type Snapshot struct {
	Tools    []ToolDescriptor    `json:"tools"`
	Sources  []SourceRecord      `json:"sources"`
	Loading  map[string]struct{} `json:"-"`
	Warnings []string            `json:"warnings,omitempty"`
}

// IsLoading reports whether the named source is still mid-load.
func (s Snapshot) IsLoading(name string) bool {
	_, ok := s.Loading[name]
	return ok
}

// CountBySource tallies visible tools per source label.
func (s Snapshot) CountBySource() map[string]int {
	counts := make(map[string]int, len(s.Sources)+1)
	for _, t := range s.Tools {
		counts[t.SourceLabel()]++
	}
	return counts
}

// Warning strings name their source as "...source '<name>'...".
var warningSourceRe = regexp.MustCompile(`source '([^']+)'`)

// WarningCounts extracts a per-source warning tally from the free-text
// warning strings. Warnings that name no source are ignored.
func (s Snapshot) WarningCounts() map[string]int {
	counts := make(map[string]int)
	for _, w := range s.Warnings {
		if m := warningSourceRe.FindStringSubmatch(w); m != nil {
			counts[m[1]]++
		}
	}
	return counts
}
