package grouping

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/toolscope/toolscope/internal/domain/inventory"
)

// DefaultPlaceholderRows is how many skeleton rows a still-loading source
// shows before any of its tools have arrived.
const DefaultPlaceholderRows = 3

// systemLabel sorts after every other source regardless of alphabet.
const systemLabel = "system"

// Collators are not safe for concurrent use, so each build gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}

func sortToolsByPath(c *collate.Collator, tools []inventory.ToolDescriptor) {
	sort.SliceStable(tools, func(i, j int) bool {
		return c.CompareString(tools[i].Path, tools[j].Path) < 0
	})
}

// SortedByPath returns a path-ordered copy of the tool list, the leaf
// order used by the flat view.
func SortedByPath(tools []inventory.ToolDescriptor) []inventory.ToolDescriptor {
	out := make([]inventory.ToolDescriptor, len(tools))
	copy(out, tools)
	sortToolsByPath(newCollator(), out)
	return out
}

// ByNamespace groups tools by their namespace, namespaces in alphabetical
// order, leaves ordered by full path. An empty list yields an empty forest.
func ByNamespace(tools []inventory.ToolDescriptor) []*Group {
	c := newCollator()
	return namespaceGroups(c, tools, NamespaceKey)
}

func namespaceGroups(c *collate.Collator, tools []inventory.ToolDescriptor, key func(ns string) string) []*Group {
	byNS := make(map[string][]inventory.ToolDescriptor)
	var order []string
	for _, t := range tools {
		ns := t.Namespace()
		if _, seen := byNS[ns]; !seen {
			order = append(order, ns)
		}
		byNS[ns] = append(byNS[ns], t)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return c.CompareString(order[i], order[j]) < 0
	})

	groups := make([]*Group, 0, len(order))
	for _, ns := range order {
		leaves := byNS[ns]
		sortToolsByPath(c, leaves)
		groups = append(groups, &Group{
			Key:           key(ns),
			Label:         ns,
			Type:          GroupNamespace,
			ChildCount:    len(leaves),
			ApprovalCount: countApproval(leaves),
			Tools:         leaves,
		})
	}
	return groups
}

// ByApproval splits tools into at most two groups, "Approval Required"
// and "Auto-approved". Empty groups are omitted entirely.
func ByApproval(tools []inventory.ToolDescriptor) []*Group {
	c := newCollator()
	var required, auto []inventory.ToolDescriptor
	for _, t := range tools {
		if t.Approval == inventory.ApprovalRequired {
			required = append(required, t)
		} else {
			auto = append(auto, t)
		}
	}

	var groups []*Group
	if len(required) > 0 {
		sortToolsByPath(c, required)
		groups = append(groups, &Group{
			Key:           approvalRequiredKey,
			Label:         "Approval Required",
			Type:          GroupNamespace,
			ChildCount:    len(required),
			ApprovalCount: len(required),
			Tools:         required,
		})
	}
	if len(auto) > 0 {
		sortToolsByPath(c, auto)
		groups = append(groups, &Group{
			Key:        approvalAutoKey,
			Label:      "Auto-approved",
			Type:       GroupNamespace,
			ChildCount: len(auto),
			Tools:      auto,
		})
	}
	return groups
}

// BySourceNamespace groups tools by source label, then by namespace within
// each source. Sources are ordered by descending tool count (stable), with
// "system" sources always last; namespaces are alphabetical.
func BySourceNamespace(tools []inventory.ToolDescriptor) []*Group {
	return BySources(tools, nil, nil, 0)
}

// BySources is the source-aware variant of BySourceNamespace. Besides
// grouping the visible tools it synthesizes a placeholder group for every
// enabled configured source that has no tools yet, and for every name in
// the loading set that is not even configured-visible, so the tree shows
// a stable slot before any tools exist.
func BySources(tools []inventory.ToolDescriptor, sources []inventory.SourceRecord, loading map[string]struct{}, placeholderRows int) []*Group {
	c := newCollator()
	if placeholderRows <= 0 {
		placeholderRows = DefaultPlaceholderRows
	}

	byLabel := make(map[string][]inventory.ToolDescriptor)
	typeByLabel := make(map[string]string)
	var order []string
	for _, t := range tools {
		label := t.SourceLabel()
		if _, seen := byLabel[label]; !seen {
			order = append(order, label)
			typeByLabel[label] = t.SourceType()
		}
		byLabel[label] = append(byLabel[label], t)
	}

	groups := make([]*Group, 0, len(order))
	for _, label := range order {
		leaves := byLabel[label]
		group := &Group{
			Key:           SourceKey(label),
			Label:         label,
			Type:          GroupSource,
			SourceType:    typeByLabel[label],
			ChildCount:    len(leaves),
			ApprovalCount: countApproval(leaves),
			Groups:        namespaceGroups(c, leaves, func(ns string) string { return SourceNamespaceKey(label, ns) }),
		}
		if loading != nil {
			if _, stillLoading := loading[label]; stillLoading {
				group.LoadingPlaceholders = placeholderRows
			}
		}
		groups = append(groups, group)
	}

	// Configured sources with no visible tools yet get a placeholder slot.
	for _, src := range sources {
		if !src.Enabled {
			continue
		}
		if _, has := byLabel[src.Name]; has {
			continue
		}
		byLabel[src.Name] = nil
		groups = append(groups, &Group{
			Key:                 SourceKey(src.Name),
			Label:               src.Name,
			Type:                GroupSource,
			SourceType:          string(src.Type),
			LoadingPlaceholders: placeholderRows,
		})
	}

	// So do sources known only from the loading set.
	var pending []string
	for name := range loading {
		if _, has := byLabel[name]; !has {
			pending = append(pending, name)
		}
	}
	sort.Strings(pending)
	for _, name := range pending {
		groups = append(groups, &Group{
			Key:                 SourceKey(name),
			Label:               name,
			Type:                GroupSource,
			LoadingPlaceholders: placeholderRows,
		})
	}

	// Descending tool count, stable; "system" sinks to the bottom.
	sort.SliceStable(groups, func(i, j int) bool {
		iSys, jSys := groups[i].Label == systemLabel, groups[j].Label == systemLabel
		if iSys != jSys {
			return jSys
		}
		return groups[i].ChildCount > groups[j].ChildCount
	})
	return groups
}
