// Package dedup implements the cross-module symbol identity
// reconciliation described in spec.md §4.4: grouping symbols by name,
// collapsing forward declarations into their sized definitions,
// splitting groups that disagree on size, and assigning each surviving
// symbol a target namespace.
package dedup

import (
	"github.com/leculver/typegen/symbols"
)

// Group is one entry within a name's bucket: a chosen representative and
// the duplicate symbols that were folded into it.
type Group struct {
	Representative *symbols.Symbol
	Duplicates     []*symbols.Symbol
}

// Config carries the parts of the configuration record that the
// deduplicator's namespace-assignment step needs.
type Config struct {
	// CommonNamespace is assigned to the representative of any name that
	// resolves to a single, unambiguous group.
	CommonNamespace string
}

// Result is the output of a Deduplicate call: every name's list of
// groups (length > 1 only for genuinely ambiguous names) and the
// namespace each surviving Symbol was assigned.
type Result struct {
	GroupsByName map[string][]*Group

	// Namespaces maps every Symbol that survived deduplication --
	// representatives and duplicates alike -- to its assigned target
	// namespace.
	Namespaces map[*symbols.Symbol]string
}

// Deduplicate runs the algorithm of spec.md §4.4 over symbols, which
// must already be in the pipeline's deterministic interleaved order
// (spec.md §4.7 P2, §5).
func Deduplicate(cfg Config, all []*symbols.Symbol) *Result {
	groupsByName := make(map[string][]*Group)

	for _, sym := range all {
		groupsByName[sym.Name] = insert(groupsByName[sym.Name], sym)
	}

	// Step 2: for any name whose list has length > 1, unlink duplicate
	// sets so a later consumer can't silently pick a winner among
	// symbols that are genuinely ambiguous across modules.
	for name, groups := range groupsByName {
		if len(groups) > 1 {
			groupsByName[name] = unlink(groups)
		}
	}

	namespaces := make(map[*symbols.Symbol]string)
	for _, groups := range groupsByName {
		assignNamespaces(cfg, groups, namespaces)
	}

	return &Result{GroupsByName: groupsByName, Namespaces: namespaces}
}

// insert appends sym into the name's group list per the append rule of
// spec.md §4.4 step 1: split on a nonzero/nonzero size mismatch, promote
// on a zero/nonzero mismatch (preserving the displaced representative's
// duplicates -- see DESIGN.md's decision on open question (b)), and
// otherwise fold sym in as a duplicate of the first compatible entry.
func insert(groups []*Group, sym *symbols.Symbol) []*Group {
	for _, g := range groups {
		switch {
		case g.Representative.Size != 0 && sym.Size != 0:
			if g.Representative.Size != sym.Size {
				continue // incompatible; try the next entry or fall through to a new group
			}
			g.Duplicates = append(g.Duplicates, sym)
			return groups
		case g.Representative.Size == 0 && sym.Size != 0:
			displaced := g.Representative
			g.Representative = sym
			g.Duplicates = append(g.Duplicates, displaced)
			return groups
		default:
			// g.Representative.Size != 0 && sym.Size == 0, or both zero
			g.Duplicates = append(g.Duplicates, sym)
			return groups
		}
	}

	return append(groups, &Group{Representative: sym})
}

// unlink flattens every group's duplicates back into standalone
// single-symbol groups, preserving insertion order.
func unlink(groups []*Group) []*Group {
	var flat []*Group
	for _, g := range groups {
		flat = append(flat, &Group{Representative: g.Representative})
		for _, d := range g.Duplicates {
			flat = append(flat, &Group{Representative: d})
		}
	}
	return flat
}

func assignNamespaces(cfg Config, groups []*Group, out map[*symbols.Symbol]string) {
	if len(groups) == 1 {
		g := groups[0]
		out[g.Representative] = cfg.CommonNamespace
		for _, d := range g.Duplicates {
			out[d] = cfg.CommonNamespace
		}
		return
	}

	for _, g := range groups {
		ns := ""
		if g.Representative.Mod != nil {
			ns = g.Representative.Mod.Namespace
		}
		out[g.Representative] = ns
		for _, d := range g.Duplicates {
			dns := ns
			if d.Mod != nil {
				dns = d.Mod.Namespace
			}
			out[d] = dns
		}
	}
}
