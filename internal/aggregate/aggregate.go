// Package aggregate implements the type aggregate: given a class-like
// symbol, walk its inheritance and trait-composition graph through the
// symbol store and yield a merged member view under one of four
// MergeStrategy values.
package aggregate

import (
	"strings"

	"github.com/oxhq/phpls/internal/enginerr"
	"github.com/oxhq/phpls/internal/store"
	"github.com/oxhq/phpls/internal/symbol"
)

// MergeStrategy selects how members with the same name across the
// inheritance chain are reconciled.
type MergeStrategy int

const (
	// MergeNone concatenates every chain member with no deduplication.
	MergeNone MergeStrategy = iota
	// MergeOverride keeps the first member seen per name, walking
	// root-first (the root's own declaration wins over any ancestor's).
	MergeOverride
	// MergeDocumented behaves like MergeOverride, but a later member
	// with a description replaces a currently-kept member that has none.
	MergeDocumented
	// MergeBase walks root-first but keeps the last member seen per name
	// (an ancestor's declaration wins over the root's).
	MergeBase
)

// Aggregate is the associated set computed for one class-like root: the
// ordered ancestor chain (classes/interfaces reached via extends/
// implements) and the traits collected along the way.
type Aggregate struct {
	Root       *symbol.Symbol
	Associated []*symbol.Symbol // ancestors, BFS order, root excluded
	Traits     []*symbol.Symbol
}

// Build computes the associated set for root by breadth-first walking its
// Associated FQNs through st, expanding the frontier by each found
// symbol's own Associated list. Cycles are broken with a visited-FQN set;
// the first symbol found for a given FQN wins. Build fails fast with
// enginerr.ErrInvalidArgument if root is not class-like.
func Build(root *symbol.Symbol, st *store.Store) (*Aggregate, error) {
	if root == nil || !root.Kind.IsClassLike() {
		return nil, enginerr.ErrInvalidArgument
	}

	a := &Aggregate{Root: root}
	visited := map[string]bool{strings.ToLower(strings.TrimPrefix(root.Name, "\\")): true}
	queue := append([]string(nil), root.Associated...)

	for len(queue) > 0 {
		fqn := queue[0]
		queue = queue[1:]

		key := strings.ToLower(strings.TrimPrefix(fqn, "\\"))
		if visited[key] {
			continue
		}
		visited[key] = true

		found := st.Find(fqn, func(s *symbol.Symbol) bool { return s.Kind.IsClassLike() })
		if len(found) == 0 {
			continue
		}
		sym := found[0]

		if sym.Kind == symbol.KindTrait {
			a.Traits = append(a.Traits, sym)
		} else {
			a.Associated = append(a.Associated, sym)
		}
		queue = append(queue, sym.Associated...)
	}

	return a, nil
}

// Members returns the merged member view under strategy. Interface and
// trait roots always concatenate without merge, regardless of the
// requested strategy.
func (a *Aggregate) Members(strategy MergeStrategy) []*symbol.Symbol {
	if a.Root.Kind == symbol.KindInterface || a.Root.Kind == symbol.KindTrait {
		return a.concat()
	}
	switch strategy {
	case MergeOverride:
		return a.merge(false, false)
	case MergeDocumented:
		return a.merge(false, true)
	case MergeBase:
		return a.merge(true, false)
	default:
		return a.concat()
	}
}

// concat implements MergeNone: every chain member in root-first order, no
// deduplication. Ancestor/trait privates are filtered; the root's own
// members (including its privates) are always included.
func (a *Aggregate) concat() []*symbol.Symbol {
	var out []*symbol.Symbol
	out = append(out, a.Root.Children...)
	for _, anc := range a.Associated {
		out = append(out, visiblesOf(anc)...)
	}
	for _, tr := range a.Traits {
		out = append(out, visiblesOf(tr)...)
	}
	return out
}

// merge walks the class chain (root, then ancestors in BFS order) keeping
// one member per name, then appends trait members (naive union: a trait
// member is only added if no chain member already claimed the name,
// except where the magic-override rule applies). preferLast implements
// MergeBase's root-last semantics; documented implements MergeDocumented's
// extra replace rule. The non-magic-beats-magic rule applies regardless
// of strategy.
func (a *Aggregate) merge(preferLast, documented bool) []*symbol.Symbol {
	var order []*symbol.Symbol
	index := make(map[string]int)

	addOrReplace := func(m *symbol.Symbol, replace func(existing, candidate *symbol.Symbol) bool) {
		key := memberKey(m)
		if pos, ok := index[key]; ok {
			if replace(order[pos], m) {
				order[pos] = m
			}
			return
		}
		index[key] = len(order)
		order = append(order, m)
	}

	chainReplace := func(existing, candidate *symbol.Symbol) bool {
		return shouldReplace(existing, candidate, preferLast, documented)
	}
	for _, m := range a.Root.Children {
		addOrReplace(m, chainReplace)
	}
	for _, anc := range a.Associated {
		for _, m := range visiblesOf(anc) {
			addOrReplace(m, chainReplace)
		}
	}

	traitReplace := func(existing, candidate *symbol.Symbol) bool {
		return shouldReplace(existing, candidate, false, false)
	}
	for _, tr := range a.Traits {
		for _, m := range visiblesOf(tr) {
			addOrReplace(m, traitReplace)
		}
	}

	return order
}

// shouldReplace decides whether candidate should replace the currently
// kept existing member of the same name. The magic rule always wins;
// otherwise documented's extra rule applies before falling back to
// preferLast (false keeps the first-seen member, true keeps the last).
func shouldReplace(existing, candidate *symbol.Symbol, preferLast, documented bool) bool {
	existingMagic := existing.Modifiers.Has(symbol.ModMagic)
	candidateMagic := candidate.Modifiers.Has(symbol.ModMagic)
	if existingMagic && !candidateMagic {
		return true
	}
	if candidateMagic && !existingMagic {
		return false
	}
	if documented && existing.Description == "" && candidate.Description != "" {
		return true
	}
	return preferLast
}

// visiblesOf returns cls's own children, excluding private members: an
// ancestor's or trait's privates never leak into a composing class.
func visiblesOf(cls *symbol.Symbol) []*symbol.Symbol {
	var out []*symbol.Symbol
	for _, m := range cls.Children {
		if m.Modifiers.Visibility() == symbol.ModPrivate {
			continue
		}
		out = append(out, m)
	}
	return out
}

// memberKey is the name used to dedup members during merge, folded for
// kinds that compare case-insensitively (methods) and as-is otherwise
// (properties, class constants).
func memberKey(m *symbol.Symbol) string {
	if m.Kind.CaseInsensitive() {
		return strings.ToLower(m.Name)
	}
	return m.Name
}

// FindMember looks up name in an already-merged member slice, applying
// the same case rule memberKey uses to build it.
func FindMember(members []*symbol.Symbol, name string) *symbol.Symbol {
	for _, m := range members {
		if m.Kind.CaseInsensitive() {
			if strings.EqualFold(m.Name, name) {
				return m
			}
		} else if m.Name == name {
			return m
		}
	}
	return nil
}
