// Package vartable implements the resolved variable table: a stack of
// lexical scopes, each holding a flat name-to-type map and a stack of
// branch-groups for if/elseif/else divergence. The Scope/BranchGroup/
// Branch shape is modeled here as three small structs with an explicit
// stack, rather than conflating scope-push and branch-push the way a
// dynamically typed prototype might.
package vartable

import "github.com/oxhq/phpls/internal/symbol"

type branch struct {
	overlay map[string]symbol.TypeString
	closed  bool
}

type branchGroup struct {
	branches []*branch
}

type scope struct {
	vars   map[string]symbol.TypeString
	groups []*branchGroup
}

func newScope() *scope {
	return &scope{vars: make(map[string]symbol.TypeString)}
}

// Table is a stack of lexical scopes (function/method/class/closure
// bodies), each carrying its own nested branch-group stack.
type Table struct {
	scopes []*scope
}

// New returns an empty Table with no open scope.
func New() *Table {
	return &Table{}
}

func (t *Table) top() *scope {
	if len(t.scopes) == 0 {
		return nil
	}
	return t.scopes[len(t.scopes)-1]
}

// PushScope opens a new lexical scope (a function/method/closure body).
func (t *Table) PushScope() {
	t.scopes = append(t.scopes, newScope())
}

// PopScope closes the innermost scope, discarding its bindings.
func (t *Table) PopScope() {
	if len(t.scopes) == 0 {
		return
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// PushBranchGroup opens a new branch-group (an if/elseif/else chain)
// within the current scope.
func (t *Table) PushBranchGroup() {
	s := t.top()
	if s == nil {
		return
	}
	s.groups = append(s.groups, &branchGroup{})
}

// PopBranchGroup closes the innermost branch-group, merging its branches
// by union per variable name: a branch that never touched a name
// contributes the pre-group scope type (the empty type if the name was
// never bound), and the result folds into the enclosing scope.
func (t *Table) PopBranchGroup() {
	s := t.top()
	if s == nil || len(s.groups) == 0 {
		return
	}
	g := s.groups[len(s.groups)-1]
	s.groups = s.groups[:len(s.groups)-1]

	touched := make(map[string]struct{})
	for _, b := range g.branches {
		for name := range b.overlay {
			touched[name] = struct{}{}
		}
	}

	for name := range touched {
		prior := s.vars[name] // zero value is the empty type
		var union symbol.TypeString
		first := true
		for _, b := range g.branches {
			v, ok := b.overlay[name]
			if !ok {
				v = prior
			}
			if first {
				union = v
				first = false
			} else {
				union = union.Merge(v)
			}
		}
		s.vars[name] = union
	}
}

// PushBranch opens a new branch (one if/elseif/else arm) within the
// innermost open branch-group. Writes via SetType target this branch's
// overlay until it is popped.
func (t *Table) PushBranch() {
	s := t.top()
	if s == nil || len(s.groups) == 0 {
		return
	}
	g := s.groups[len(s.groups)-1]
	g.branches = append(g.branches, &branch{overlay: make(map[string]symbol.TypeString)})
}

// PopBranch commits the innermost open branch's overlay into the
// branch-group's branch list (it already lives there; this only stops
// further writes from targeting it).
func (t *Table) PopBranch() {
	b := t.activeBranch()
	if b == nil {
		return
	}
	b.closed = true
}

// activeBranch returns the writable branch for the current scope: the
// last branch of its innermost open branch-group, if that branch hasn't
// been popped yet. Popped groups are removed from scope.groups entirely,
// so the innermost remaining group is always the relevant one. Nested
// if-statements naturally produce nested groups on the stack.
func (t *Table) activeBranch() *branch {
	s := t.top()
	if s == nil || len(s.groups) == 0 {
		return nil
	}
	g := s.groups[len(s.groups)-1]
	if len(g.branches) == 0 {
		return nil
	}
	b := g.branches[len(g.branches)-1]
	if b.closed {
		return nil
	}
	return b
}

// SetType binds name to ty. A write targets the topmost open branch's
// overlay if one exists, otherwise the current scope directly.
func (t *Table) SetType(name string, ty symbol.TypeString) {
	s := t.top()
	if s == nil {
		return
	}
	if b := t.activeBranch(); b != nil {
		b.overlay[name] = ty
		return
	}
	s.vars[name] = ty
}

// GetType looks up name: topmost open branch overlay, then the current
// scope's flat map, then outer scopes walking up. Returns the empty type
// if name is bound nowhere.
func (t *Table) GetType(name string) symbol.TypeString {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		s := t.scopes[i]
		if i == len(t.scopes)-1 {
			if b := t.activeBranch(); b != nil {
				if v, ok := b.overlay[name]; ok {
					return v
				}
			}
		}
		if v, ok := s.vars[name]; ok {
			return v
		}
	}
	return symbol.TypeString{}
}

// Depth reports how many scopes are currently open, mostly for tests and
// diagnostics.
func (t *Table) Depth() int {
	return len(t.scopes)
}
