// Package typeresolve implements the context-sensitive type resolver: a
// tree traversal that tracks variable types across lexical scopes,
// assignments, instanceof refinements, branch groups, and foreach
// bindings, answering "what is the static type of the expression at this
// position".
//
// Resolution never throws: an unknown name, absent variable, or missing
// member simply yields the empty TypeString.
package typeresolve

import (
	"context"
	"strings"

	"github.com/oxhq/phpls/internal/phptree"
	"github.com/oxhq/phpls/internal/resolve"
	"github.com/oxhq/phpls/internal/store"
	"github.com/oxhq/phpls/internal/symbol"
	"github.com/oxhq/phpls/internal/vartable"
)

// Mode records how the walker is interpreting the construct it is
// currently inside. Only walkAssignmentTarget sets it (to ModeAssignment,
// for the duration of that call); no code path reads it.
type Mode int

const (
	ModeNone Mode = iota
	ModeAssignment
	ModeInstanceOf
	ModeResolveVariableName
	ModeResolveType
	ModeForeach
)

// Cancelled is consulted at node boundaries; a nil value means the query
// is never cancelled.
type Cancelled func() bool

// Resolver answers position-based type queries against one document's
// parse tree, given the symbol store it should consult for member and
// aggregate lookups.
type Resolver struct {
	store *store.Store
}

// New builds a Resolver backed by st.
func New(st *store.Store) *Resolver {
	return &Resolver{store: st}
}

// cancelled is a stand-in for a nil Cancelled func.
func cancelled(c Cancelled) bool {
	return c != nil && c()
}

// walker carries one query's mutable traversal state.
type walker struct {
	store     *store.Store
	vars      *vartable.Table
	imports   *symbol.ImportTable
	namespace string
	class     string // enclosing class-like FQN, "" outside one
	target    uint32
	hasTarget bool // true for ResolveAt/SignatureAt; false for WalkExpressions
	cancel    Cancelled

	found  bool
	result symbol.TypeString
	mode   Mode

	wantSignature bool
	sigResult     *Signature

	// collect, when set (WalkExpressions), is invoked with every
	// expression node's resolved type as the walk passes over it, instead
	// of stopping at a single target offset.
	collect func(n *phptree.Node, t symbol.TypeString)
}

func (w *walker) resolver() *resolve.Resolver {
	return resolve.New(w.namespace, w.imports)
}

// ResolveAt walks root, replaying assignments/branches/foreach bindings in
// textual order, and returns the static type of the first expression, in a
// top-down walk, whose range contains the byte offset target: the
// outermost such expression, not the innermost.
func (r *Resolver) ResolveAt(ctx context.Context, root *phptree.Node, imports *symbol.ImportTable, target uint32, cancel Cancelled) symbol.TypeString {
	w := &walker{store: r.store, vars: vartable.New(), imports: imports, target: target, hasTarget: true, cancel: cancel}
	w.vars.PushScope()
	w.walkProgram(ctx, root)
	w.vars.PopScope()
	return w.result
}

// WalkExpressions walks root once, replaying the same assignment/branch/
// foreach binding logic ResolveAt uses, and calls visit with every
// expression node's resolved type as the walk passes over it. Unlike
// ResolveAt it never stops early, and visits expressions in program order.
// Expressions inside an if/elseif condition or a foreach header (iterable,
// key, value) are not visited.
func (r *Resolver) WalkExpressions(ctx context.Context, root *phptree.Node, imports *symbol.ImportTable, cancel Cancelled, visit func(n *phptree.Node, t symbol.TypeString)) {
	w := &walker{store: r.store, vars: vartable.New(), imports: imports, cancel: cancel, collect: visit}
	w.vars.PushScope()
	w.walkProgram(ctx, root)
	w.vars.PopScope()
}

func kindIs(n *phptree.Node, substrs ...string) bool {
	if n.IsNil() {
		return false
	}
	k := n.Kind()
	for _, s := range substrs {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func (w *walker) walkProgram(ctx context.Context, node *phptree.Node) {
	for _, child := range node.NamedChildren() {
		if w.found || cancelled(w.cancel) {
			return
		}
		w.walkNode(ctx, child)
	}
}

// walkNode dispatches on node kind, updating traversal state (namespace,
// scopes, branch-groups, variable bindings), recording the resolved type
// once the target offset is reached, or invoking the collect callback
// for every expression passed over.
func (w *walker) walkNode(ctx context.Context, node *phptree.Node) {
	if node.IsNil() || w.found || cancelled(w.cancel) {
		return
	}

	if w.hasTarget && w.wantSignature && node.ContainsByte(w.target) && isCallKind(node) {
		w.sigResult = w.buildSignature(ctx, node)
		w.found = true
		return
	}

	if isExpressionKind(node) {
		if w.hasTarget {
			if node.ContainsByte(w.target) {
				w.result = w.exprType(ctx, node)
				w.found = true
				return
			}
		} else if w.collect != nil {
			w.collect(node, w.exprType(ctx, node))
		}
	}

	switch {
	case kindIs(node, "namespace_definition"):
		w.walkNamespace(ctx, node)
		return
	case kindIs(node, "namespace_use_declaration"):
		// Import tables are supplied by the caller (the document's
		// already-read symbol.Tree); nothing to do here.
		return
	case kindIs(node, "class_declaration", "interface_declaration", "trait_declaration"):
		w.walkClassLike(ctx, node)
		return
	case kindIs(node, "function_definition"), kindIs(node, "method_declaration"), kindIs(node, "anonymous_function_creation_expression"), kindIs(node, "arrow_function"):
		w.walkFunctionBody(ctx, node)
		return
	case kindIs(node, "if_statement"):
		w.walkIfStatement(ctx, node)
		return
	case kindIs(node, "foreach_statement"):
		w.walkForeach(ctx, node)
		return
	case kindIs(node, "assignment_expression"):
		w.walkAssignment(ctx, node)
		return
	case kindIs(node, "expression_statement"):
		for _, c := range node.NamedChildren() {
			w.walkNode(ctx, c)
		}
		return
	}

	for _, c := range node.NamedChildren() {
		if w.found || cancelled(w.cancel) {
			return
		}
		w.walkNode(ctx, c)
	}
}

// isExpressionKind reports whether node is a construct exprType knows how
// to answer for directly, so a query landing exactly on one of these
// doesn't need to fall through to the generic children walk.
func isExpressionKind(n *phptree.Node) bool {
	return kindIs(n, "variable_name", "member_access_expression", "member_call_expression",
		"scoped_property_access_expression", "scoped_call_expression",
		"class_constant_access_expression", "object_creation_expression", "function_call_expression")
}

func (w *walker) walkNamespace(ctx context.Context, node *phptree.Node) {
	name := nameField(node)
	if body := namespaceBody(node); !body.IsNil() {
		prev := w.namespace
		w.namespace = name
		for _, c := range body.NamedChildren() {
			if w.found || cancelled(w.cancel) {
				break
			}
			w.walkNode(ctx, c)
		}
		w.namespace = prev
		return
	}
	w.namespace = name
}

func namespaceBody(node *phptree.Node) *phptree.Node {
	if b := node.ChildByField("body"); !b.IsNil() {
		return b
	}
	for _, c := range node.NamedChildren() {
		if strings.Contains(c.Kind(), "compound_statement") || strings.Contains(c.Kind(), "declaration_list") {
			return c
		}
	}
	return nil
}

func nameField(node *phptree.Node) string {
	if n := node.ChildByField("name"); !n.IsNil() {
		return n.Text()
	}
	for _, c := range node.NamedChildren() {
		if strings.Contains(c.Kind(), "name") {
			return c.Text()
		}
	}
	return ""
}

func (w *walker) walkClassLike(ctx context.Context, node *phptree.Node) {
	prevClass := w.class
	w.class = w.resolver().Resolve(nameField(node), symbol.ImportClass)

	w.vars.PushScope()
	body := classBody(node)
	if !body.IsNil() {
		for _, c := range body.NamedChildren() {
			if w.found || cancelled(w.cancel) {
				break
			}
			w.walkNode(ctx, c)
		}
	}
	w.vars.PopScope()

	w.class = prevClass
}

func classBody(node *phptree.Node) *phptree.Node {
	if b := node.ChildByField("body"); !b.IsNil() {
		return b
	}
	named := node.NamedChildren()
	if len(named) > 0 {
		return named[len(named)-1]
	}
	return nil
}

func (w *walker) walkFunctionBody(ctx context.Context, node *phptree.Node) {
	w.vars.PushScope()
	w.bindParameters(node)
	if body := node.ChildByField("body"); !body.IsNil() {
		for _, c := range body.NamedChildren() {
			if w.found || cancelled(w.cancel) {
				break
			}
			w.walkNode(ctx, c)
		}
	}
	w.vars.PopScope()
}

func (w *walker) bindParameters(node *phptree.Node) {
	list := node.ChildByField("parameters")
	if list.IsNil() {
		for _, c := range node.NamedChildren() {
			if strings.Contains(c.Kind(), "formal_parameters") {
				list = c
				break
			}
		}
	}
	if list.IsNil() {
		return
	}
	for _, p := range list.NamedChildren() {
		name := parameterName(p)
		if name == "" {
			continue
		}
		if t := p.ChildByField("type"); !t.IsNil() {
			w.vars.SetType(name, symbol.ParseTypeString(t.Text()))
		}
	}
}

func parameterName(p *phptree.Node) string {
	if n := p.ChildByField("name"); !n.IsNil() {
		return strings.TrimPrefix(n.Text(), "$")
	}
	for _, c := range p.NamedChildren() {
		if c.Kind() == "variable_name" {
			return strings.TrimPrefix(c.Text(), "$")
		}
	}
	return ""
}

// walkIfStatement pushes one branch-group for the whole if/elseif*/else?
// chain and one branch per arm, recursing into each arm's body before
// popping. instanceof guards in the arm's own condition are handled by
// walkAssignment's sibling, refineInstanceof, called here directly on the
// condition expression.
func (w *walker) walkIfStatement(ctx context.Context, node *phptree.Node) {
	w.vars.PushBranchGroup()
	w.walkIfArm(ctx, node)
	w.vars.PopBranchGroup()
}

func (w *walker) walkIfArm(ctx context.Context, node *phptree.Node) {
	w.vars.PushBranch()

	cond := node.ChildByField("condition")
	if !cond.IsNil() {
		w.refineInstanceof(ctx, cond, true)
	}
	if body := node.ChildByField("body"); !body.IsNil() {
		w.walkBranchBody(ctx, body)
	}

	w.vars.PopBranch()

	// Every else_if_clause and else_clause of the chain gets its own arm.
	for _, alt := range node.NamedChildren() {
		if w.found || cancelled(w.cancel) {
			return
		}
		if kindIs(alt, "else_if_clause") {
			w.walkIfArm(ctx, alt)
			continue
		}
		if !kindIs(alt, "else_clause") {
			continue
		}
		elseClause := alt
		w.vars.PushBranch()
		if !cond.IsNil() {
			w.refineInstanceof(ctx, cond, false)
		}
		if body := elseClause.ChildByField("body"); !body.IsNil() {
			w.walkBranchBody(ctx, body)
		} else {
			for _, c := range elseClause.NamedChildren() {
				if w.found || cancelled(w.cancel) {
					break
				}
				w.walkNode(ctx, c)
			}
		}
		w.vars.PopBranch()
	}
}

func (w *walker) walkBranchBody(ctx context.Context, body *phptree.Node) {
	for _, c := range body.NamedChildren() {
		if w.found || cancelled(w.cancel) {
			return
		}
		w.walkNode(ctx, c)
	}
}

func findChildKind(node *phptree.Node, substr string) *phptree.Node {
	for _, c := range node.NamedChildren() {
		if strings.Contains(c.Kind(), substr) {
			return c
		}
	}
	return nil
}

// refineInstanceof recognizes `$v instanceof T` in an if condition and, in
// the positive branch, replaces $v's type with T for the branch's
// duration, a plain replacement rather than a true intersection. The
// negative branch keeps the prior type untouched.
func (w *walker) refineInstanceof(ctx context.Context, cond *phptree.Node, positive bool) {
	if !positive {
		return
	}
	instanceOf := findInstanceof(cond)
	if instanceOf.IsNil() {
		return
	}
	// instanceof_expression's two named children are positional, the
	// tested expression first and the class reference second, rather than
	// distinguished by a field name a substring search could key on (both
	// sides can contain "name" in their node kind).
	named := instanceOf.NamedChildren()
	if len(named) < 2 {
		return
	}
	varNode, classNode := named[0], named[1]
	if !kindIs(varNode, "variable_name") {
		return
	}
	name := strings.TrimPrefix(varNode.Text(), "$")
	fqn := w.resolver().Resolve(classNode.Text(), symbol.ImportClass)
	w.vars.SetType(name, symbol.NewTypeString(fqn))
}

func findInstanceof(node *phptree.Node) *phptree.Node {
	if node.IsNil() {
		return nil
	}
	if kindIs(node, "instanceof") {
		return node
	}
	for _, c := range node.NamedChildren() {
		if found := findInstanceof(c); !found.IsNil() {
			return found
		}
	}
	return nil
}

// walkAssignment handles `$v = expr`: the expression's type is bound to
// $v in the current branch (or scope if no branch is active).
func (w *walker) walkAssignment(ctx context.Context, node *phptree.Node) {
	left := node.ChildByField("left")
	right := node.ChildByField("right")
	if left.IsNil() || right.IsNil() {
		named := node.NamedChildren()
		if len(named) >= 2 {
			left, right = named[0], named[1]
		}
	}
	if w.hasTarget && (right.ContainsByte(w.target) || (!left.IsNil() && left.ContainsByte(w.target))) {
		w.walkAssignmentTarget(ctx, left, right)
		if w.found {
			return
		}
	}
	if kindIs(left, "variable_name") {
		w.vars.SetType(strings.TrimPrefix(left.Text(), "$"), w.exprType(ctx, right))
	}
	if w.collect != nil {
		w.walkNode(ctx, left)
		w.walkNode(ctx, right)
	}
}

func (w *walker) walkAssignmentTarget(ctx context.Context, left, right *phptree.Node) {
	prevMode := w.mode
	w.mode = ModeAssignment
	defer func() { w.mode = prevMode }()

	if right.ContainsByte(w.target) && isExpressionKind(right) {
		w.result = w.exprType(ctx, right)
		w.found = true
		return
	}
	if !left.IsNil() && left.ContainsByte(w.target) && kindIs(left, "variable_name") {
		w.result = w.exprType(ctx, right)
		w.found = true
	}
}

// walkForeach reads `foreach (ITER as [KEY =>] VALUE) BODY` positionally
// rather than by field name: excluding the body field, a foreach_statement
// has two named children (iterable, then the value or a `pair` node
// holding key and value) or three (iterable, key, value), matching the
// grammar's fixed left-to-right clause order.
func (w *walker) walkForeach(ctx context.Context, node *phptree.Node) {
	body := node.ChildByField("body")

	var head []*phptree.Node
	for _, c := range node.NamedChildren() {
		if sameRange(c, body) {
			continue
		}
		head = append(head, c)
	}

	var iterable, keyVar, valVar *phptree.Node
	switch len(head) {
	case 2:
		iterable, valVar = head[0], head[1]
		if kindIs(valVar, "pair") {
			if kv := valVar.NamedChildren(); len(kv) == 2 {
				keyVar, valVar = kv[0], kv[1]
			}
		}
	case 3:
		iterable, keyVar, valVar = head[0], head[1], head[2]
	default:
		if len(head) > 0 {
			iterable = head[0]
		}
	}

	iterType := w.exprType(ctx, iterable)

	if !keyVar.IsNil() {
		w.vars.SetType(strings.TrimPrefix(keyVar.Text(), "$"), symbol.NewTypeString("int", "string"))
	}
	if !valVar.IsNil() {
		w.vars.SetType(strings.TrimPrefix(valVar.Text(), "$"), elementType(iterType))
	}

	if !body.IsNil() {
		for _, c := range body.NamedChildren() {
			if w.found || cancelled(w.cancel) {
				return
			}
			w.walkNode(ctx, c)
		}
	}
}

// sameRange reports whether a and b denote the same source span, used to
// exclude an already-extracted field child (e.g. body) from a positional
// scan over NamedChildren without relying on pointer identity, which two
// separate façade wrappers for the same underlying node won't share.
func sameRange(a, b *phptree.Node) bool {
	if a.IsNil() || b.IsNil() {
		return false
	}
	ra, rb := a.Range(), b.Range()
	return ra.StartByte == rb.StartByte && ra.EndByte == rb.EndByte
}

// elementType extracts the deducible element type of an iterable union:
// an atom ending in "[]" contributes its prefix, and array<T>/iterable<T>
// style atoms contribute their last generic argument. Anything else
// contributes nothing; an iterType with no deducible element yields
// "mixed".
func elementType(iterType symbol.TypeString) symbol.TypeString {
	var out symbol.TypeString
	for _, atom := range iterType.Atoms() {
		switch {
		case strings.HasSuffix(atom, "[]"):
			out.Add(strings.TrimSuffix(atom, "[]"))
		case strings.Contains(atom, "<") && strings.HasSuffix(atom, ">"):
			inner := atom[strings.Index(atom, "<")+1 : len(atom)-1]
			parts := strings.Split(inner, ",")
			out.Add(strings.TrimSpace(parts[len(parts)-1]))
		}
	}
	if out.IsEmpty() {
		return symbol.NewTypeString("mixed")
	}
	return out
}
