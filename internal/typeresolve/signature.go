package typeresolve

import (
	"context"
	"strings"

	"github.com/oxhq/phpls/internal/aggregate"
	"github.com/oxhq/phpls/internal/phptree"
	"github.com/oxhq/phpls/internal/symbol"
	"github.com/oxhq/phpls/internal/vartable"
)

// Parameter is one entry of a resolved callee's parameter list.
type Parameter struct {
	Name string
	Type symbol.TypeString
}

// Signature is the resolved shape of a call expression: the callee's
// declared parameters and which one the cursor currently sits in.
type Signature struct {
	CalleeName      string
	Parameters      []Parameter
	ActiveParameter int // -1 if the cursor isn't within the argument list
}

func isCallKind(n *phptree.Node) bool {
	return kindIs(n, "function_call_expression", "member_call_expression", "scoped_call_expression")
}

// SignatureAt locates the call expression enclosing target, given the
// same namespace/import/parse-tree inputs as ResolveAt, and reports the
// callee's parameter list. Nested calls resolve to the outermost call
// whose range contains target, matching the same top-down-first-match
// traversal ResolveAt uses for expressions.
func (r *Resolver) SignatureAt(ctx context.Context, root *phptree.Node, imports *symbol.ImportTable, target uint32, cancel Cancelled) *Signature {
	w := &walker{store: r.store, vars: vartable.New(), imports: imports, target: target, hasTarget: true, cancel: cancel, wantSignature: true}
	w.vars.PushScope()
	w.walkProgram(ctx, root)
	w.vars.PopScope()
	return w.sigResult
}

// buildSignature resolves call's callee and argument position. It runs
// synchronously at the point walkNode matches call, while w.class/
// w.namespace/w.vars still reflect the enclosing scope: those fields get
// unwound as the traversal's call stack returns, so nothing here may be
// deferred to after this function returns.
func (w *walker) buildSignature(ctx context.Context, call *phptree.Node) *Signature {
	active := activeParameterIndex(call, w.target)

	switch {
	case kindIs(call, "function_call_expression"):
		return w.functionCallSignature(call, active)
	case kindIs(call, "member_call_expression"):
		return w.memberCallSignature(ctx, call, active)
	case kindIs(call, "scoped_call_expression"):
		return w.scopedCallSignature(ctx, call, active)
	default:
		return nil
	}
}

func (w *walker) functionCallSignature(call *phptree.Node, active int) *Signature {
	nameNode := call.ChildByField("function")
	if nameNode.IsNil() {
		nameNode = findChildKind(call, "name")
	}
	if nameNode.IsNil() {
		return nil
	}
	written := nameNode.Text()
	fqn := w.resolver().Resolve(written, symbol.ImportFunction)
	found := w.store.Find(fqn, func(s *symbol.Symbol) bool { return s.Kind == symbol.KindFunction })
	if len(found) == 0 {
		return nil
	}
	return &Signature{
		CalleeName:      written,
		Parameters:      paramsOf(found[0]),
		ActiveParameter: active,
	}
}

func (w *walker) memberCallSignature(ctx context.Context, call *phptree.Node, active int) *Signature {
	objectNode := call.ChildByField("object")
	nameNode := call.ChildByField("name")
	if objectNode.IsNil() || nameNode.IsNil() {
		return nil
	}
	objType := w.exprType(ctx, objectNode)
	methodName := nameNode.Text()

	for _, fqn := range objType.AtomicClasses() {
		if method := w.findMethod(fqn, methodName); method != nil {
			return &Signature{
				CalleeName:      methodName,
				Parameters:      paramsOf(method),
				ActiveParameter: active,
			}
		}
	}
	return nil
}

func (w *walker) scopedCallSignature(ctx context.Context, call *phptree.Node, active int) *Signature {
	scopeNode := call.ChildByField("scope")
	nameNode := call.ChildByField("name")
	if scopeNode.IsNil() || nameNode.IsNil() {
		return nil
	}
	methodName := nameNode.Text()

	var fqn string
	written := scopeNode.Text()
	switch {
	case isSelfOrStatic(written):
		fqn = w.class
	case strings.EqualFold(written, "parent"):
		fqn = w.parentFQN()
	default:
		fqn = w.resolver().Resolve(written, symbol.ImportClass)
	}
	if fqn == "" {
		return nil
	}
	method := w.findMethod(fqn, methodName)
	if method == nil {
		return nil
	}
	return &Signature{
		CalleeName:      methodName,
		Parameters:      paramsOf(method),
		ActiveParameter: active,
	}
}

func (w *walker) findMethod(classFQN, methodName string) *symbol.Symbol {
	found := w.store.Find(classFQN, func(s *symbol.Symbol) bool { return s.Kind.IsClassLike() })
	if len(found) == 0 {
		return nil
	}
	agg, err := aggregate.Build(found[0], w.store)
	if err != nil {
		return nil
	}
	return aggregate.FindMember(agg.Members(aggregate.MergeOverride), methodName)
}

// paramsOf reads a function/method symbol's declared parameters, which
// internal/reader stores as Children of kind symbol.KindParameter.
func paramsOf(callee *symbol.Symbol) []Parameter {
	var out []Parameter
	for _, c := range callee.Children {
		if c.Kind != symbol.KindParameter {
			continue
		}
		out = append(out, Parameter{Name: c.Name, Type: c.Type})
	}
	return out
}

// activeParameterIndex counts top-level commas in call's argument list
// that fall before target, giving the 0-based parameter position the
// cursor is currently within. Returns -1 if target isn't inside the
// argument list at all.
func activeParameterIndex(call *phptree.Node, target uint32) int {
	args := call.ChildByField("arguments")
	if args.IsNil() {
		return -1
	}
	if !args.ContainsByte(target) {
		r := args.Range()
		if target != r.EndByte {
			return -1
		}
	}

	index := 0
	for _, c := range args.Children() {
		if c.Kind() == "," && c.Range().EndByte <= target {
			index++
		}
	}
	return index
}
