package typeresolve

import (
	"context"
	"strings"

	"github.com/oxhq/phpls/internal/aggregate"
	"github.com/oxhq/phpls/internal/phptree"
	"github.com/oxhq/phpls/internal/symbol"
)

// exprType computes the static type of node, an expression, dispatching on
// its grammar kind. Node kinds this dispatcher doesn't recognize, or
// member/scope lookups that find nothing, resolve to the empty type;
// resolution never errors.
func (w *walker) exprType(ctx context.Context, node *phptree.Node) symbol.TypeString {
	if node.IsNil() || cancelled(w.cancel) {
		return symbol.TypeString{}
	}

	switch {
	case kindIs(node, "parenthesized_expression"):
		inner := firstNamedChild(node)
		return w.exprType(ctx, inner)

	case kindIs(node, "variable_name"):
		return w.variableType(node)

	case kindIs(node, "object_creation_expression"):
		return w.objectCreationType(node)

	case kindIs(node, "member_call_expression"), kindIs(node, "member_access_expression"):
		return w.memberType(ctx, node)

	case kindIs(node, "scoped_call_expression"), kindIs(node, "scoped_property_access_expression"), kindIs(node, "class_constant_access_expression"):
		return w.scopedType(ctx, node)

	case kindIs(node, "function_call_expression"):
		return w.functionCallType(node)

	case kindIs(node, "cast_expression"):
		if t := node.ChildByField("type"); !t.IsNil() {
			return symbol.ParseTypeString(t.Text())
		}
		return symbol.TypeString{}

	case kindIs(node, "string", "encapsed_string"):
		return symbol.NewTypeString("string")
	case kindIs(node, "integer"):
		return symbol.NewTypeString("int")
	case kindIs(node, "float"):
		return symbol.NewTypeString("float")
	case kindIs(node, "boolean"):
		return symbol.NewTypeString("bool")
	case kindIs(node, "null"):
		return symbol.NewTypeString("null")
	case kindIs(node, "array_creation_expression"):
		return symbol.NewTypeString("array")

	default:
		return symbol.TypeString{}
	}
}

func firstNamedChild(node *phptree.Node) *phptree.Node {
	named := node.NamedChildren()
	if len(named) == 0 {
		return nil
	}
	return named[0]
}

// variableType resolves $this against the enclosing class and everything
// else against the variable table.
func (w *walker) variableType(node *phptree.Node) symbol.TypeString {
	name := strings.TrimPrefix(node.Text(), "$")
	if name == "this" {
		if w.class == "" {
			return symbol.TypeString{}
		}
		return symbol.NewTypeString(w.class)
	}
	return w.vars.GetType(name)
}

// objectCreationType resolves `new Foo(...)`. A `new self`/`new static`
// construct resolves to the enclosing class rather than the literal atom,
// since self/static are never meaningful outside member resolution.
func (w *walker) objectCreationType(node *phptree.Node) symbol.TypeString {
	nameNode := node.ChildByField("class")
	if nameNode.IsNil() {
		nameNode = findChildKind(node, "name")
	}
	if nameNode.IsNil() {
		return symbol.TypeString{}
	}
	written := nameNode.Text()
	if isSelfOrStatic(written) {
		if w.class == "" {
			return symbol.TypeString{}
		}
		return symbol.NewTypeString(w.class)
	}
	fqn := w.resolver().Resolve(written, symbol.ImportClass)
	return symbol.NewTypeString(fqn)
}

// functionCallType resolves a plain `foo(...)` call to its declared
// function's return type.
func (w *walker) functionCallType(node *phptree.Node) symbol.TypeString {
	nameNode := node.ChildByField("function")
	if nameNode.IsNil() {
		nameNode = findChildKind(node, "name")
	}
	if nameNode.IsNil() {
		return symbol.TypeString{}
	}
	fqn := w.resolver().Resolve(nameNode.Text(), symbol.ImportFunction)
	found := w.store.Find(fqn, func(s *symbol.Symbol) bool { return s.Kind == symbol.KindFunction })
	if len(found) == 0 {
		return symbol.TypeString{}
	}
	return found[0].Type
}

func isSelfOrStatic(name string) bool {
	lower := strings.ToLower(name)
	return lower == "self" || lower == "static"
}

// memberType resolves `$obj->prop` / `$obj->method(...)`: the object
// expression's type union, expanded class-by-class through the aggregate,
// unioning whatever the named member's type says.
func (w *walker) memberType(ctx context.Context, node *phptree.Node) symbol.TypeString {
	objectNode := node.ChildByField("object")
	nameNode := node.ChildByField("name")
	if objectNode.IsNil() || nameNode.IsNil() {
		return symbol.TypeString{}
	}
	objType := w.exprType(ctx, objectNode)
	memberName := nameNode.Text()

	var out symbol.TypeString
	for _, fqn := range objType.AtomicClasses() {
		out = out.Merge(w.lookupMemberType(fqn, memberName))
	}
	return out
}

// scopedType resolves `Foo::bar`, `self::CONST`, `static::method()`: the
// left-hand side names a class directly rather than an object expression.
func (w *walker) scopedType(ctx context.Context, node *phptree.Node) symbol.TypeString {
	scopeNode := node.ChildByField("scope")
	nameNode := node.ChildByField("name")
	if scopeNode.IsNil() || nameNode.IsNil() {
		return symbol.TypeString{}
	}
	memberName := strings.TrimPrefix(nameNode.Text(), "$")

	var fqn string
	written := scopeNode.Text()
	switch {
	case isSelfOrStatic(written):
		fqn = w.class
	case strings.EqualFold(written, "parent"):
		fqn = w.parentFQN()
	case kindIs(scopeNode, "variable_name"):
		t := w.exprType(ctx, scopeNode)
		classes := t.AtomicClasses()
		if len(classes) == 0 {
			return symbol.TypeString{}
		}
		var out symbol.TypeString
		for _, c := range classes {
			out = out.Merge(w.lookupMemberType(c, memberName))
		}
		return out
	default:
		fqn = w.resolver().Resolve(written, symbol.ImportClass)
	}
	if fqn == "" {
		return symbol.TypeString{}
	}
	return w.lookupMemberType(fqn, memberName)
}

// parentFQN resolves the enclosing class's first Associated class: its
// extends target, which is always first in declaration order.
func (w *walker) parentFQN() string {
	if w.class == "" {
		return ""
	}
	found := w.store.Find(w.class, func(s *symbol.Symbol) bool { return s.Kind.IsClassLike() })
	if len(found) == 0 || len(found[0].Associated) == 0 {
		return ""
	}
	return found[0].Associated[0]
}

// lookupMemberType finds classFQN in the store, builds its aggregate under
// the Override strategy, the default for member-access resolution, and
// returns the named member's declared type.
func (w *walker) lookupMemberType(classFQN, memberName string) symbol.TypeString {
	found := w.store.Find(classFQN, func(s *symbol.Symbol) bool { return s.Kind.IsClassLike() })
	if len(found) == 0 {
		return symbol.TypeString{}
	}
	agg, err := aggregate.Build(found[0], w.store)
	if err != nil {
		return symbol.TypeString{}
	}
	member := aggregate.FindMember(agg.Members(aggregate.MergeOverride), memberName)
	if member == nil {
		return symbol.TypeString{}
	}
	return member.Type
}
