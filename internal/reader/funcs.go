package reader

import (
	"strings"

	"github.com/oxhq/phpls/internal/phptree"
	"github.com/oxhq/phpls/internal/symbol"
)

// buildFunction builds a top-level function symbol, including its
// parameters and docblock-merged parameter/return types.
func (w *walker) buildFunction(node *phptree.Node) *symbol.Symbol {
	name := declName(node)
	fn := symbol.New(symbol.KindFunction, w.resolver().Resolve(name, symbol.ImportFunction))
	fn.Location = locationOf(w.uri, node)
	fn.Type = returnTypeOf(node)

	for _, p := range buildParameters(node) {
		fn.AddChild(p)
	}

	doc := precedingDocblock(node)
	summary, tags := ParseDocblock(doc)
	fn.Description = summary
	applyFunctionTags(fn, tags)
	return fn
}

// buildMethod builds a class member method symbol the same way, plus
// access/static/abstract/final modifiers.
func (w *walker) buildMethod(node *phptree.Node) *symbol.Symbol {
	name := declName(node)
	method := symbol.New(symbol.KindMethod, name)
	method.Modifiers = decodeModifiers(node)
	method.Location = locationOf(w.uri, node)
	method.Type = returnTypeOf(node)

	for _, p := range buildParameters(node) {
		method.AddChild(p)
	}

	doc := precedingDocblock(node)
	summary, tags := ParseDocblock(doc)
	method.Description = summary
	applyFunctionTags(method, tags)
	return method
}

// applyFunctionTags merges @param/@return tags into a function-or-method
// symbol's parameters and return type. Docblock types are applied after
// structural fields, so tag-derived types union with whatever type hint
// was already present rather than replacing it.
func applyFunctionTags(fn *symbol.Symbol, tags []Tag) {
	for _, tag := range tags {
		switch tag.Kind {
		case TagParam:
			if p := fn.FindChild(tag.Name); p != nil {
				p.Type = p.Type.Merge(tag.Type)
			}
		case TagReturn:
			fn.Type = fn.Type.Merge(tag.Type)
		}
	}
}

func declName(node *phptree.Node) string {
	if n := node.ChildByField("name"); !n.IsNil() {
		return n.Text()
	}
	for _, c := range node.NamedChildren() {
		if c.Kind() == "name" {
			return c.Text()
		}
	}
	return ""
}

func returnTypeOf(node *phptree.Node) symbol.TypeString {
	if n := node.ChildByField("return_type"); !n.IsNil() {
		return symbol.ParseTypeString(normalizeTypeHint(n.Text()))
	}
	return symbol.TypeString{}
}

// buildParameters walks a function/method's parameter list left to right.
// A parameter without a name (rare, but grammar-legal in some contexts) is
// skipped silently.
func buildParameters(node *phptree.Node) []*symbol.Symbol {
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
		return nil
	}

	var out []*symbol.Symbol
	for _, p := range list.NamedChildren() {
		name := parameterName(p)
		if name == "" {
			continue
		}
		param := symbol.New(symbol.KindParameter, name)
		param.Location = locationOf("", p)
		if t := p.ChildByField("type"); !t.IsNil() {
			param.Type = symbol.ParseTypeString(normalizeTypeHint(t.Text()))
		}
		if decodeModifiers(p) != 0 {
			// A visibility modifier on a constructor parameter marks
			// promotion; walkClassBody lifts these into Property
			// children once the enclosing method is __construct.
			param.Modifiers = decodeModifiers(p)
		}
		out = append(out, param)
	}
	return out
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

// normalizeTypeHint strips a leading nullable "?" marker, folding it into
// the "null" atom of the resulting union, so "?Foo" and "Foo|null" agree.
func normalizeTypeHint(hint string) string {
	hint = strings.TrimSpace(hint)
	if strings.HasPrefix(hint, "?") {
		return strings.TrimPrefix(hint, "?") + "|null"
	}
	return hint
}
