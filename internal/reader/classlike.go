package reader

import (
	"strings"

	"github.com/oxhq/phpls/internal/phptree"
	"github.com/oxhq/phpls/internal/symbol"
)

// buildClassLike builds a Class/Interface/Trait symbol: its own modifiers,
// its associated FQNs (extends target, then implemented interfaces, then
// used traits, in that order of first appearance), and its member
// children.
func (w *walker) buildClassLike(node *phptree.Node, kind symbol.Kind) *symbol.Symbol {
	name := declName(node)
	cls := symbol.New(kind, w.resolver().Resolve(name, symbol.ImportClass))
	cls.Modifiers = decodeModifiers(node)
	cls.Location = locationOf(w.uri, node)

	r := w.resolver()
	for _, c := range node.NamedChildren() {
		switch {
		case strings.Contains(c.Kind(), "base_clause"):
			for _, q := range classNameRefs(c) {
				cls.Associated = append(cls.Associated, r.Resolve(q, symbol.ImportClass))
			}
		case strings.Contains(c.Kind(), "class_interface_clause"):
			for _, q := range classNameRefs(c) {
				cls.Associated = append(cls.Associated, r.Resolve(q, symbol.ImportClass))
			}
		}
	}

	body := classBody(node)
	if !body.IsNil() {
		w.walkClassBody(body, cls)
	}

	doc := precedingDocblock(node)
	summary, tags := ParseDocblock(doc)
	cls.Description = summary
	w.applyClassTags(cls, tags)

	return cls
}

// classNameRefs extracts the written class-name references inside an
// extends/implements clause, which may list more than one name
// (interfaces support multiple extends; implements lists are
// comma-separated).
func classNameRefs(clause *phptree.Node) []string {
	var out []string
	for _, c := range clause.NamedChildren() {
		if strings.Contains(c.Kind(), "name") {
			out = append(out, c.Text())
		}
	}
	return out
}

// classBody finds a class/interface/trait declaration's member list. Real
// tree-sitter-php grammars put it in a "declaration_list" field/child;
// falling back to the last named child covers grammar variance.
func classBody(node *phptree.Node) *phptree.Node {
	if b := node.ChildByField("body"); !b.IsNil() {
		return b
	}
	named := node.NamedChildren()
	for i := len(named) - 1; i >= 0; i-- {
		if strings.Contains(named[i].Kind(), "declaration_list") {
			return named[i]
		}
	}
	if len(named) > 0 {
		return named[len(named)-1]
	}
	return nil
}

func (w *walker) walkClassBody(body *phptree.Node, cls *symbol.Symbol) {
	r := w.resolver()
	for _, member := range body.NamedChildren() {
		switch member.Kind() {
		case "method_declaration":
			method := w.buildMethod(member)
			cls.AddChild(method)
			if strings.EqualFold(method.Name, "__construct") {
				for _, p := range promotedProperties(method) {
					cls.AddChild(p)
				}
			}
		case "property_declaration":
			for _, p := range w.buildProperties(member) {
				cls.AddChild(p)
			}
		case "const_declaration":
			for _, c := range w.buildClassConstants(member) {
				cls.AddChild(c)
			}
		case "use_declaration":
			for _, rule := range parseUseStatement("use " + strings.TrimPrefix(member.Text(), "use")) {
				cls.Associated = append(cls.Associated, r.Resolve(rule.Target, symbol.ImportClass))
			}
		}
	}
}

// promotedProperties turns a constructor's promoted parameters (those
// carrying a visibility modifier, marked by buildParameters) into Property
// symbols, so `__construct(private int $id)` contributes both a
// constructor parameter and a property named id.
func promotedProperties(constructor *symbol.Symbol) []*symbol.Symbol {
	var out []*symbol.Symbol
	for _, p := range constructor.Children {
		if p.Kind != symbol.KindParameter || p.Modifiers == 0 {
			continue
		}
		prop := symbol.New(symbol.KindProperty, p.Name)
		prop.Modifiers = p.Modifiers
		prop.Type = p.Type
		prop.Location = p.Location
		out = append(out, prop)
	}
	return out
}

// buildProperties expands a single `public static $a, $b = 1;` declaration
// into one Property symbol per variable, sharing the statement's
// modifiers and (if present) @var docblock.
func (w *walker) buildProperties(node *phptree.Node) []*symbol.Symbol {
	mods := decodeModifiers(node)
	doc := precedingDocblock(node)
	summary, tags := ParseDocblock(doc)

	var out []*symbol.Symbol
	for _, el := range propertyElements(node) {
		p := symbol.New(symbol.KindProperty, el.name)
		p.Modifiers = mods
		p.Location = locationOf(w.uri, node)
		if el.typeHint != "" {
			p.Type = symbol.ParseTypeString(normalizeTypeHint(el.typeHint))
		}
		p.Description = summary
		for _, tag := range tags {
			if tag.Kind == TagVar && (tag.Name == "" || tag.Name == el.name) {
				p.Type = p.Type.Merge(tag.Type)
				if p.Description == "" {
					p.Description = tag.Description
				}
			}
		}
		out = append(out, p)
	}
	return out
}

type propertyElement struct {
	name     string
	typeHint string
}

func propertyElements(node *phptree.Node) []propertyElement {
	var out []propertyElement
	typeHint := ""
	if t := node.ChildByField("type"); !t.IsNil() {
		typeHint = t.Text()
	}
	for _, c := range node.NamedChildren() {
		switch c.Kind() {
		case "property_element":
			if n := c.ChildByField("name"); !n.IsNil() {
				out = append(out, propertyElement{name: strings.TrimPrefix(n.Text(), "$"), typeHint: typeHint})
			} else {
				for _, gc := range c.NamedChildren() {
					if gc.Kind() == "variable_name" {
						out = append(out, propertyElement{name: strings.TrimPrefix(gc.Text(), "$"), typeHint: typeHint})
						break
					}
				}
			}
		case "variable_name":
			out = append(out, propertyElement{name: strings.TrimPrefix(c.Text(), "$"), typeHint: typeHint})
		}
	}
	return out
}

// buildClassConstants expands a `const A = 1, B = 2;` declaration into one
// ClassConstant symbol per constant.
func (w *walker) buildClassConstants(node *phptree.Node) []*symbol.Symbol {
	mods := decodeModifiers(node)
	doc := precedingDocblock(node)
	summary, _ := ParseDocblock(doc)

	var out []*symbol.Symbol
	for _, el := range constElements(node) {
		c := symbol.New(symbol.KindClassConstant, el.name)
		c.Modifiers = mods
		c.Location = locationOf(w.uri, node)
		c.Description = summary
		out = append(out, c)
	}
	return out
}

// applyClassTags synthesizes magic members from @property/@property-read/
// @property-write/@method tags.
func (w *walker) applyClassTags(cls *symbol.Symbol, tags []Tag) {
	for _, tag := range tags {
		switch tag.Kind {
		case TagProperty, TagPropertyRead, TagPropertyWrite:
			p := symbol.New(symbol.KindProperty, tag.Name)
			p.Type = tag.Type
			p.Description = tag.Description
			p.Modifiers = symbol.ModMagic | symbol.ModPublic
			if tag.Kind == TagPropertyRead {
				p.Modifiers |= symbol.ModReadOnly
			}
			if tag.Kind == TagPropertyWrite {
				p.Modifiers |= symbol.ModWriteOnly
			}
			cls.AddChild(p)
		case TagMethod:
			m := symbol.New(symbol.KindMethod, tag.Name)
			m.Type = tag.Type
			m.Description = tag.Description
			m.Modifiers = symbol.ModMagic | symbol.ModPublic
			if tag.Static {
				m.Modifiers |= symbol.ModStatic
			}
			for _, mp := range tag.Params {
				param := symbol.New(symbol.KindParameter, mp.Name)
				param.Type = mp.Type
				m.AddChild(param)
			}
			cls.AddChild(m)
		}
	}
}
