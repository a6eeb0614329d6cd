// Package reader implements the symbol reader: a single traversal over a
// parsed document's parse tree (internal/phptree) that emits the
// document's symbol tree (internal/symbol), resolving every declared name
// to an FQN via internal/resolve as it goes.
package reader

import (
	"strings"

	"github.com/oxhq/phpls/internal/phptree"
	"github.com/oxhq/phpls/internal/resolve"
	"github.com/oxhq/phpls/internal/symbol"
)

// Reader walks one document's parse tree and builds its symbol.Tree.
type Reader struct {
	uri    string
	source []byte
}

// New creates a Reader for a document's URI and source bytes.
func New(uri string, source []byte) *Reader {
	return &Reader{uri: uri, source: source}
}

// Read performs the traversal, starting from the parse tree's program node.
func (r *Reader) Read(root *phptree.Node) *symbol.Tree {
	tree := symbol.NewTree(r.uri)
	w := &walker{tree: tree, uri: r.uri, namespace: ""}
	w.walkTopLevel(root)
	return tree
}

// walker carries the mutable state a single recursive pass needs: the
// symbol tree under construction and the current namespace (which a
// bracket-less `namespace X;` statement changes for the remainder of the
// file, and a braced `namespace X { ... }` changes only within its block).
type walker struct {
	tree      *symbol.Tree
	uri       string
	namespace string
}

func (w *walker) resolver() *resolve.Resolver {
	return resolve.New(w.namespace, w.tree.Imports)
}

// walkTopLevel processes the direct children of the program node (or of a
// braced namespace block, recursively): namespace declarations and use
// imports update the walker's state, and functions, classes, interfaces,
// traits, and constants are added directly under the tree root. No symbol
// is created for a namespace declaration itself.
func (w *walker) walkTopLevel(node *phptree.Node) {
	for _, child := range node.NamedChildren() {
		w.walkTopLevelNode(child)
	}
}

func (w *walker) walkTopLevelNode(node *phptree.Node) {
	switch node.Kind() {
	case "namespace_definition":
		w.handleNamespace(node)
	case "namespace_use_declaration":
		w.handleUseDeclaration(node)
	case "class_declaration":
		w.tree.Root.AddChild(w.buildClassLike(node, symbol.KindClass))
	case "interface_declaration":
		w.tree.Root.AddChild(w.buildClassLike(node, symbol.KindInterface))
	case "trait_declaration":
		w.tree.Root.AddChild(w.buildClassLike(node, symbol.KindTrait))
	case "function_definition":
		w.tree.Root.AddChild(w.buildFunction(node))
	case "const_declaration":
		for _, c := range w.buildTopLevelConstants(node) {
			w.tree.Root.AddChild(c)
		}
	default:
		// Anything else at this level (expression statements, inline
		// HTML, etc.) carries no declarations; a best-effort reader
		// simply skips it rather than failing.
	}
}

func (w *walker) handleNamespace(node *phptree.Node) {
	name := namespaceName(node)
	if body := namespaceBody(node); !body.IsNil() {
		prev := w.namespace
		w.namespace = name
		w.walkTopLevel(body)
		w.namespace = prev
		return
	}
	// Bracket-less form scopes to end of file.
	w.namespace = name
}

func namespaceName(node *phptree.Node) string {
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

// namespaceBody returns the braced compound body of a `namespace X { ... }`
// declaration, or nil for the bracket-less `namespace X;` form.
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

func (w *walker) handleUseDeclaration(node *phptree.Node) {
	for _, rule := range parseUseStatement(node.Text()) {
		w.tree.Imports.Add(rule)
	}
}

func (w *walker) buildTopLevelConstants(node *phptree.Node) []*symbol.Symbol {
	elements := constElements(node)
	doc := precedingDocblock(node)
	summary, _ := ParseDocblock(doc)

	var out []*symbol.Symbol
	for _, el := range elements {
		sym := symbol.New(symbol.KindConstant, w.resolver().Resolve(el.name, symbol.ImportConstant))
		sym.Description = summary
		sym.Location = locationOf(w.uri, node)
		out = append(out, sym)
	}
	return out
}

type constElement struct {
	name string
}

func constElements(node *phptree.Node) []constElement {
	var out []constElement
	for _, c := range node.NamedChildren() {
		if c.Kind() == "const_element" {
			if n := c.ChildByField("name"); !n.IsNil() {
				out = append(out, constElement{name: n.Text()})
				continue
			}
			if len(c.NamedChildren()) > 0 {
				out = append(out, constElement{name: c.NamedChildren()[0].Text()})
			}
		}
	}
	return out
}

func locationOf(uri string, node *phptree.Node) symbol.Location {
	rng := node.Range()
	return symbol.Location{URI: uri, StartLine: rng.StartLine, EndLine: rng.EndLine}
}
