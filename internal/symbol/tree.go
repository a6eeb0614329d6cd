package symbol

// Tree is a per-document symbol tree: a rooted ordered tree whose root is
// synthetic (never itself returned to a caller) and whose direct children
// are the document's top-level functions/classes/interfaces/traits/
// constants, each named by its FQN, whether or not it sits inside a
// namespace block. Namespace declarations produce no symbol of their own.
type Tree struct {
	URI     string
	Root    *Symbol
	Imports *ImportTable
}

// NewTree creates an empty tree for the given document URI.
func NewTree(uri string) *Tree {
	return &Tree{
		URI:     uri,
		Root:    &Symbol{Kind: KindNamespace, Name: ""},
		Imports: NewImportTable(),
	}
}

// TopLevel returns the tree's direct children: the symbols that the
// symbol store indexes globally by FQN.
func (t *Tree) TopLevel() []*Symbol {
	return t.Root.Children
}

// Walk visits every symbol in the tree, depth-first, root excluded.
func (t *Tree) Walk(visit func(*Symbol)) {
	var walk func(*Symbol)
	walk = func(s *Symbol) {
		for _, c := range s.Children {
			visit(c)
			walk(c)
		}
	}
	walk(t.Root)
}
