package phptree

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

// Tree is a parsed document: the tree-sitter concrete syntax tree plus the
// exact source bytes it was parsed from (façade Nodes need both to resolve
// text ranges).
type Tree struct {
	raw    *sitter.Tree
	source []byte
}

// Parse parses source as PHP and returns the façade tree. The parser is
// recreated per call; callers doing many parses in a loop (workspace
// indexing) may prefer ParseWithParser to reuse one.
func Parse(ctx context.Context, source []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(php.GetLanguage())
	return ParseWithParser(ctx, parser, source)
}

// ParseWithParser parses source using an already-configured parser,
// letting a caller amortize parser setup across many documents.
func ParseWithParser(ctx context.Context, parser *sitter.Parser, source []byte) (*Tree, error) {
	raw, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	return &Tree{raw: raw, source: source}, nil
}

// NewParser returns a tree-sitter parser configured for the PHP grammar,
// for callers that want to reuse one across many Parse calls.
func NewParser() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(php.GetLanguage())
	return parser
}

// Root returns the façade root node (program).
func (t *Tree) Root() *Node {
	if t == nil || t.raw == nil {
		return nil
	}
	return WrapNode(t.raw.RootNode(), t.source)
}

// Source returns the exact bytes the tree was parsed from.
func (t *Tree) Source() []byte {
	if t == nil {
		return nil
	}
	return t.source
}

// NodeAt returns the smallest named node containing offset, walking down
// from the root. Returns nil if offset is out of range.
func (t *Tree) NodeAt(offset uint32) *Node {
	root := t.Root()
	if root.IsNil() || !root.ContainsByte(offset) {
		return nil
	}
	cur := root
	for {
		advanced := false
		for _, child := range cur.NamedChildren() {
			if child.ContainsByte(offset) {
				cur = child
				advanced = true
				break
			}
		}
		if !advanced {
			return cur
		}
	}
}
