// Package phptree is a read-only parse-tree façade: a uniform view over the
// PHP grammar's concrete syntax tree, produced by
// github.com/smacker/go-tree-sitter and its bundled PHP grammar. Everything
// above this package talks to *Node, never to *sitter.Node directly, so the
// rest of the engine has exactly one place that knows the grammar's node
// type strings.
package phptree

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Range is a source span expressed both as line/column (1-based, matching
// symbol.Location) and as byte offsets (matching the façade's
// text-at-offset query).
type Range struct {
	StartLine, StartCol int
	EndLine, EndCol     int
	StartByte, EndByte  uint32
}

// Node is a read-only wrapper around a tree-sitter node plus the source
// bytes needed to resolve text ranges. Node never mutates the underlying
// tree; all traversal is structural.
type Node struct {
	raw    *sitter.Node
	source []byte
}

// WrapNode builds a façade Node for a raw tree-sitter node and the document
// source it was parsed from. Returns nil (IsNil true) if raw is nil, so
// callers can chain ChildByField without a separate nil check.
func WrapNode(raw *sitter.Node, source []byte) *Node {
	if raw == nil {
		return nil
	}
	return &Node{raw: raw, source: source}
}

// IsNil reports whether n is the nil façade (no underlying node).
func (n *Node) IsNil() bool {
	return n == nil || n.raw == nil
}

// Kind is the grammar's node type tag, e.g. "class_declaration".
func (n *Node) Kind() string {
	if n.IsNil() {
		return ""
	}
	return n.raw.Type()
}

// Range returns n's source range.
func (n *Node) Range() Range {
	if n.IsNil() {
		return Range{}
	}
	sp, ep := n.raw.StartPoint(), n.raw.EndPoint()
	return Range{
		StartLine: int(sp.Row) + 1,
		StartCol:  int(sp.Column) + 1,
		EndLine:   int(ep.Row) + 1,
		EndCol:    int(ep.Column) + 1,
		StartByte: n.raw.StartByte(),
		EndByte:   n.raw.EndByte(),
	}
}

// Text returns the exact source text spanned by n.
func (n *Node) Text() string {
	if n.IsNil() {
		return ""
	}
	return string(n.source[n.raw.StartByte():n.raw.EndByte()])
}

// ChildCount returns the number of direct (named and anonymous) children.
func (n *Node) ChildCount() int {
	if n.IsNil() {
		return 0
	}
	return int(n.raw.ChildCount())
}

// Child returns the i-th direct child, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if n.IsNil() || i < 0 || i >= n.ChildCount() {
		return nil
	}
	return WrapNode(n.raw.Child(i), n.source)
}

// Children returns all direct children in order.
func (n *Node) Children() []*Node {
	count := n.ChildCount()
	out := make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.Child(i))
	}
	return out
}

// ChildByField returns the child bound to the grammar's named field (e.g.
// "name", "body"), or nil.
func (n *Node) ChildByField(field string) *Node {
	if n.IsNil() {
		return nil
	}
	return WrapNode(n.raw.ChildByFieldName(field), n.source)
}

// Parent returns n's parent node, or nil at the root.
func (n *Node) Parent() *Node {
	if n.IsNil() {
		return nil
	}
	return WrapNode(n.raw.Parent(), n.source)
}

// FirstToken and LastToken return the leftmost/rightmost leaf under n,
// supporting "enclosing-token" queries (e.g. locating the token under the
// caret for a position-based request).
func (n *Node) FirstToken() *Node {
	if n.IsNil() {
		return nil
	}
	cur := n
	for cur.ChildCount() > 0 {
		cur = cur.Child(0)
	}
	return cur
}

func (n *Node) LastToken() *Node {
	if n.IsNil() {
		return nil
	}
	cur := n
	for cur.ChildCount() > 0 {
		cur = cur.Child(cur.ChildCount() - 1)
	}
	return cur
}

// ContainsByte reports whether offset falls within n's byte range.
func (n *Node) ContainsByte(offset uint32) bool {
	if n.IsNil() {
		return false
	}
	return n.raw.StartByte() <= offset && offset < n.raw.EndByte()
}

// NamedChildren returns only the grammar's "named" children, skipping
// anonymous tokens like punctuation and keywords.
func (n *Node) NamedChildren() []*Node {
	if n.IsNil() {
		return nil
	}
	count := int(n.raw.NamedChildCount())
	out := make([]*Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, WrapNode(n.raw.NamedChild(i), n.source))
	}
	return out
}
