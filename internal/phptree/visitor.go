package phptree

// Visitor drives a depth-first walk over a façade tree. Traversal is
// strictly structural: Walk never inspects node kinds itself, so all
// PHP-specific behavior (namespace scoping, value stacks for symbol
// assembly, and so on) lives in the visitor implementation, not here.
//
// Implementations typically only need Preorder and Postorder; Inorder and
// ShouldDescend default to no-ops/true via BaseVisitor, which callers can
// embed.
type Visitor interface {
	// Preorder is called when a node is first entered, before any of its
	// children are visited.
	Preorder(n *Node)

	// Inorder is called between visiting child childIndex-1 and child
	// childIndex of n (childIndex ranges from 1 to n.ChildCount()-1). Most
	// visitors don't need this; it exists for constructs where meaning
	// depends on position between children (e.g. a binary expression's
	// operator).
	Inorder(n *Node, childIndex int)

	// Postorder is called after all of a node's children have been
	// visited, including when ShouldDescend returned false for it.
	Postorder(n *Node)

	// ShouldDescend is consulted after Preorder; returning false skips the
	// node's children entirely (Postorder still fires).
	ShouldDescend(n *Node) bool
}

// BaseVisitor gives Visitor implementations a descend-everything,
// no-op-inorder default to embed.
type BaseVisitor struct{}

func (BaseVisitor) Inorder(*Node, int)       {}
func (BaseVisitor) ShouldDescend(*Node) bool { return true }

// Walk performs the depth-first traversal described by Visitor, starting
// at n.
func Walk(n *Node, v Visitor) {
	if n.IsNil() {
		return
	}
	v.Preorder(n)
	if v.ShouldDescend(n) {
		count := n.ChildCount()
		for i := 0; i < count; i++ {
			if i > 0 {
				v.Inorder(n, i)
			}
			Walk(n.Child(i), v)
		}
	}
	v.Postorder(n)
}
