package roam

import "fmt"

// Debug turns inconsistent neighbour links into panics. When false they are
// skipped, which can leave a visible seam but never crashes.
var Debug = false

// TessContext binds a bank's node storage to one worker's arena. A context
// must only be used by one goroutine at a time.
type TessContext struct {
	bank *Bank
	pool *NodePool
}

// Node resolves ref within the context's bank.
func (c *TessContext) Node(ref NodeRef) *TreeNode { return c.bank.Node(ref) }

// Pool returns the arena new nodes are taken from.
func (c *TessContext) Pool() *NodePool { return c.pool }

// Split turns the leaf ref into a branch and links its children into the
// mesh, force-splitting the base neighbour first when the two do not form a
// diamond. It returns false if the arena ran out of nodes, in which case ref
// stays a leaf. Splitting NullNode or a branch is a successful no-op.
func (c *TessContext) Split(ref NodeRef) bool {
	if ref == NullNode {
		return true
	}
	tri := c.Node(ref)
	if tri.IsBranch() {
		return true
	}

	if tri.Base != NullNode && c.Node(tri.Base).Base != ref {
		c.Split(tri.Base)
	}

	lc, rc := c.pool.Allocate()
	if lc == NullNode {
		return false
	}
	tri.LeftChild, tri.RightChild = lc, rc

	left, right := c.Node(lc), c.Node(rc)
	left.Base = tri.Left
	left.Left = rc
	right.Base = tri.Right
	right.Right = lc

	c.relink(tri.Left, ref, lc)
	c.relink(tri.Right, ref, rc)

	if tri.Base == NullNode {
		// Map edge: the children's outer legs stay unlinked.
		return true
	}
	base := c.Node(tri.Base)
	if base.IsBranch() {
		c.Node(base.LeftChild).Right = rc
		c.Node(base.RightChild).Left = lc
		left.Right = base.RightChild
		right.Left = base.LeftChild
	} else {
		c.Split(tri.Base)
	}
	return true
}

// relink points whichever link of nbr referenced from at to instead.
func (c *TessContext) relink(nbr, from, to NodeRef) {
	if nbr == NullNode {
		return
	}
	n := c.Node(nbr)
	switch from {
	case n.Base:
		n.Base = to
	case n.Left:
		n.Left = to
	case n.Right:
		n.Right = to
	default:
		if Debug {
			panic(fmt.Sprintf("roam: node %s is listed as neighbour of %s but does not link back", nbr, from))
		}
	}
}
