// Package roam implements the adaptive terrain tessellator: per patch binary
// triangle trees split against the camera, backed by arena node pools.
package roam

import "fmt"

// NodeRef addresses a TreeNode inside a Bank. The high 8 bits select the
// pool, the low 24 bits the slot within it.
type NodeRef uint32

// NullNode is the shared dummy node, meaning "no neighbour".
const NullNode NodeRef = 0

const (
	slotBits = 24
	slotMask = 1<<slotBits - 1

	// MaxPoolSlots is the largest capacity a single pool can address.
	MaxPoolSlots = 1 << slotBits
	// MaxWorkers is the number of worker pools a bank can address.
	MaxWorkers = 1<<(32-slotBits) - 1
)

func makeRef(pool, slot int) NodeRef {
	return NodeRef(uint32(pool)<<slotBits | uint32(slot)&slotMask)
}

// Pool returns the id of the pool holding the node.
func (r NodeRef) Pool() int { return int(r >> slotBits) }

// Slot returns the index of the node inside its pool.
func (r NodeRef) Slot() int { return int(r & slotMask) }

func (r NodeRef) String() string {
	if r == NullNode {
		return "null"
	}
	return fmt.Sprintf("%d:%d", r.Pool(), r.Slot())
}

// TreeNode is one triangle of a binary triangle tree. Children are either
// both set or both NullNode. Neighbour links are weak lookups into the same
// bank and never own the node they point at.
type TreeNode struct {
	LeftChild  NodeRef
	RightChild NodeRef

	Base  NodeRef // Across the hypotenuse
	Left  NodeRef // Across the left leg
	Right NodeRef // Across the right leg
}

// IsLeaf reports whether the node has no children.
func (n *TreeNode) IsLeaf() bool { return n.LeftChild == NullNode }

// IsBranch reports whether the node has been split.
func (n *TreeNode) IsBranch() bool { return n.LeftChild != NullNode }
