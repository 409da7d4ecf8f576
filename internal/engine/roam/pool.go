package roam

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/roam-terrain/internal/logger"
)

// NodePool is an arena of TreeNodes handed out in pairs and recycled in
// bulk. A pool is owned by one tessellation worker at a time.
type NodePool struct {
	id    int
	nodes []TreeNode
	next  int

	exhausted bool
	refused   int

	warn *logger.Limiter
	key  string
}

func newNodePool(id int, warn *logger.Limiter, bankName string) *NodePool {
	return &NodePool{
		id:   id,
		warn: warn,
		key:  fmt.Sprintf("%s/pool-%d", bankName, id),
	}
}

// Resize replaces the backing storage with n nodes. Every reference issued
// before the call becomes invalid.
func (p *NodePool) Resize(n int) error {
	if n <= 0 || n%2 != 0 || n > MaxPoolSlots {
		return fmt.Errorf("%w: %d", ErrInvalidPoolSize, n)
	}
	p.nodes = make([]TreeNode, n)
	p.next = 0
	p.exhausted = false
	p.refused = 0
	return nil
}

// Allocate returns two freshly cleared nodes, or two NullNodes when the pool
// is full. The first refusal after a successful cycle is logged.
func (p *NodePool) Allocate() (NodeRef, NodeRef) {
	if p.next+2 > len(p.nodes) {
		p.exhausted = true
		p.refused++
		if p.warn != nil {
			p.warn.Warn(p.key, "tree node pool exhausted, detail reduced",
				zap.Int("pool", p.id),
				zap.Int("capacity", len(p.nodes)))
		}
		return NullNode, NullNode
	}
	a, b := p.next, p.next+1
	p.nodes[a] = TreeNode{}
	p.nodes[b] = TreeNode{}
	p.next += 2
	return makeRef(p.id, a), makeRef(p.id, b)
}

// Reset makes the whole capacity available again. Node contents are
// cleared lazily by Allocate.
func (p *NodePool) Reset() {
	if !p.exhausted && p.warn != nil {
		p.warn.Reset(p.key)
	}
	p.next = 0
	p.exhausted = false
	p.refused = 0
}

// RunOutOfNodes reports whether an allocation was refused since the last reset.
func (p *NodePool) RunOutOfNodes() bool { return p.exhausted }

// Refused returns the number of refused allocations since the last reset.
func (p *NodePool) Refused() int { return p.refused }

// Used returns the number of nodes handed out since the last reset.
func (p *NodePool) Used() int { return p.next }

// Capacity returns the number of nodes the pool can hold.
func (p *NodePool) Capacity() int { return len(p.nodes) }

// GrowIfExhausted multiplies the capacity by factor, clamped to ceiling,
// when the pool ran out of nodes. It reports whether the pool was resized.
func (p *NodePool) GrowIfExhausted(factor, ceiling int) (bool, error) {
	if !p.exhausted || len(p.nodes) >= ceiling {
		return false, nil
	}
	n := min(len(p.nodes)*factor, ceiling) &^ 1
	if n <= len(p.nodes) {
		return false, nil
	}
	if err := p.Resize(n); err != nil {
		return false, err
	}
	return true, nil
}
