package roam

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/roam-terrain/internal/engine/camera"
	"github.com/Faultbox/roam-terrain/internal/logger"
)

// poolGrowthFactor multiplies the bank size after an exhausted cycle.
const poolGrowthFactor = 2

// Bank owns the node storage of one camera pass: a root table holding the
// dummy node and every patch's two root triangles, plus one arena per
// tessellation worker.
type Bank struct {
	typ camera.Type

	// pools[0] is the root table, pools[1:] are worker arenas.
	pools    []*NodePool
	contexts []*TessContext

	total   int
	ceiling int

	log *zap.Logger
}

// NewBank creates the storage for numPatches patches and the given number
// of workers. total nodes are shared among the workers and may double up to
// ceiling when the pools run out.
func NewBank(typ camera.Type, numPatches, workers, total, ceiling int, log *zap.Logger) (*Bank, error) {
	if workers < 1 || workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d (allowed 1..%d)", ErrInvalidWorkers, workers, MaxWorkers)
	}
	if total <= 0 || total%2 != 0 {
		return nil, fmt.Errorf("%w: total %d must be even and non-zero", ErrInvalidPoolSize, total)
	}
	if ceiling < total {
		ceiling = total
	}
	if poolShare(ceiling, workers) > MaxPoolSlots {
		return nil, fmt.Errorf("%w: ceiling %d exceeds %d nodes per worker", ErrInvalidPoolSize, ceiling, MaxPoolSlots)
	}
	if 1+2*numPatches > MaxPoolSlots {
		return nil, fmt.Errorf("%w: %d patches", ErrInvalidMapSize, numPatches)
	}

	log = logger.OrNop(log).With(zap.Stringer("camera", typ))
	warn := logger.NewLimiter(log)

	b := &Bank{
		typ:     typ,
		pools:   make([]*NodePool, workers+1),
		total:   total,
		ceiling: ceiling,
		log:     log,
	}

	roots := newNodePool(0, nil, typ.String())
	roots.nodes = make([]TreeNode, 1+2*numPatches)
	roots.next = len(roots.nodes)
	b.pools[0] = roots

	for w := 1; w <= workers; w++ {
		b.pools[w] = newNodePool(w, warn, typ.String())
	}
	if err := b.initPools(total); err != nil {
		return nil, err
	}

	b.contexts = make([]*TessContext, workers)
	for w := range b.contexts {
		b.contexts[w] = &TessContext{bank: b, pool: b.pools[w+1]}
	}
	return b, nil
}

// poolShare returns the per-worker capacity for a bank of total nodes.
// Each worker gets at least a third of the total.
func poolShare(total, workers int) int {
	return max(total/workers, total/3, 2) &^ 1
}

func (b *Bank) initPools(total int) error {
	share := poolShare(total, b.Workers())
	for _, p := range b.pools[1:] {
		if err := p.Resize(share); err != nil {
			return err
		}
	}
	b.total = total
	return nil
}

// ResetAll recycles every worker arena. If any arena ran out of nodes in
// the last cycle and the bank is below its ceiling, the bank size is
// multiplied by poolGrowthFactor instead. It reports whether the bank grew.
//
// Every worker-allocated reference is invalid afterwards; patch roots must
// be reset before the next tessellation.
func (b *Bank) ResetAll() bool {
	exhausted := false
	for _, p := range b.pools[1:] {
		if p.RunOutOfNodes() {
			exhausted = true
			break
		}
	}

	if exhausted && b.total < b.ceiling {
		next := min(b.total*poolGrowthFactor, b.ceiling)
		err := b.initPools(next)
		if err == nil {
			b.log.Info("tree node pools grown",
				zap.Int("total", next),
				zap.Int("per_worker", poolShare(next, b.Workers())))
			return true
		}
		b.log.Error("growing tree node pools failed", zap.Error(err))
	}

	for _, p := range b.pools[1:] {
		p.Reset()
	}
	return false
}

// Camera returns the camera pass this bank serves.
func (b *Bank) Camera() camera.Type { return b.typ }

// Workers returns the number of worker arenas.
func (b *Bank) Workers() int { return len(b.pools) - 1 }

// Context returns the tessellation context bound to worker w's arena.
func (b *Bank) Context(w int) *TessContext { return b.contexts[w] }

// Pool returns worker w's arena.
func (b *Bank) Pool(w int) *NodePool { return b.pools[w+1] }

// Node resolves ref. NullNode resolves to the dummy, which is never written.
func (b *Bank) Node(ref NodeRef) *TreeNode {
	return &b.pools[ref.Pool()].nodes[ref.Slot()]
}

// RootLeft returns the reference of patch i's base-left root.
func (b *Bank) RootLeft(i int) NodeRef { return makeRef(0, 1+2*i) }

// RootRight returns the reference of patch i's base-right root.
func (b *Bank) RootRight(i int) NodeRef { return makeRef(0, 2+2*i) }

// Total returns the configured bank size in nodes.
func (b *Bank) Total() int { return b.total }

// Used returns the number of worker nodes handed out since the last reset.
func (b *Bank) Used() int {
	n := 0
	for _, p := range b.pools[1:] {
		n += p.Used()
	}
	return n
}

// Capacity returns the combined capacity of the worker arenas.
func (b *Bank) Capacity() int {
	n := 0
	for _, p := range b.pools[1:] {
		n += p.Capacity()
	}
	return n
}

// Exhausted reports whether any worker arena refused an allocation since
// the last reset.
func (b *Bank) Exhausted() bool {
	for _, p := range b.pools[1:] {
		if p.RunOutOfNodes() {
			return true
		}
	}
	return false
}
