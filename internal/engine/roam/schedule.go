package roam

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/roam-terrain/pkg/math"
)

// scheduleStride is the side of the sub-block pattern used for parallel
// tessellation. A split started in one patch reaches at most two patches
// away, so patches with equal (x mod 5, z mod 5) never touch the same nodes.
const scheduleStride = 5

var errPoolExhausted = errors.New("tree node pool exhausted")

// parallel reports whether ms is tessellated with more than one worker.
func (d *MeshDrawer) parallel(ms *meshState) bool {
	return d.opts.Workers > 1 && ms.numX >= scheduleStride && ms.numZ >= scheduleStride
}

// tessellateVisible tessellates every patch in visible. It stops early when
// a worker runs out of nodes and returns the number of patches processed.
func (d *MeshDrawer) tessellateVisible(ms *meshState, cam Camera, visible []int) (int, bool) {
	lo, hi := d.hm.MinMaxHeight()
	job := tessJob{
		pos:       cam.Position(),
		radius:    cam.ViewRadius(),
		midHeight: (lo + hi) / 2,
	}

	if !d.parallel(ms) {
		ctx := ms.bank.Context(0)
		for n, i := range visible {
			if !ms.patches[i].Tessellate(ctx, job.pos, job.radius, job.midHeight) {
				return n + 1, true
			}
		}
		return len(visible), false
	}

	var blocks [scheduleStride * scheduleStride][]int
	for _, i := range visible {
		p := &ms.patches[i]
		b := p.gridX%scheduleStride + (p.gridZ%scheduleStride)*scheduleStride
		blocks[b] = append(blocks[b], i)
	}

	var done atomic.Int64
	for _, group := range blocks {
		if len(group) == 0 {
			continue
		}
		workers := min(d.opts.Workers, len(group))
		g, gctx := errgroup.WithContext(context.Background())
		for w := 0; w < workers; w++ {
			w := w
			g.Go(func() error {
				ctx := ms.bank.Context(w)
				for j := w; j < len(group); j += workers {
					if gctx.Err() != nil {
						return nil
					}
					done.Add(1)
					if !ms.patches[group[j]].Tessellate(ctx, job.pos, job.radius, job.midHeight) {
						return errPoolExhausted
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return int(done.Load()), true
		}
	}
	return int(done.Load()), false
}

type tessJob struct {
	pos       math.Vec3
	radius    float32
	midHeight float32
}

// generateBuffers rebuilds the index and skirt buffers of the visible
// patches. Trees are read-only at this point.
func (d *MeshDrawer) generateBuffers(ms *meshState, visible []int) {
	var g errgroup.Group
	g.SetLimit(d.opts.Workers)
	for _, i := range visible {
		p := &ms.patches[i]
		g.Go(func() error {
			p.GenerateIndices()
			p.GenerateBorderVertices()
			return nil
		})
	}
	_ = g.Wait()
}
