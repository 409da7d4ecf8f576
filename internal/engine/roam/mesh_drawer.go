package roam

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/roam-terrain/internal/engine/camera"
	"github.com/Faultbox/roam-terrain/internal/engine/terrain"
	"github.com/Faultbox/roam-terrain/internal/logger"
	"github.com/Faultbox/roam-terrain/pkg/math"
)

const (
	// BorderMargin pads height updates because patches share edge samples.
	BorderMargin = 2
	// retessellateDistance is how far the camera may move before the mesh
	// is rebuilt.
	retessellateDistance = 500
)

// Options configures a MeshDrawer.
type Options struct {
	PoolSize              int // Initial nodes per bank
	MaxPoolSize           int // Growth ceiling per bank
	Workers               int // Tessellation goroutines
	VisibilityGraceFrames int // Frames before an invisible patch drops its buffers
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		PoolSize:              1 << 20,
		MaxPoolSize:           1 << 23,
		Workers:               min(runtime.NumCPU(), MaxWorkers),
		VisibilityGraceFrames: 2,
	}
}

// FrameStats summarizes one Update call.
type FrameStats struct {
	Camera camera.Type
	Frame  int64

	Visible    int // Patches inside the frustum
	Entered    int // Patches that became visible
	Exited     int // Patches that left the frustum
	Recomputed int // Dirty patches whose variance was rebuilt
	Released   int // Patches that dropped their buffers

	Retessellated bool
	Forced        bool // Retessellation was requested by the previous frame or a caller
	Tessellated   int  // Patches tessellated
	Uploaded      int  // Patches with fresh index buffers

	PoolExhausted bool
	PoolGrew      bool
	PoolUsed      int
	PoolCapacity  int
}

// meshState is the per camera pass tessellation of the whole map.
type meshState struct {
	typ  camera.Type
	bank *Bank

	numX, numZ int
	patches    []Patch
	border     []*Patch
	wasVisible []bool
	visible    []int

	frame          int64
	lastCamPos     math.Vec3
	lastViewRadius float32
	force          bool
}

// MeshDrawer keeps one adaptive mesh per camera pass over a heightmap and
// retessellates it as the camera moves or the terrain changes.
type MeshDrawer struct {
	hm   *terrain.Heightmap
	opts Options
	numX int
	numZ int

	states [camera.NumTypes]*meshState

	mu      sync.Mutex
	pending []terrain.Rect

	log *zap.Logger
}

// NewMeshDrawer builds the patch grids for hm and subscribes to its height
// updates.
func NewMeshDrawer(hm *terrain.Heightmap, opts Options, log *zap.Logger) (*MeshDrawer, error) {
	if hm.Width()%PatchSize != 0 || hm.Depth()%PatchSize != 0 {
		return nil, fmt.Errorf("%w: %dx%d squares, patch size %d", ErrInvalidMapSize, hm.Width(), hm.Depth(), PatchSize)
	}
	if opts.Workers < 1 || opts.Workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, opts.Workers)
	}
	if opts.PoolSize <= 0 || opts.PoolSize%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPoolSize, opts.PoolSize)
	}
	opts.MaxPoolSize = max(opts.MaxPoolSize, opts.PoolSize)
	opts.VisibilityGraceFrames = max(opts.VisibilityGraceFrames, 0)

	log = logger.OrNop(log)
	d := &MeshDrawer{
		hm:   hm,
		opts: opts,
		numX: hm.Width() / PatchSize,
		numZ: hm.Depth() / PatchSize,
		log:  log,
	}

	for t := camera.Type(0); t < camera.NumTypes; t++ {
		ms, err := d.newMeshState(t)
		if err != nil {
			return nil, err
		}
		d.states[t] = ms
	}

	hm.Subscribe(d)
	log.Info("mesh drawer ready",
		zap.Int("patches_x", d.numX),
		zap.Int("patches_z", d.numZ),
		zap.Int("workers", opts.Workers),
		zap.Int("pool_size", opts.PoolSize))
	return d, nil
}

func (d *MeshDrawer) newMeshState(t camera.Type) (*meshState, error) {
	n := d.numX * d.numZ
	bank, err := NewBank(t, n, d.opts.Workers, d.opts.PoolSize, d.opts.MaxPoolSize, d.log)
	if err != nil {
		return nil, err
	}
	ms := &meshState{
		typ:        t,
		bank:       bank,
		numX:       d.numX,
		numZ:       d.numZ,
		patches:    make([]Patch, n),
		wasVisible: make([]bool, n),
		force:      true,
	}
	for z := 0; z < d.numZ; z++ {
		for x := 0; x < d.numX; x++ {
			p := &ms.patches[z*d.numX+x]
			p.Init(bank, d.hm, x, z)
			p.ComputeVariance()
		}
	}
	ms.border = borderPatches(ms.patches, d.numX, d.numZ)
	return ms, nil
}

// borderPatches lists the patches on the map edge: corners first, then the
// x edges, then the z edges.
func borderPatches(patches []Patch, numX, numZ int) []*Patch {
	at := func(x, z int) *Patch { return &patches[z*numX+x] }

	out := []*Patch{at(0, 0)}
	if numX > 1 {
		out = append(out, at(numX-1, 0))
	}
	if numZ > 1 {
		out = append(out, at(0, numZ-1))
	}
	if numX > 1 && numZ > 1 {
		out = append(out, at(numX-1, numZ-1))
	}
	for z := 1; z < numZ-1; z++ {
		out = append(out, at(0, z))
		if numX > 1 {
			out = append(out, at(numX-1, z))
		}
	}
	for x := 1; x < numX-1; x++ {
		out = append(out, at(x, 0))
		if numZ > 1 {
			out = append(out, at(x, numZ-1))
		}
	}
	return out
}

// HeightRegionChanged queues r for the next Update. It is safe to call from
// any goroutine.
func (d *MeshDrawer) HeightRegionChanged(r terrain.Rect) {
	d.mu.Lock()
	d.pending = append(d.pending, r)
	d.mu.Unlock()
}

// applyHeightUpdates copies queued height changes into the patch snapshots
// of every camera pass.
func (d *MeshDrawer) applyHeightUpdates() int {
	d.mu.Lock()
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	for _, r := range pending {
		for _, ms := range d.states {
			d.updatePatches(ms, r)
		}
	}
	return len(pending)
}

func (d *MeshDrawer) updatePatches(ms *meshState, r terrain.Rect) {
	r = r.Grow(BorderMargin)
	xs := max(floorDiv(r.X1, PatchSize), 0)
	xe := min(ceilDiv(r.X2, PatchSize), ms.numX)
	zs := max(floorDiv(r.Z1, PatchSize), 0)
	ze := min(ceilDiv(r.Z2, PatchSize), ms.numZ)

	for z := zs; z < ze; z++ {
		for x := xs; x < xe; x++ {
			p := &ms.patches[z*ms.numX+x]
			ox, oz := x*PatchSize, z*PatchSize
			p.UpdateHeightMap(terrain.Rect{
				X1: max(r.X1-ox, 0),
				Z1: max(r.Z1-oz, 0),
				X2: min(r.X2-ox, PatchSize),
				Z2: min(r.Z2-oz, PatchSize),
			})
		}
	}
}

// Update refreshes visibility for cam and retessellates its mesh when
// patches entered the view, heights changed, the view radius changed, the
// camera moved far enough, or a retessellation was forced.
func (d *MeshDrawer) Update(cam Camera) FrameStats {
	applied := d.applyHeightUpdates()

	t := cam.Type()
	ms := d.states[t]
	ms.frame++
	stats := FrameStats{Camera: t, Frame: ms.frame, Forced: ms.force}

	d.updateVisibility(ms, cam)

	retess := ms.force
	visible := ms.visible[:0]
	for i := range ms.patches {
		p := &ms.patches[i]
		if p.IsVisible(t, ms.frame, 0) {
			stats.Visible++
			visible = append(visible, i)
			if !ms.wasVisible[i] {
				ms.wasVisible[i] = true
				stats.Entered++
				retess = true
			}
			if p.IsDirty() {
				p.ComputeVariance()
				stats.Recomputed++
				retess = true
			}
			continue
		}

		if ms.wasVisible[i] {
			ms.wasVisible[i] = false
			stats.Exited++
		}
		if !p.IsVisible(t, ms.frame, d.opts.VisibilityGraceFrames) && p.ReleaseBuffers() {
			stats.Released++
		}
	}
	ms.visible = visible

	pos := cam.Position()
	if pos.SqDistance(ms.lastCamPos) > retessellateDistance*retessellateDistance {
		retess = true
	}
	if cam.ViewRadius() != ms.lastViewRadius {
		retess = true
	}

	if retess {
		stats.Retessellated = true
		stats.PoolGrew = d.reset(ms)
		stats.Tessellated, stats.PoolExhausted = d.tessellateVisible(ms, cam, visible)
		ms.force = stats.PoolExhausted

		d.generateBuffers(ms, visible)
		stats.Uploaded = len(visible)

		d.log.Debug("retessellated",
			zap.Stringer("camera", t),
			zap.Int64("frame", ms.frame),
			zap.Int("visible", stats.Visible),
			zap.Int("entered", stats.Entered),
			zap.Int("exited", stats.Exited),
			zap.Int("height_updates", applied),
			zap.Int("pool_used", ms.bank.Used()),
			zap.Bool("exhausted", stats.PoolExhausted))
	}

	stats.PoolUsed = ms.bank.Used()
	stats.PoolCapacity = ms.bank.Capacity()
	ms.lastCamPos = pos
	ms.lastViewRadius = cam.ViewRadius()
	return stats
}

// reset recycles the bank, resets every patch and links neighbouring roots
// across patch edges. Map edges stay linked to NullNode.
func (d *MeshDrawer) reset(ms *meshState) bool {
	grew := ms.bank.ResetAll()

	for i := range ms.patches {
		ms.patches[i].Reset()
	}
	for z := 0; z < ms.numZ; z++ {
		for x := 0; x < ms.numX; x++ {
			i := z*ms.numX + x
			p := &ms.patches[i]
			bl, br := ms.bank.Node(p.baseLeft), ms.bank.Node(p.baseRight)
			if x > 0 {
				bl.Left = ms.patches[i-1].baseRight
			}
			if x < ms.numX-1 {
				br.Left = ms.patches[i+1].baseLeft
			}
			if z > 0 {
				bl.Right = ms.patches[i-ms.numX].baseRight
			}
			if z < ms.numZ-1 {
				br.Right = ms.patches[i+ms.numX].baseLeft
			}
		}
	}
	return grew
}

// ForceRetessellate rebuilds t's mesh on its next Update.
func (d *MeshDrawer) ForceRetessellate(t camera.Type) {
	d.states[t].force = true
}

// Patches returns every patch of t's grid in row-major order.
func (d *MeshDrawer) Patches(t camera.Type) []Patch { return d.states[t].patches }

// VisiblePatches returns the patches t saw in its last Update.
func (d *MeshDrawer) VisiblePatches(t camera.Type) []*Patch {
	ms := d.states[t]
	out := make([]*Patch, 0, len(ms.visible))
	for _, i := range ms.visible {
		out = append(out, &ms.patches[i])
	}
	return out
}

// BorderPatches returns the patches of t's grid that lie on the map edge
// and carry skirts.
func (d *MeshDrawer) BorderPatches(t camera.Type) []*Patch { return d.states[t].border }

// IsVisible reports whether camera t saw the patch at p's grid position in
// its last Update. p may come from either camera's grid.
func (d *MeshDrawer) IsVisible(p *Patch, t camera.Type) bool {
	ms := d.states[t]
	return ms.patches[p.index].IsVisible(t, ms.frame, 0)
}

// Bank returns the node storage of camera t.
func (d *MeshDrawer) Bank(t camera.Type) *Bank { return d.states[t].bank }

// GridSize returns the number of patches along x and z.
func (d *MeshDrawer) GridSize() (int, int) { return d.numX, d.numZ }

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
