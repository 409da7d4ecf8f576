package terrain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
)

// ErrInvalidSize is returned for heightmaps without any squares.
var ErrInvalidSize = errors.New("invalid heightmap size")

// Heightmap is a grid of (width+1) x (depth+1) corner heights.
//
// Reads and writes are safe for concurrent use. Writers go through Update so
// that subscribed listeners learn which region changed.
type Heightmap struct {
	width, depth int

	mu         sync.RWMutex
	heights    []float32
	minHeight  float32
	maxHeight  float32
	generation uint64

	lmu       sync.Mutex
	listeners []RegionListener

	log *zap.Logger
}

// NewHeightmap creates a flat heightmap of width x depth squares.
func NewHeightmap(width, depth int, log *zap.Logger) (*Heightmap, error) {
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, depth)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Heightmap{
		width:   width,
		depth:   depth,
		heights: make([]float32, (width+1)*(depth+1)),
		log:     log,
	}, nil
}

// Width returns the map width in squares.
func (h *Heightmap) Width() int { return h.width }

// Depth returns the map depth in squares.
func (h *Heightmap) Depth() int { return h.depth }

// Stride returns the number of corner samples per row.
func (h *Heightmap) Stride() int { return h.width + 1 }

// Height returns the corner height at (x, z). Coordinates are clamped to the map.
func (h *Heightmap) Height(x, z int) float32 {
	x = clampi(x, 0, h.width)
	z = clampi(z, 0, h.depth)

	h.mu.RLock()
	v := h.heights[z*(h.width+1)+x]
	h.mu.RUnlock()
	return v
}

// ReadRegion calls fn for every sample of r under a single read lock.
// fn must not call back into the heightmap.
func (h *Heightmap) ReadRegion(r Rect, fn func(x, z int, height float32)) {
	r = r.Clamp(h.width, h.depth)
	stride := h.width + 1

	h.mu.RLock()
	defer h.mu.RUnlock()
	for z := r.Z1; z <= r.Z2; z++ {
		row := h.heights[z*stride:]
		for x := r.X1; x <= r.X2; x++ {
			fn(x, z, row[x])
		}
	}
}

// MinMaxHeight returns the lowest and highest sample.
func (h *Heightmap) MinMaxHeight() (float32, float32) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.minHeight, h.maxHeight
}

// Generation increases by one with every Update.
func (h *Heightmap) Generation() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.generation
}

// Subscribe registers l for region change notifications.
func (h *Heightmap) Subscribe(l RegionListener) {
	h.lmu.Lock()
	h.listeners = append(h.listeners, l)
	h.lmu.Unlock()
}

// Update rewrites every sample in r with fn(x, z, old) and notifies the
// listeners once the write lock is released.
func (h *Heightmap) Update(r Rect, fn func(x, z int, old float32) float32) {
	r = r.Clamp(h.width, h.depth)
	if r.Empty() {
		return
	}
	stride := h.width + 1

	h.mu.Lock()
	rescan := false
	for z := r.Z1; z <= r.Z2; z++ {
		for x := r.X1; x <= r.X2; x++ {
			i := z*stride + x
			old := h.heights[i]
			v := fn(x, z, old)
			h.heights[i] = v

			if old == h.minHeight || old == h.maxHeight {
				rescan = true
			}
			h.minHeight = math32.Min(h.minHeight, v)
			h.maxHeight = math32.Max(h.maxHeight, v)
		}
	}
	if rescan {
		h.recomputeMinMax()
	}
	h.generation++
	gen := h.generation
	h.mu.Unlock()

	h.log.Debug("height region changed",
		zap.Int("x1", r.X1), zap.Int("z1", r.Z1),
		zap.Int("x2", r.X2), zap.Int("z2", r.Z2),
		zap.Uint64("generation", gen))

	h.lmu.Lock()
	listeners := append([]RegionListener(nil), h.listeners...)
	h.lmu.Unlock()
	for _, l := range listeners {
		l.HeightRegionChanged(r)
	}
}

// Fill sets every sample from fn without notifying listeners. It is meant
// for initial map loading, before any listener subscribed.
func (h *Heightmap) Fill(fn func(x, z int) float32) {
	stride := h.width + 1

	h.mu.Lock()
	for z := 0; z <= h.depth; z++ {
		for x := 0; x <= h.width; x++ {
			h.heights[z*stride+x] = fn(x, z)
		}
	}
	h.recomputeMinMax()
	h.generation++
	h.mu.Unlock()
}

// recomputeMinMax requires h.mu to be held for writing.
func (h *Heightmap) recomputeMinMax() {
	lo, hi := h.heights[0], h.heights[0]
	for _, v := range h.heights[1:] {
		lo = math32.Min(lo, v)
		hi = math32.Max(hi, v)
	}
	h.minHeight, h.maxHeight = lo, hi
}
