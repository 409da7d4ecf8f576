// Package bench flies a camera over a generated terrain and measures the
// tessellator frame by frame.
package bench

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/Faultbox/roam-terrain/internal/config"
	"github.com/Faultbox/roam-terrain/internal/engine/camera"
	"github.com/Faultbox/roam-terrain/internal/engine/roam"
	"github.com/Faultbox/roam-terrain/internal/engine/terrain"
	"github.com/Faultbox/roam-terrain/internal/logger"
	"github.com/Faultbox/roam-terrain/pkg/math"
)

const (
	orbitStep = 2 * math32.Pi / 360 // Yaw per frame

	minCraterRadius = 4
	maxCraterRadius = 16
	minCraterDepth  = 20
	maxCraterDepth  = 80
)

// lightDir is the sun direction for the shadow pass.
var lightDir = math.Vec3{X: 0.4, Y: -1, Z: 0.25}

// Bench owns the terrain, the mesh drawer and the camera of one run.
type Bench struct {
	cfg    *config.Config
	hm     *terrain.Heightmap
	drawer *roam.MeshDrawer
	orbit  *camera.OrbitCamera
	rng    *rand.Rand
	log    *zap.Logger
}

// New generates the terrain described by cfg and prepares the mesh drawer.
func New(cfg *config.Config, log *zap.Logger) (*Bench, error) {
	log = logger.OrNop(log)
	roam.Debug = cfg.Tessellation.Debug

	w := cfg.Terrain.PatchesX * roam.PatchSize
	d := cfg.Terrain.PatchesZ * roam.PatchSize
	hm, err := terrain.NewHeightmap(w, d, log.Named("terrain"))
	if err != nil {
		return nil, fmt.Errorf("create heightmap: %w", err)
	}

	start := time.Now()
	terrain.GeneratePerlin(hm, terrain.NoiseParams{
		Seed:       cfg.Terrain.Seed,
		Amplitude:  cfg.Terrain.Amplitude,
		WaterLevel: cfg.Terrain.WaterLevel,
	})
	lo, hi := hm.MinMaxHeight()
	log.Info("terrain generated",
		zap.Int("width", w),
		zap.Int("depth", d),
		zap.Float32("min_height", lo),
		zap.Float32("max_height", hi),
		zap.Duration("took", time.Since(start)))

	drawer, err := roam.NewMeshDrawer(hm, roam.Options{
		PoolSize:              cfg.Tessellation.PoolSize,
		MaxPoolSize:           cfg.Tessellation.MaxPoolSize,
		Workers:               cfg.Tessellation.Workers,
		VisibilityGraceFrames: cfg.Tessellation.VisibilityGraceFrames,
	}, log.Named("roam"))
	if err != nil {
		return nil, fmt.Errorf("create mesh drawer: %w", err)
	}

	orbit := camera.NewOrbitCamera()
	orbit.Center = math.Vec3{
		X: float32(w * terrain.SquareSize / 2),
		Y: (lo + hi) / 2,
		Z: float32(d * terrain.SquareSize / 2),
	}
	orbit.Distance = cfg.Bench.OrbitDistance

	return &Bench{
		cfg:    cfg,
		hm:     hm,
		drawer: drawer,
		orbit:  orbit,
		rng:    rand.New(rand.NewSource(cfg.Terrain.Seed)),
		log:    log,
	}, nil
}

// Drawer returns the mesh drawer under test.
func (b *Bench) Drawer() *roam.MeshDrawer { return b.drawer }

// Run renders cfg.Bench.Frames frames, or until ctx is cancelled.
func (b *Bench) Run(ctx context.Context) (*Report, error) {
	rec := newRecorder(b.cfg.Bench.Frames)
	radius := float32(b.cfg.Tessellation.ViewRadius)

	for frame := 0; frame < b.cfg.Bench.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return rec.report(), err
		}

		b.orbit.Orbit(orbitStep, 0)
		for i := 0; i < b.cfg.Bench.EditsPerFrame; i++ {
			b.randomCrater()
		}

		start := time.Now()
		stats := b.drawer.Update(b.orbit.View(radius))
		rec.add(stats, time.Since(start), b.triangles(roam.CameraNormal))

		if b.cfg.Bench.Shadow {
			extent := float32(max(b.hm.Width(), b.hm.Depth())*terrain.SquareSize) / 2
			start = time.Now()
			stats = b.drawer.Update(camera.NewShadowView(lightDir, b.orbit.Center, extent, radius))
			rec.add(stats, time.Since(start), b.triangles(roam.CameraShadow))
		}
	}
	return rec.report(), nil
}

func (b *Bench) randomCrater() {
	x := b.rng.Intn(b.hm.Width() + 1)
	z := b.rng.Intn(b.hm.Depth() + 1)
	r := minCraterRadius + b.rng.Intn(maxCraterRadius-minCraterRadius+1)
	depth := minCraterDepth + b.rng.Float32()*(maxCraterDepth-minCraterDepth)
	terrain.Crater(b.hm, x, z, r, depth)
}

func (b *Bench) triangles(t camera.Type) int {
	n := 0
	for _, p := range b.drawer.VisiblePatches(t) {
		n += len(p.Indices()) / 3
	}
	return n
}

// Summary describes a series of per-frame samples.
type Summary struct {
	Mean   float64
	StdDev float64
	P50    float64
	P95    float64
	Max    float64
}

func summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = 0
	}
	return Summary{
		Mean:   mean,
		StdDev: std,
		P50:    stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
}

// Report is the outcome of a run, per camera pass.
type Report struct {
	Passes map[camera.Type]*PassReport
}

// PassReport aggregates the frames of one camera pass.
type PassReport struct {
	Frames          int
	Retessellations int
	Exhaustions     int
	PoolGrowths     int
	PeakPoolUsed    int

	FrameMillis Summary
	Visible     Summary
	Triangles   Summary
}

// Log writes the report through log.
func (r *Report) Log(log *zap.Logger) {
	for t, p := range r.Passes {
		log.Info("bench pass finished",
			zap.Stringer("camera", t),
			zap.Int("frames", p.Frames),
			zap.Int("retessellations", p.Retessellations),
			zap.Int("exhaustions", p.Exhaustions),
			zap.Int("pool_growths", p.PoolGrowths),
			zap.Int("peak_pool_used", p.PeakPoolUsed),
			zap.Float64("frame_ms_mean", p.FrameMillis.Mean),
			zap.Float64("frame_ms_p95", p.FrameMillis.P95),
			zap.Float64("frame_ms_max", p.FrameMillis.Max),
			zap.Float64("visible_mean", p.Visible.Mean),
			zap.Float64("triangles_mean", p.Triangles.Mean))
	}
}

type series struct {
	PassReport
	millis, visible, triangles []float64
}

type recorder struct {
	capacity int
	passes   map[camera.Type]*series
}

func newRecorder(frames int) *recorder {
	return &recorder{capacity: frames, passes: map[camera.Type]*series{}}
}

func (r *recorder) add(stats roam.FrameStats, took time.Duration, triangles int) {
	s := r.passes[stats.Camera]
	if s == nil {
		s = &series{
			millis:    make([]float64, 0, r.capacity),
			visible:   make([]float64, 0, r.capacity),
			triangles: make([]float64, 0, r.capacity),
		}
		r.passes[stats.Camera] = s
	}

	s.Frames++
	if stats.Retessellated {
		s.Retessellations++
	}
	if stats.PoolExhausted {
		s.Exhaustions++
	}
	if stats.PoolGrew {
		s.PoolGrowths++
	}
	s.PeakPoolUsed = max(s.PeakPoolUsed, stats.PoolUsed)

	s.millis = append(s.millis, float64(took.Microseconds())/1000)
	s.visible = append(s.visible, float64(stats.Visible))
	s.triangles = append(s.triangles, float64(triangles))
}

func (r *recorder) report() *Report {
	rep := &Report{Passes: map[camera.Type]*PassReport{}}
	for t, s := range r.passes {
		p := s.PassReport
		p.FrameMillis = summarize(s.millis)
		p.Visible = summarize(s.visible)
		p.Triangles = summarize(s.triangles)
		rep.Passes[t] = &p
	}
	return rep
}
