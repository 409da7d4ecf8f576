// Package config handles terrain engine configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrInvalid is wrapped by every validation error returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all engine settings.
type Config struct {
	Terrain      TerrainConfig      `yaml:"terrain"`
	Tessellation TessellationConfig `yaml:"tessellation"`
	Bench        BenchConfig        `yaml:"bench"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// TerrainConfig describes the generated heightmap.
type TerrainConfig struct {
	PatchesX   int     `yaml:"patches_x"`   // Map width in patches
	PatchesZ   int     `yaml:"patches_z"`   // Map depth in patches
	Seed       int64   `yaml:"seed"`        // Perlin seed
	Amplitude  float32 `yaml:"amplitude"`   // Peak height in world units
	WaterLevel float32 `yaml:"water_level"` // Heights are shifted so this level maps to 0
}

// TessellationConfig holds the level-of-detail settings.
type TessellationConfig struct {
	ViewRadius            int  `yaml:"view_radius"`             // Ground detail budget
	PoolSize              int  `yaml:"pool_size"`               // Initial nodes per bank
	MaxPoolSize           int  `yaml:"max_pool_size"`           // Growth ceiling per bank
	Workers               int  `yaml:"workers"`                 // Tessellation goroutines
	VisibilityGraceFrames int  `yaml:"visibility_grace_frames"` // Frames a patch stays visible after leaving the frustum
	Debug                 bool `yaml:"debug"`                   // Panic on inconsistent neighbour links
}

// BenchConfig controls the roambench fly-through.
type BenchConfig struct {
	Frames        int     `yaml:"frames"`
	OrbitDistance float32 `yaml:"orbit_distance"`
	EditsPerFrame int     `yaml:"edits_per_frame"`
	Shadow        bool    `yaml:"shadow"` // Also tessellate the shadow bank each frame
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			PatchesX:   8,
			PatchesZ:   8,
			Seed:       56,
			Amplitude:  600,
			WaterLevel: 0,
		},
		Tessellation: TessellationConfig{
			ViewRadius:            60,
			PoolSize:              1 << 20,
			MaxPoolSize:           1 << 23,
			Workers:               min(runtime.NumCPU(), 255), // Pool ids are 8 bits
			VisibilityGraceFrames: 2,
		},
		Bench: BenchConfig{
			Frames:        600,
			OrbitDistance: 3000,
			EditsPerFrame: 1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that would otherwise fail deep inside the engine.
func (c *Config) Validate() error {
	switch {
	case c.Terrain.PatchesX <= 0 || c.Terrain.PatchesZ <= 0:
		return fmt.Errorf("%w: terrain needs at least one patch, got %dx%d", ErrInvalid, c.Terrain.PatchesX, c.Terrain.PatchesZ)
	case c.Tessellation.ViewRadius <= 0:
		return fmt.Errorf("%w: view_radius must be positive, got %d", ErrInvalid, c.Tessellation.ViewRadius)
	case c.Tessellation.PoolSize <= 0 || c.Tessellation.PoolSize%2 != 0:
		return fmt.Errorf("%w: pool_size must be even and non-zero, got %d", ErrInvalid, c.Tessellation.PoolSize)
	case c.Tessellation.MaxPoolSize < c.Tessellation.PoolSize:
		return fmt.Errorf("%w: max_pool_size %d below pool_size %d", ErrInvalid, c.Tessellation.MaxPoolSize, c.Tessellation.PoolSize)
	case c.Tessellation.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, c.Tessellation.Workers)
	case c.Tessellation.VisibilityGraceFrames < 0:
		return fmt.Errorf("%w: visibility_grace_frames must not be negative", ErrInvalid)
	}
	return nil
}
