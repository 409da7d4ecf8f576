package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Terrain.PatchesX != 8 || cfg.Terrain.PatchesZ != 8 {
		t.Errorf("expected 8x8 patches, got %dx%d", cfg.Terrain.PatchesX, cfg.Terrain.PatchesZ)
	}
	if cfg.Tessellation.ViewRadius != 60 {
		t.Errorf("expected view radius 60, got %d", cfg.Tessellation.ViewRadius)
	}
	if cfg.Tessellation.PoolSize != 1<<20 {
		t.Errorf("expected pool size %d, got %d", 1<<20, cfg.Tessellation.PoolSize)
	}
	if cfg.Tessellation.Workers < 1 {
		t.Errorf("expected at least one worker, got %d", cfg.Tessellation.Workers)
	}
	if cfg.Tessellation.Debug {
		t.Error("expected debug assertions off by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero patches", func(c *Config) { c.Terrain.PatchesX = 0 }},
		{"odd pool", func(c *Config) { c.Tessellation.PoolSize = 1001 }},
		{"zero pool", func(c *Config) { c.Tessellation.PoolSize = 0 }},
		{"ceiling below pool", func(c *Config) { c.Tessellation.MaxPoolSize = c.Tessellation.PoolSize - 2 }},
		{"no workers", func(c *Config) { c.Tessellation.Workers = 0 }},
		{"zero view radius", func(c *Config) { c.Tessellation.ViewRadius = 0 }},
		{"negative grace", func(c *Config) { c.Tessellation.VisibilityGraceFrames = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "roam.yaml")

	yamlContent := `
terrain:
  patches_x: 4
  patches_z: 6
  seed: 7
  amplitude: 900

tessellation:
  view_radius: 120
  pool_size: 65536
  max_pool_size: 131072
  workers: 3
  debug: true

bench:
  frames: 42
  shadow: true

logging:
  level: "debug"
  log_file: "roam.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Terrain.PatchesX != 4 || cfg.Terrain.PatchesZ != 6 {
		t.Errorf("expected 4x6 patches, got %dx%d", cfg.Terrain.PatchesX, cfg.Terrain.PatchesZ)
	}
	if cfg.Terrain.Seed != 7 {
		t.Errorf("expected seed 7, got %d", cfg.Terrain.Seed)
	}
	if cfg.Tessellation.ViewRadius != 120 {
		t.Errorf("expected view radius 120, got %d", cfg.Tessellation.ViewRadius)
	}
	if cfg.Tessellation.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Tessellation.Workers)
	}
	if !cfg.Tessellation.Debug {
		t.Error("expected debug to be true")
	}
	if cfg.Tessellation.VisibilityGraceFrames != 2 {
		t.Errorf("unset keys should keep defaults, got grace %d", cfg.Tessellation.VisibilityGraceFrames)
	}
	if cfg.Bench.Frames != 42 || !cfg.Bench.Shadow {
		t.Errorf("unexpected bench config %+v", cfg.Bench)
	}
	if cfg.Logging.LogFile != "roam.log" {
		t.Errorf("expected log file 'roam.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
tessellation:
  view_radius: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/roam.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "roam.yaml")

	cfg := Default()
	cfg.Tessellation.ViewRadius = 77
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile() error: %v", err)
	}
	if loaded.Tessellation.ViewRadius != 77 {
		t.Errorf("expected view radius 77 after reload, got %d", loaded.Tessellation.ViewRadius)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Tessellation.Debug {
					t.Error("expected neighbour assertions with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "workers flag",
			setup: func() { *flagWorkers = 5 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Tessellation.Workers != 5 {
					t.Errorf("expected 5 workers, got %d", cfg.Tessellation.Workers)
				}
			},
			teardown: func() { *flagWorkers = 0 },
		},
		{
			name:  "patches flag",
			setup: func() { *flagPatches = 3 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.PatchesX != 3 || cfg.Terrain.PatchesZ != 3 {
					t.Errorf("expected 3x3 patches, got %dx%d", cfg.Terrain.PatchesX, cfg.Terrain.PatchesZ)
				}
			},
			teardown: func() { *flagPatches = 0 },
		},
		{
			name: "frames and view radius flags",
			setup: func() {
				*flagFrames = 10
				*flagViewRadius = 90
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Bench.Frames != 10 {
					t.Errorf("expected 10 frames, got %d", cfg.Bench.Frames)
				}
				if cfg.Tessellation.ViewRadius != 90 {
					t.Errorf("expected view radius 90, got %d", cfg.Tessellation.ViewRadius)
				}
			},
			teardown: func() {
				*flagFrames = 0
				*flagViewRadius = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "roam.yaml")

	yamlContent := `
tessellation:
  view_radius: 150
  workers: 2
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWorkers = 6
	defer func() {
		*flagConfig = ""
		*flagWorkers = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Tessellation.Workers != 6 {
		t.Errorf("expected 6 workers from flag, got %d", cfg.Tessellation.Workers)
	}
	if cfg.Tessellation.ViewRadius != 150 {
		t.Errorf("expected view radius 150 from file, got %d", cfg.Tessellation.ViewRadius)
	}
}
