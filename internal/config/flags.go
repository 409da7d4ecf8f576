package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging and neighbour assertions")
	flagWorkers    = flag.Int("workers", 0, "Tessellation worker count")
	flagFrames     = flag.Int("frames", 0, "Number of frames to simulate")
	flagViewRadius = flag.Int("view-radius", 0, "Ground detail view radius")
	flagPatches    = flag.Int("patches", 0, "Map size in patches per side")
	flagShadow     = flag.Bool("shadow", false, "Also tessellate the shadow bank")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Tessellation.Debug = true
	}
	if *flagWorkers > 0 {
		cfg.Tessellation.Workers = *flagWorkers
	}
	if *flagFrames > 0 {
		cfg.Bench.Frames = *flagFrames
	}
	if *flagViewRadius > 0 {
		cfg.Tessellation.ViewRadius = *flagViewRadius
	}
	if *flagPatches > 0 {
		cfg.Terrain.PatchesX = *flagPatches
		cfg.Terrain.PatchesZ = *flagPatches
	}
	if *flagShadow {
		cfg.Bench.Shadow = true
	}
}
