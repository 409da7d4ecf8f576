// Package main flies an orbit camera over generated terrain and reports
// tessellation timings.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/roam-terrain/internal/bench"
	"github.com/Faultbox/roam-terrain/internal/config"
	"github.com/Faultbox/roam-terrain/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== ROAM terrain bench ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bench.New(cfg, logger.Named("bench"))
	if err != nil {
		logger.Error("failed to create bench", zap.Error(err))
		os.Exit(1)
	}

	rep, err := b.Run(ctx)
	if rep != nil {
		rep.Log(logger.Log)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bench error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("bench finished")
}
