// Package main provides the HTTP API server for Sayar.
package main

import (
	"context"
	"fmt"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/sayar/internal/api"
	"github.com/raphaelgruber/sayar/internal/app"
	"github.com/raphaelgruber/sayar/internal/config"
)

func main() {
	wipe := flag.Bool("wipe", false, "wipe the transcript archive on startup (testing only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("starting sayar-server",
		"port", cfg.ServerPort,
		"data_dir", cfg.DataDir,
		"drive_enabled", cfg.DriveEnabled,
		"transcripts_enabled", cfg.TranscriptsEnabled(),
	)

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(initCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Error("failed to close", "error", err)
		}
	}()

	if *wipe || os.Getenv("SAYAR_WIPE_DB") == "true" {
		if a.Transcripts == nil {
			logger.Warn("wipe requested but transcript archive is disabled")
		} else {
			wipeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := a.Transcripts.WipeData(wipeCtx)
			cancel()
			if err != nil {
				logger.Error("failed to wipe transcripts", "error", err)
				os.Exit(1)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.New(a.APIDependencies())
	logger.Info("API available", "url", "http://localhost:"+cfg.ServerPort+"/api")
	if err := srv.ListenAndServe(ctx, ":"+cfg.ServerPort); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
