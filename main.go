// Package main provides a multi-channel audio player that plays several PCM
// files at once and highlights the loudest channel per monitor window.
//
// Usage:
//
//	player [-config path/to/config.json]
//
// If -config is not specified, the player looks for config.json in the same
// directory as the binary.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/oszuidwest/zwfm-player/internal/archive"
	"github.com/oszuidwest/zwfm-player/internal/config"
	"github.com/oszuidwest/zwfm-player/internal/playback"
	"github.com/oszuidwest/zwfm-player/internal/player"
	"github.com/oszuidwest/zwfm-player/internal/util"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: config.json next to binary)")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		slog.Info("version info", "version", Version, "commit", Commit, "build_time", BuildTime)
		return
	}

	if *configPath == "" {
		execPath, err := os.Executable()
		if err != nil {
			slog.Error("failed to get executable path", "error", err)
			os.Exit(1)
		}
		*configPath = filepath.Join(filepath.Dir(execPath), "config.json")
	}

	slog.Info("using config file", "path", *configPath)

	cfg := config.New(*configPath)
	if err := cfg.Load(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Check playback binary availability
	binaryPath := playback.ResolveBinary(cfg.GetFFplayPath())
	playbackAvailable := binaryPath != ""
	if !playbackAvailable {
		slog.Warn("playback binary not found - running in degraded mode",
			"configured_path", cfg.GetFFplayPath())
	} else {
		slog.Info("playback binary found", "path", binaryPath)
	}

	p := player.New(cfg, binaryPath)

	if err := p.InitEventLog(); err != nil {
		slog.Error("failed to initialize event log", "error", err)
	}

	archiver := archive.NewArchiver(cfg, p.EventLogPath)
	archiver.Start()

	srv := NewServer(cfg, p, archiver, playbackAvailable)

	// Start web server.
	httpServer := srv.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, util.ShutdownSignals()...)
	<-sigChan

	slog.Info("shutting down")

	// Stop version checker goroutine
	srv.version.Stop()

	// Shut down HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	archiver.Stop()

	if err := p.Close(); err != nil {
		slog.Error("error stopping player", "error", err)
	}

	slog.Info("shutdown complete")
}
