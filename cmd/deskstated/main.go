// Command deskstated is the desk hardware state daemon. It keeps the
// snapshot cache warm, serves it over HTTP with live SSE updates, and
// executes audio/scale/mapping actions.
// Run with --mock to use simulated providers (no sound server or session
// bus required).
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"deskstate/internal/api"
	"deskstate/internal/cache"
	"deskstate/internal/dispatch"
	"deskstate/internal/engine"
	"deskstate/internal/events"
	"deskstate/internal/mapping"
	"deskstate/internal/providers"
	"deskstate/internal/refresh"
	"deskstate/internal/settings"
	"deskstate/internal/zeroconf"
)

func main() {
	var (
		mock     = flag.Bool("mock", false, "use mock providers (no sound server or session bus required)")
		addr     = flag.String("addr", "", "HTTP listen address (overrides config)")
		stateDir = flag.String("state-dir", "", "state directory (overrides config)")
		debug    = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	// Configure logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	cfg, err := settings.Load()
	if err != nil {
		slog.Error("cannot load settings", "err", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if *stateDir != "" {
		cfg.State.Dir = *stateDir
	}
	if err := os.MkdirAll(cfg.State.Dir, 0o755); err != nil {
		slog.Error("cannot create state directory", "path", cfg.State.Dir, "err", err)
		os.Exit(1)
	}

	// Graceful shutdown context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Providers
	var (
		audio    providers.AudioProvider
		monitors providers.MonitorProvider
		scale    providers.ScaleProvider
	)
	if *mock {
		slog.Info("using mock providers")
		m := providers.NewMock()
		audio, monitors, scale = m, m, m
	} else {
		audio = providers.NewPactlAudio(cfg.Tools.Pactl)
		display := providers.NewDisplayConfig()
		defer display.Close()
		monitors = display
		st := providers.NewScaleTool(cfg.Tools.ScaleTool)
		if !st.Available() {
			slog.Warn("scale tool not found; scale actions will be no-ops", "binary", cfg.Tools.ScaleTool)
		}
		scale = st
	}

	// Core engine
	store := mapping.NewJSONStore(cfg.State.Dir)
	bus := events.NewBus()
	c := cache.New()
	orch := refresh.New(audio, monitors, scale, store, c, bus)
	disp := dispatch.New(audio, scale, store, c, orch, dispatch.Limits{
		ScalePresets:   cfg.Scale.Presets,
		MaxTargetIndex: cfg.Scale.MaxTargetIndex,
	})
	eng := engine.New(c, orch, disp)

	// Initial collection
	orch.Trigger(ctx)

	// Re-collect when the mapping file is edited outside the process
	go func() {
		if err := mapping.Watch(ctx, store.Path(), func() { orch.Trigger(ctx) }); err != nil {
			slog.Warn("mapping watcher failed", "err", err)
		}
	}()

	// Zeroconf mDNS registration
	if cfg.HTTP.MDNS {
		hostname, _ := os.Hostname()
		port := 8137
		if parts := strings.SplitN(cfg.HTTP.Addr, ":", 2); len(parts) == 2 && parts[1] != "" {
			if p, err := strconv.Atoi(parts[1]); err == nil {
				port = p
			}
		}
		zc := zeroconf.New(hostname, port)
		go func() {
			if err := zc.Start(ctx); err != nil {
				slog.Warn("zeroconf failed", "err", err)
			}
		}()
	}

	// HTTP server
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.NewRouter(eng, bus),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // 0 = no timeout (needed for SSE)
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("deskstate listening", "addr", cfg.HTTP.Addr, "mock", *mock, "state", cfg.State.Dir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Let in-flight actions and their follow-up refreshes finish
	eng.Drain()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}

	slog.Info("shutdown complete")
}
