// Command deskstate-menu is the interactive terminal menu. It runs the
// engine in-process: the menu always renders from the cached snapshot and
// every action is followed by a background refresh.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"deskstate/internal/cache"
	"deskstate/internal/dispatch"
	"deskstate/internal/engine"
	"deskstate/internal/events"
	"deskstate/internal/mapping"
	"deskstate/internal/providers"
	"deskstate/internal/refresh"
	"deskstate/internal/settings"
	"deskstate/internal/tui"
)

func main() {
	var (
		mock     = flag.Bool("mock", false, "use mock providers")
		stateDir = flag.String("state-dir", "", "state directory (overrides config)")
		debug    = flag.Bool("debug", false, "log debug output to deskstate-menu.log")
	)
	flag.Parse()

	// The terminal belongs to the menu; keep logs out of it.
	if *debug {
		f, err := os.OpenFile("deskstate-menu.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			defer f.Close()
			slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}

	cfg, err := settings.Load()
	if err != nil {
		os.Stderr.WriteString("deskstate-menu: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *stateDir != "" {
		cfg.State.Dir = *stateDir
	}
	if err := os.MkdirAll(cfg.State.Dir, 0o755); err != nil {
		os.Stderr.WriteString("deskstate-menu: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		audio    providers.AudioProvider
		monitors providers.MonitorProvider
		scale    providers.ScaleProvider
	)
	if *mock {
		m := providers.NewMock()
		audio, monitors, scale = m, m, m
	} else {
		audio = providers.NewPactlAudio(cfg.Tools.Pactl)
		display := providers.NewDisplayConfig()
		defer display.Close()
		monitors = display
		scale = providers.NewScaleTool(cfg.Tools.ScaleTool)
	}

	store := mapping.NewJSONStore(cfg.State.Dir)
	bus := events.NewBus()
	c := cache.New()
	orch := refresh.New(audio, monitors, scale, store, c, bus)
	disp := dispatch.New(audio, scale, store, c, orch, dispatch.Limits{
		ScalePresets:   cfg.Scale.Presets,
		MaxTargetIndex: cfg.Scale.MaxTargetIndex,
	})
	eng := engine.New(c, orch, disp)

	menu := tui.New(ctx, eng, bus, cfg.Scale.Presets)
	if _, err := tea.NewProgram(menu).Run(); err != nil {
		os.Stderr.WriteString("deskstate-menu: " + err.Error() + "\n")
		os.Exit(1)
	}

	eng.Drain()
}
