// Package dispatch wraps user-triggered hardware mutations. Each action runs
// on its own goroutine so the trigger path never blocks, and every action is
// followed by exactly one refresh pass whether or not the mutation succeeded:
// the resulting hardware state must be observed either way.
package dispatch

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"deskstate/internal/cache"
	"deskstate/internal/mapping"
	"deskstate/internal/models"
	"deskstate/internal/providers"
	"deskstate/internal/refresh"
)

// Limits bounds the accepted action inputs. Values outside the limits make
// the action a logged no-op rather than a surfaced error.
type Limits struct {
	ScalePresets   []int // accepted percentages for SetScale
	MaxTargetIndex int   // mapping target indices are valid in [1, MaxTargetIndex]
}

// Dispatcher executes the three mutation kinds.
type Dispatcher struct {
	audio     providers.AudioProvider
	scale     providers.ScaleProvider
	store     mapping.Store
	cache     *cache.StateCache
	refresher *refresh.Orchestrator
	limits    Limits
	wg        sync.WaitGroup
}

// New creates a dispatcher.
func New(
	audio providers.AudioProvider,
	scale providers.ScaleProvider,
	store mapping.Store,
	c *cache.StateCache,
	refresher *refresh.Orchestrator,
	limits Limits,
) *Dispatcher {
	return &Dispatcher{
		audio:     audio,
		scale:     scale,
		store:     store,
		cache:     c,
		refresher: refresher,
		limits:    limits,
	}
}

// SetDefaultEndpoint assigns an audio endpoint to a default role.
// An empty endpoint id is a no-op (still triggers no refresh, since nothing
// was dispatched).
func (d *Dispatcher) SetDefaultEndpoint(ctx context.Context, id string, role models.Role) {
	if id == "" {
		slog.Debug("dispatch: empty endpoint id, ignoring")
		return
	}
	d.run(ctx, func(ctx context.Context) {
		if err := d.audio.SetDefault(ctx, id, role); err != nil {
			slog.Warn("dispatch: set default endpoint failed", "id", id, "role", role, "err", err)
		}
	})
}

// SetScale applies a scale percentage to a target index. A missing external
// scale tool or a percentage outside the configured presets is a logged
// no-op.
func (d *Dispatcher) SetScale(ctx context.Context, percent, targetIndex int) {
	if !d.scale.Available() {
		slog.Info("dispatch: scale tool unavailable, ignoring set scale")
		return
	}
	if len(d.limits.ScalePresets) > 0 && !slices.Contains(d.limits.ScalePresets, percent) {
		slog.Info("dispatch: scale percentage outside presets, ignoring", "percent", percent)
		return
	}
	d.run(ctx, func(ctx context.Context) {
		if err := d.scale.Set(ctx, percent, targetIndex); err != nil {
			slog.Warn("dispatch: set scale failed", "percent", percent, "index", targetIndex, "err", err)
		}
	})
}

// SetMapping persists a fingerprint → target index entry. The merged table
// is installed into the live snapshot immediately so the mapping UI updates
// without waiting for the full refresh that re-derives scale readings.
func (d *Dispatcher) SetMapping(ctx context.Context, fp models.Fingerprint, targetIndex int) {
	if fp == "" {
		slog.Debug("dispatch: empty fingerprint, ignoring")
		return
	}
	if targetIndex < 1 || (d.limits.MaxTargetIndex > 0 && targetIndex > d.limits.MaxTargetIndex) {
		slog.Info("dispatch: target index out of range, ignoring", "index", targetIndex)
		return
	}
	d.run(ctx, func(ctx context.Context) {
		table := d.store.Set(fp, targetIndex)
		d.cache.UpdateMapping(table)
	})
}

// run executes the mutation on a background goroutine, then performs the
// follow-up refresh pass. The refresh is deferred so it happens exactly once
// per dispatched action, success or failure.
func (d *Dispatcher) run(ctx context.Context, fn func(context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.refresher.Run(ctx)
		fn(ctx)
	}()
}

// Wait blocks until all in-flight actions (including their follow-up
// refreshes) have finished. Used at shutdown and by tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
