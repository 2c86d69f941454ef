// Package engine is the facade the UIs consume: cached reads, refresh
// triggering, and action dispatch behind one object. It contains no logic of
// its own; it exists so UI code never touches the cache, orchestrator, or
// dispatcher directly.
package engine

import (
	"context"

	"deskstate/internal/cache"
	"deskstate/internal/dispatch"
	"deskstate/internal/models"
	"deskstate/internal/refresh"
)

// Engine bundles the core components.
type Engine struct {
	cache      *cache.StateCache
	refresher  *refresh.Orchestrator
	dispatcher *dispatch.Dispatcher
}

// New creates the facade.
func New(c *cache.StateCache, r *refresh.Orchestrator, d *dispatch.Dispatcher) *Engine {
	return &Engine{cache: c, refresher: r, dispatcher: d}
}

// ReadSnapshot returns the current cached snapshot. Never blocks on
// hardware I/O.
func (e *Engine) ReadSnapshot() models.Snapshot {
	return e.cache.Read()
}

// TriggerRefresh starts a collection pass in the background.
func (e *Engine) TriggerRefresh(ctx context.Context) {
	e.refresher.Trigger(ctx)
}

// SetDefaultEndpoint dispatches a default-audio-device change.
func (e *Engine) SetDefaultEndpoint(ctx context.Context, id string, role models.Role) {
	e.dispatcher.SetDefaultEndpoint(ctx, id, role)
}

// SetScale dispatches a per-monitor scale change.
func (e *Engine) SetScale(ctx context.Context, percent, targetIndex int) {
	e.dispatcher.SetScale(ctx, percent, targetIndex)
}

// SetMapping dispatches a fingerprint → target index mapping change.
func (e *Engine) SetMapping(ctx context.Context, fp models.Fingerprint, targetIndex int) {
	e.dispatcher.SetMapping(ctx, fp, targetIndex)
}

// Drain waits for in-flight actions to complete. Called at shutdown.
func (e *Engine) Drain() {
	e.dispatcher.Wait()
}
