// Package refresh implements the collection pipeline: it queries the slow
// external providers, merges the results with the persisted mapping, and
// publishes the assembled snapshot into the state cache. Collection runs on
// a background goroutine and never inside the cache lock, so hardware I/O
// cannot block readers.
package refresh

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"deskstate/internal/cache"
	"deskstate/internal/events"
	"deskstate/internal/mapping"
	"deskstate/internal/models"
	"deskstate/internal/providers"
)

// Orchestrator runs collection passes. Passes are not serialized against
// each other; ordering is enforced at publication time by the sequence
// number the cache checks.
type Orchestrator struct {
	audio    providers.AudioProvider
	monitors providers.MonitorProvider
	scale    providers.ScaleProvider
	store    mapping.Store
	cache    *cache.StateCache
	bus      *events.Bus
	seq      atomic.Uint64
}

// New creates an orchestrator publishing into the given cache and bus.
func New(
	audio providers.AudioProvider,
	monitors providers.MonitorProvider,
	scale providers.ScaleProvider,
	store mapping.Store,
	c *cache.StateCache,
	bus *events.Bus,
) *Orchestrator {
	return &Orchestrator{
		audio:    audio,
		monitors: monitors,
		scale:    scale,
		store:    store,
		cache:    c,
		bus:      bus,
	}
}

// Run executes one collection pass and publishes the result. It never
// returns an error: every external query is individually guarded, so a
// failing subsystem degrades only its own fields, and a snapshot that loses
// the publication race is simply discarded.
func (o *Orchestrator) Run(ctx context.Context) {
	start := time.Now()
	snap := o.Collect(ctx)
	observeCollect(time.Since(start))

	if !o.cache.Replace(snap) {
		staleDiscards.Inc()
		slog.Debug("refresh: discarded stale snapshot", "seq", snap.Seq, "live", o.cache.Seq())
		return
	}
	o.bus.Publish(snap)
	slog.Debug("refresh: published snapshot",
		"seq", snap.Seq,
		"outputs", len(snap.Outputs),
		"inputs", len(snap.Inputs),
		"monitors", len(snap.Monitors),
		"took", time.Since(start),
	)
}

// Trigger starts Run on its own goroutine so callers (UI paths, action
// completions) never block on hardware I/O.
func (o *Orchestrator) Trigger(ctx context.Context) {
	go o.Run(ctx)
}

// Collect performs the query pipeline and assembles a snapshot. The sequence
// number is taken after assembly so it reflects completion order, which is
// what the cache's staleness check needs.
func (o *Orchestrator) Collect(ctx context.Context) models.Snapshot {
	snap := models.EmptySnapshot()

	if outputs, err := o.audio.Outputs(ctx); err != nil {
		providerFailure("audio", "outputs", err)
	} else {
		snap.Outputs = outputs
	}
	if inputs, err := o.audio.Inputs(ctx); err != nil {
		providerFailure("audio", "inputs", err)
	} else {
		snap.Inputs = inputs
	}
	if defaults, err := o.audio.Defaults(ctx); err != nil {
		providerFailure("audio", "defaults", err)
	} else {
		snap.Defaults = defaults
	}

	if monitors, err := o.monitors.Monitors(ctx); err != nil {
		providerFailure("monitor", "enumerate", err)
	} else {
		snap.Monitors = monitors
	}

	snap.Mapping = o.store.Load()

	// Two monitors mapped to the same target index resolve to one query.
	queried := make(map[int]bool, len(snap.Monitors))
	for _, m := range snap.Monitors {
		idx := snap.Mapping.EffectiveIndex(m)
		if queried[idx] {
			continue
		}
		queried[idx] = true
		if value, ok := o.scale.Get(ctx, idx); ok {
			snap.Scale[idx] = value
		} else {
			// Absent rather than defaulted; the UI renders "unknown".
			providerFailure("scale", "get", nil)
		}
	}

	snap.Taken = time.Now()
	snap.Seq = o.seq.Add(1)
	return snap
}
