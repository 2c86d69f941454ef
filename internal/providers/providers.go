// Package providers defines the external hardware query/mutation contracts
// the engine consumes, plus the concrete adapters. Adapters are pure I/O:
// every payload coming back from an external process or bus is treated as
// untrusted and validated against the expected shape, and any failure is
// reported as an error the engine converts to an absent value.
package providers

import (
	"context"

	"deskstate/internal/models"
)

// AudioProvider lists audio endpoints and manages the default-role slots.
// Each method is independently best-effort; the four default lookups inside
// Defaults are each individually guarded by the implementation.
type AudioProvider interface {
	// Outputs lists playback endpoints.
	Outputs(ctx context.Context) ([]models.AudioEndpoint, error)

	// Inputs lists recording endpoints.
	Inputs(ctx context.Context) ([]models.AudioEndpoint, error)

	// Defaults reports the current default-role assignments. Slots the
	// provider cannot determine are left empty, not errored.
	Defaults(ctx context.Context) (models.DefaultAssignments, error)

	// SetDefault assigns the endpoint as the default for the given role.
	SetDefault(ctx context.Context, id string, role models.Role) error
}

// MonitorProvider enumerates the currently attached physical monitors.
// Enumeration order is not stable; only fingerprints are.
type MonitorProvider interface {
	Monitors(ctx context.Context) ([]models.MonitorInfo, error)
}

// ScaleProvider reads and writes per-monitor scale through the external
// scale tool, addressed by target index.
type ScaleProvider interface {
	// Get returns the observed scale value for the target index, or
	// ok=false when it cannot be read.
	Get(ctx context.Context, targetIndex int) (value string, ok bool)

	// Set applies the scale percentage to the target index.
	Set(ctx context.Context, percent, targetIndex int) error

	// Available reports whether the external tool can be invoked at all.
	Available() bool
}
