// Package api implements the HTTP control surface for deskstate.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"deskstate/internal/models"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	engine Engine
	events EventBus
}

// Engine is the interface the handlers use to read state and dispatch
// actions. Reads are served from the cache and never block on hardware.
type Engine interface {
	ReadSnapshot() models.Snapshot
	TriggerRefresh(ctx context.Context)
	SetDefaultEndpoint(ctx context.Context, id string, role models.Role)
	SetScale(ctx context.Context, percent, targetIndex int)
	SetMapping(ctx context.Context, fp models.Fingerprint, targetIndex int)
}

// EventBus is the interface for subscribing to snapshot publications.
type EventBus interface {
	Subscribe(id string) <-chan models.Snapshot
	Unsubscribe(id string)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeAccepted acknowledges a dispatched action. Actions run in the
// background and have no synchronous result; clients observe the outcome
// through the next published snapshot.
func writeAccepted(w http.ResponseWriter) {
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"accepted": true})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": msg})
}
