package api

import (
	"encoding/json"
	"net/http"

	"deskstate/internal/models"
)

func (h *Handlers) getSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.ReadSnapshot())
}

func (h *Handlers) triggerRefresh(w http.ResponseWriter, r *http.Request) {
	h.engine.TriggerRefresh(r.Context())
	writeAccepted(w)
}

type setDefaultRequest struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (h *Handlers) setDefaultEndpoint(w http.ResponseWriter, r *http.Request) {
	var req setDefaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	role := models.Role(req.Role)
	switch role {
	case models.RoleConsole, models.RoleCommunications, models.RoleBoth:
	case "":
		role = models.RoleBoth
	default:
		writeBadRequest(w, "unknown role "+req.Role)
		return
	}
	h.engine.SetDefaultEndpoint(r.Context(), req.ID, role)
	writeAccepted(w)
}

type setScaleRequest struct {
	Percent int `json:"percent"`
	Index   int `json:"index"`
}

func (h *Handlers) setScale(w http.ResponseWriter, r *http.Request) {
	var req setScaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	h.engine.SetScale(r.Context(), req.Percent, req.Index)
	writeAccepted(w)
}

type setMappingRequest struct {
	Fingerprint string `json:"fingerprint"`
	Index       int    `json:"index"`
}

func (h *Handlers) setMapping(w http.ResponseWriter, r *http.Request) {
	var req setMappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	h.engine.SetMapping(r.Context(), models.Fingerprint(req.Fingerprint), req.Index)
	writeAccepted(w)
}
