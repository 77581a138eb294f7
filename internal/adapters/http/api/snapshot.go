// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/caremesh/matchd/internal/domain/model"
)

// SnapshotDependencies defines the interface for snapshot replacement.
type SnapshotDependencies interface {
	LoadSnapshot(ctx context.Context, snap model.Snapshot) error
}

// SnapshotHandler handles reference-data snapshot replacement.
type SnapshotHandler struct {
	deps SnapshotDependencies
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps SnapshotDependencies) *SnapshotHandler {
	return &SnapshotHandler{deps: deps}
}

// snapshotResponse summarizes what was loaded.
type snapshotResponse struct {
	Status    string `json:"status"`
	Referrals int    `json:"referrals"`
	Openings  int    `json:"openings"`
}

// HandleReplaceSnapshot handles PUT /snapshot requests. The body is the
// full reference snapshot from the persistence collaborator; it replaces
// the previous one wholesale.
func (h *SnapshotHandler) HandleReplaceSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.replace_snapshot"
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var snap model.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.LoadSnapshot(r.Context(), snap); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse{
		Status:    "loaded",
		Referrals: len(snap.Referrals),
		Openings:  len(snap.Openings),
	})
}
