// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caremesh/matchd/internal/domain/dedupe"
	"github.com/caremesh/matchd/internal/domain/model"
)

// JobDependencies defines the interface for match-job submission.
type JobDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, job model.MatchJob) bool
}

// JobsHandler handles match-job submission requests.
type JobsHandler struct {
	deps JobDependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobDependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

// jobRequest mirrors the POST /match-jobs body.
type jobRequest struct {
	JobID      string `json:"job_id"`
	ReferralID string `json:"referral_id"`
}

func (j jobRequest) validate() error {
	if strings.TrimSpace(j.ReferralID) == "" {
		return errors.New("missing referral_id")
	}
	return nil
}

// HandlePostJob handles POST /match-jobs requests.
func (h *JobsHandler) HandlePostJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_match_job"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	// Idempotency check - mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), req.JobID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", JobID: req.JobID, Duplicate: true})
		return
	}

	job := model.MatchJob{
		JobID:       req.JobID,
		ReferralID:  req.ReferralID,
		SubmittedAt: time.Now().UTC(),
	}
	if ok := h.deps.Enqueue(r.Context(), job); !ok {
		// Roll back the "seen" status since enqueue failed.
		h.deps.Unrecord(r.Context(), req.JobID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", JobID: req.JobID, Duplicate: false})
}
