// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/caremesh/matchd/internal/domain/dedupe"
	"github.com/caremesh/matchd/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a match job for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, job model.MatchJob) bool

	// LoadSnapshot replaces the reference data snapshot.
	LoadSnapshot(ctx context.Context, snap model.Snapshot) error

	// Matches returns the latest ranked shortlist for a referral.
	Matches(ctx context.Context, referralID string) (model.RankedOutcome, error)

	// Explain returns the rationale bundle for one stored ranked match.
	Explain(ctx context.Context, referralID, openingID string) (model.Explanation, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	jobsHandler      *JobsHandler
	snapshotHandler  *SnapshotHandler
	referralsHandler *ReferralsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		jobsHandler:      NewJobsHandler(deps),
		snapshotHandler:  NewSnapshotHandler(deps),
		referralsHandler: NewReferralsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/snapshot", MetricsMiddleware(s.snapshotHandler.HandleReplaceSnapshot, "snapshot"))
	mux.HandleFunc("/match-jobs", MetricsMiddleware(s.jobsHandler.HandlePostJob, "match_jobs"))
	mux.HandleFunc("/referrals/", MetricsMiddleware(s.referralsHandler.HandleReferrals, "referrals"))
}

type ackResponse struct {
	Status    string `json:"status"`
	JobID     string `json:"job_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound allows the API to translate upstream not-found errors to 404
// without coupling to specific store packages.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
