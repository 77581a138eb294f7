// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/caremesh/matchd/internal/domain/model"
)

// ReferralDependencies defines the interface for shortlist reads.
type ReferralDependencies interface {
	Matches(ctx context.Context, referralID string) (model.RankedOutcome, error)
	Explain(ctx context.Context, referralID, openingID string) (model.Explanation, error)
}

// ReferralsHandler handles ranked-shortlist and explanation reads.
type ReferralsHandler struct {
	deps ReferralDependencies
}

// NewReferralsHandler creates a new referrals handler.
func NewReferralsHandler(deps ReferralDependencies) *ReferralsHandler {
	return &ReferralsHandler{deps: deps}
}

// HandleReferrals routes GET /referrals/{id}/matches and
// GET /referrals/{id}/matches/{openingID}/explanation.
func (h *ReferralsHandler) HandleReferrals(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_referral_matches"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/referrals/"), "/"), "/")
	switch {
	case len(parts) == 2 && parts[1] == "matches" && parts[0] != "":
		h.handleMatches(w, r, parts[0])
	case len(parts) == 4 && parts[1] == "matches" && parts[3] == "explanation" && parts[0] != "" && parts[2] != "":
		h.handleExplanation(w, r, parts[0], parts[2])
	default:
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
	}
}

func (h *ReferralsHandler) handleMatches(w http.ResponseWriter, r *http.Request, referralID string) {
	const op = "api.get_referral_matches"
	outcome, err := h.deps.Matches(r.Context(), referralID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (h *ReferralsHandler) handleExplanation(w http.ResponseWriter, r *http.Request, referralID, openingID string) {
	const op = "api.get_match_explanation"
	explanation, err := h.deps.Explain(r.Context(), referralID, openingID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, explanation)
}
