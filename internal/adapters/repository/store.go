// Package repository defines the snapshot and result store interfaces and
// their in-memory implementations. It stands in for the persistence
// collaborator: the engine itself never issues queries.
package repository

import (
	"context"

	"github.com/caremesh/matchd/internal/domain/matching"
	"github.com/caremesh/matchd/internal/domain/model"
	"github.com/caremesh/matchd/internal/domain/ranking"
)

// SnapshotStore holds the reference data one match run draws from.
// Snapshots are replaced wholesale; reads return values that callers must
// not mutate.
type SnapshotStore interface {
	// Replace swaps in a new snapshot atomically.
	Replace(ctx context.Context, snap model.Snapshot) error

	// Referral returns the referral with the given id.
	// Returns ErrReferralNotFound if unknown.
	Referral(ctx context.Context, id string) (model.Referral, error)

	// Candidates returns the data the assembler scores against.
	Candidates(ctx context.Context) (matching.Candidates, error)

	// Providers returns per-organization lookups for the ranking pass.
	Providers(ctx context.Context) (ranking.Providers, error)

	// Opening returns the opening with the given id.
	// Returns ErrOpeningNotFound if unknown.
	Opening(ctx context.Context, id string) (model.Opening, error)

	// Counts reports entity counts for stats reporting.
	Counts(ctx context.Context) map[string]int
}

// ResultStore keeps the latest ranked shortlist per referral.
type ResultStore interface {
	// Put replaces the stored outcome for a referral.
	Put(ctx context.Context, outcome model.RankedOutcome) error

	// Get returns the stored outcome for a referral.
	// Returns ErrResultNotFound when no run has completed yet.
	Get(ctx context.Context, referralID string) (model.RankedOutcome, error)

	// Count returns the number of referrals with stored outcomes.
	Count(ctx context.Context) int
}
