package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/caremesh/matchd/internal/domain/matching"
	"github.com/caremesh/matchd/internal/domain/model"
	"github.com/caremesh/matchd/internal/domain/ranking"
	"github.com/caremesh/matchd/pkg/metrics"
)

// MemSnapshotStore implements SnapshotStore over an immutable snapshot
// value guarded by a RWMutex. Replace swaps the whole snapshot and rebuilds
// the id indexes; reads never see a half-applied snapshot.
type MemSnapshotStore struct {
	mu sync.RWMutex

	snap model.Snapshot

	referralByID map[string]int
	openingByID  map[string]int

	subsByOrg     map[string]*model.Subscription
	licensesByOrg map[string][]model.License
	statsByOrg    map[string]*model.ProviderStats
	openingPtrs   map[string]*model.Opening
}

// NewMemSnapshotStore creates an empty snapshot store.
func NewMemSnapshotStore() *MemSnapshotStore {
	s := &MemSnapshotStore{}
	s.index()
	return s
}

// Replace swaps in a new snapshot atomically.
func (s *MemSnapshotStore) Replace(ctx context.Context, snap model.Snapshot) error {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = snap
	s.index()

	metrics.RecordSnapshotReplace()
	metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

// index rebuilds the lookup maps. Caller holds s.mu.
func (s *MemSnapshotStore) index() {
	s.referralByID = make(map[string]int, len(s.snap.Referrals))
	for i := range s.snap.Referrals {
		s.referralByID[s.snap.Referrals[i].ID] = i
	}
	s.openingByID = make(map[string]int, len(s.snap.Openings))
	s.openingPtrs = make(map[string]*model.Opening, len(s.snap.Openings))
	for i := range s.snap.Openings {
		s.openingByID[s.snap.Openings[i].ID] = i
		s.openingPtrs[s.snap.Openings[i].ID] = &s.snap.Openings[i]
	}
	s.subsByOrg = make(map[string]*model.Subscription, len(s.snap.Subscriptions))
	for i := range s.snap.Subscriptions {
		s.subsByOrg[s.snap.Subscriptions[i].OrganizationID] = &s.snap.Subscriptions[i]
	}
	s.licensesByOrg = make(map[string][]model.License, len(s.snap.Licenses))
	for i := range s.snap.Licenses {
		lic := s.snap.Licenses[i]
		s.licensesByOrg[lic.OrganizationID] = append(s.licensesByOrg[lic.OrganizationID], lic)
	}
	s.statsByOrg = make(map[string]*model.ProviderStats, len(s.snap.ProviderStats))
	for i := range s.snap.ProviderStats {
		s.statsByOrg[s.snap.ProviderStats[i].OrganizationID] = &s.snap.ProviderStats[i]
	}
}

// Referral returns the referral with the given id.
func (s *MemSnapshotStore) Referral(ctx context.Context, id string) (model.Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.referralByID[id]
	if !ok {
		return model.Referral{}, fmt.Errorf("%w: %s", ErrReferralNotFound, id)
	}
	return s.snap.Referrals[i], nil
}

// Candidates returns the data the assembler scores against.
func (s *MemSnapshotStore) Candidates(ctx context.Context) (matching.Candidates, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return matching.Candidates{
		Openings:           s.snap.Openings,
		Organizations:      s.snap.Organizations,
		Sites:              s.snap.Sites,
		Licenses:           s.snap.Licenses,
		CapabilityProfiles: s.snap.CapabilityProfiles,
	}, nil
}

// Providers returns per-organization lookups for the ranking pass.
func (s *MemSnapshotStore) Providers(ctx context.Context) (ranking.Providers, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orgs := make(map[string]*model.Organization, len(s.snap.Organizations))
	for i := range s.snap.Organizations {
		orgs[s.snap.Organizations[i].ID] = &s.snap.Organizations[i]
	}

	return ranking.Providers{
		Organizations: orgs,
		Subscriptions: s.subsByOrg,
		Licenses:      s.licensesByOrg,
		Stats:         s.statsByOrg,
		Openings:      s.openingPtrs,
	}, nil
}

// Opening returns the opening with the given id.
func (s *MemSnapshotStore) Opening(ctx context.Context, id string) (model.Opening, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.openingByID[id]
	if !ok {
		return model.Opening{}, fmt.Errorf("%w: %s", ErrOpeningNotFound, id)
	}
	return s.snap.Openings[i], nil
}

// Counts reports entity counts for stats reporting.
func (s *MemSnapshotStore) Counts(ctx context.Context) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]int{
		"referrals":           len(s.snap.Referrals),
		"openings":            len(s.snap.Openings),
		"organizations":       len(s.snap.Organizations),
		"sites":               len(s.snap.Sites),
		"licenses":            len(s.snap.Licenses),
		"capability_profiles": len(s.snap.CapabilityProfiles),
		"subscriptions":       len(s.snap.Subscriptions),
	}
}

var _ SnapshotStore = (*MemSnapshotStore)(nil)

// MemResultStore implements ResultStore with a mutex-guarded map. Ranked
// shortlists are small (bounded by max_results) and written atomically per
// run, so a map with whole-value replacement is sufficient.
type MemResultStore struct {
	mu       sync.RWMutex
	outcomes map[string]model.RankedOutcome
}

// NewMemResultStore creates an empty result store.
func NewMemResultStore() *MemResultStore {
	return &MemResultStore{outcomes: make(map[string]model.RankedOutcome)}
}

// Put replaces the stored outcome for a referral.
func (s *MemResultStore) Put(ctx context.Context, outcome model.RankedOutcome) error {
	start := time.Now()
	s.mu.Lock()
	s.outcomes[outcome.ReferralID] = outcome
	count := len(s.outcomes)
	s.mu.Unlock()

	metrics.UpdateResultCount(count)
	metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

// Get returns the stored outcome for a referral.
func (s *MemResultStore) Get(ctx context.Context, referralID string) (model.RankedOutcome, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	outcome, ok := s.outcomes[referralID]
	if !ok {
		return model.RankedOutcome{}, fmt.Errorf("%w: %s", ErrResultNotFound, referralID)
	}
	return outcome, nil
}

// Count returns the number of referrals with stored outcomes.
func (s *MemResultStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.outcomes)
}

var _ ResultStore = (*MemResultStore)(nil)
