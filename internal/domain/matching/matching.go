// Package matching assembles ranked match shortlists: it applies the
// eligibility filter and factor scorers to every candidate opening,
// aggregates scores, classifies quality, and emits run metadata.
package matching

import (
	"context"
	"sort"
	"time"

	"github.com/caremesh/matchd/internal/domain/eligibility"
	"github.com/caremesh/matchd/internal/domain/model"
	"github.com/caremesh/matchd/internal/domain/scoring"
)

// Capability profile lookup key prefixes. Site-level profiles take
// precedence over organization-level ones.
const (
	siteProfileKeyPrefix = "site_"
	orgProfileKeyPrefix  = "org_"
)

// Thresholds configure shortlist admission and quality classification.
type Thresholds struct {
	MinimumScore   float64 `koanf:"minimum_score" json:"minimum_score"`
	GoodScore      float64 `koanf:"good_score" json:"good_score"`
	ExcellentScore float64 `koanf:"excellent_score" json:"excellent_score"`
	MaxResults     int     `koanf:"max_results" json:"max_results"`
}

// DefaultThresholds returns the documented default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinimumScore:   40,
		GoodScore:      70,
		ExcellentScore: 85,
		MaxResults:     10,
	}
}

// Candidates bundles the reference data one assembler run draws from. All
// slices are read-only snapshots pre-fetched by the caller; the assembler
// issues no queries of its own.
type Candidates struct {
	Openings           []model.Opening
	Organizations      []model.Organization
	Sites              []model.Site
	Licenses           []model.License
	CapabilityProfiles []model.CapabilityProfile
}

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithChecker substitutes the eligibility checker.
func WithChecker(c *eligibility.Checker) Option {
	return func(a *Assembler) {
		if c != nil {
			a.checker = c
		}
	}
}

// WithScorer substitutes the factor scorer.
func WithScorer(s *scoring.FactorScorer) Option {
	return func(a *Assembler) {
		if s != nil {
			a.scorer = s
		}
	}
}

// WithThresholds overrides the default thresholds.
func WithThresholds(t Thresholds) Option {
	return func(a *Assembler) {
		a.thresholds = t
	}
}

// WithClock substitutes the time source, used by tests for deterministic
// availability scoring and latency measurement.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		if now != nil {
			a.now = now
		}
	}
}

// Assembler orchestrates one referral's match run.
type Assembler struct {
	checker    *eligibility.Checker
	scorer     *scoring.FactorScorer
	thresholds Thresholds
	now        func() time.Time
}

// NewAssembler creates an assembler with configuration options.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		checker:    eligibility.NewChecker(),
		scorer:     scoring.NewFactorScorer(),
		thresholds: DefaultThresholds(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Thresholds returns the active threshold set.
func (a *Assembler) Thresholds() Thresholds {
	return a.thresholds
}

// Match scores the referral against every candidate opening and returns the
// shortlist plus run metadata. The result order is a total order: total
// score descending, then opening id ascending, so repeated runs on the same
// snapshot produce identical output. ctx is honored between openings.
func (a *Assembler) Match(ctx context.Context, referral *model.Referral, candidates Candidates) (model.MatchOutcome, error) {
	start := a.now()

	orgByID := make(map[string]*model.Organization, len(candidates.Organizations))
	for i := range candidates.Organizations {
		orgByID[candidates.Organizations[i].ID] = &candidates.Organizations[i]
	}
	siteByID := make(map[string]*model.Site, len(candidates.Sites))
	for i := range candidates.Sites {
		siteByID[candidates.Sites[i].ID] = &candidates.Sites[i]
	}
	// Keep the verified license per organization when one exists; the
	// eligibility rule only cares about status.
	licenseByOrg := make(map[string]*model.License, len(candidates.Licenses))
	for i := range candidates.Licenses {
		lic := &candidates.Licenses[i]
		if existing, ok := licenseByOrg[lic.OrganizationID]; ok && existing.Status == model.LicenseVerified {
			continue
		}
		licenseByOrg[lic.OrganizationID] = lic
	}
	profileByOwner := make(map[string]*model.CapabilityProfile, len(candidates.CapabilityProfiles))
	for i := range candidates.CapabilityProfiles {
		p := &candidates.CapabilityProfiles[i]
		if p.SiteID != "" {
			profileByOwner[siteProfileKeyPrefix+p.SiteID] = p
		}
		if p.OrganizationID != "" {
			profileByOwner[orgProfileKeyPrefix+p.OrganizationID] = p
		}
	}

	results := make([]model.MatchResult, 0, len(candidates.Openings))
	for i := range candidates.Openings {
		if err := ctx.Err(); err != nil {
			return model.MatchOutcome{}, err
		}
		opening := &candidates.Openings[i]

		// Cheap pre-filter before constraint evaluation.
		if opening.Status != model.OpeningActive || opening.SpotsAvailable <= 0 {
			continue
		}

		org := orgByID[opening.OrganizationID]
		site := siteByID[opening.SiteID]
		license := licenseByOrg[opening.OrganizationID]
		profile := profileByOwner[siteProfileKeyPrefix+opening.SiteID]
		if profile == nil {
			profile = profileByOwner[orgProfileKeyPrefix+opening.OrganizationID]
		}

		// Constraints are non-negotiable and run before any scoring.
		if violations := a.checker.Check(referral, opening, org, license); len(violations) > 0 {
			continue
		}

		breakdown, total := a.scorer.ScoreAll(referral, opening, org, site, profile, start)
		if total < a.thresholds.MinimumScore {
			continue
		}

		results = append(results, model.MatchResult{
			OpeningID:      opening.ID,
			OrganizationID: opening.OrganizationID,
			SiteID:         opening.SiteID,
			ScoreBreakdown: breakdown,
			TotalScore:     total,
			Quality:        a.classify(total),
		})
	}

	// Explicit tie-break on opening id keeps the order independent of the
	// snapshot's iteration order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		return results[i].OpeningID < results[j].OpeningID
	})

	matchesFound := len(results)
	if a.thresholds.MaxResults > 0 && len(results) > a.thresholds.MaxResults {
		results = results[:a.thresholds.MaxResults]
	}

	meta := model.RunMeta{
		OpeningsSearched: len(candidates.Openings),
		MatchesFound:     matchesFound,
		LatencyMS:        a.now().Sub(start).Milliseconds(),
		ConfigUsed:       a.configUsed(),
	}
	if len(results) > 0 {
		meta.TopMatchScore = results[0].TotalScore
		var sum float64
		for i := range results {
			sum += results[i].TotalScore
		}
		meta.AvgMatchScore = sum / float64(len(results))
	}

	return model.MatchOutcome{Results: results, Meta: meta}, nil
}

// configUsed snapshots the run's active configuration for the metadata
// echo.
func (a *Assembler) configUsed() map[string]interface{} {
	return map[string]interface{}{
		"weights":     a.scorer.Weights(),
		"constraints": a.checker.Constraints(),
		"thresholds":  a.thresholds,
	}
}

// classify buckets a total score into a quality tier.
func (a *Assembler) classify(total float64) string {
	switch {
	case total >= a.thresholds.ExcellentScore:
		return model.QualityExcellent
	case total >= a.thresholds.GoodScore:
		return model.QualityGood
	default:
		return model.QualityFair
	}
}
