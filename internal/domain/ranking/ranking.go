// Package ranking implements the fairness-aware second pass: paid-tier,
// reliability, and freshness multipliers applied over the assembler's base
// scores, with score-band interleaving so paid placement can only reorder
// candidates that are already near-equivalent in raw compatibility.
package ranking

import (
	"sort"
	"time"

	"github.com/caremesh/matchd/internal/domain/model"
)

// Multiplier bounds and band constants.
const (
	reliabilityFloor   = 0.8
	reliabilityCeiling = 1.2

	verifiedBonus         = 0.1
	unverifiedPenalty     = 0.1
	licensedBonus         = 0.05
	goodAcceptanceBonus   = 0.05
	poorAcceptancePenalty = 0.1

	goodAcceptanceRate = 0.8
	poorAcceptanceRate = 0.3
	minReferralHistory = 5

	// Paid placement nudges, never demotes and never dominates. Boost
	// overrides on a subscription are held to these bounds.
	paidBoostFloor   = 1.0
	paidBoostCeiling = 1.25

	defaultBandWidth = 5.0
)

// Freshness decay windows: an opening confirmed within the window earns the
// paired score; never confirmed earns neverConfirmedFreshness; older than
// the last window is stale and zeroes the final score outright (defense in
// depth behind the 48-hour upstream filter policy).
const neverConfirmedFreshness = 0.5

var freshnessWindows = []struct {
	within time.Duration
	score  float64
}{
	{12 * time.Hour, 1.0},
	{24 * time.Hour, 0.9},
	{36 * time.Hour, 0.8},
	{48 * time.Hour, 0.7},
}

// DefaultPlanBoosts is the paid-tier multiplier table. Deliberately small
// and bounded: paid placement nudges, it never overrides quality.
func DefaultPlanBoosts() map[string]float64 {
	return map[string]float64{
		string(model.PlanFree):         1.0,
		string(model.PlanBasic):        1.05,
		string(model.PlanProfessional): 1.10,
		string(model.PlanEnterprise):   1.15,
	}
}

// Config configures the ranking pass.
type Config struct {
	PlanBoosts map[string]float64 `koanf:"plan_boosts" json:"plan_boosts"`
	BandWidth  float64            `koanf:"band_width" json:"band_width"`
}

// DefaultConfig returns the documented default ranking configuration.
func DefaultConfig() Config {
	return Config{
		PlanBoosts: DefaultPlanBoosts(),
		BandWidth:  defaultBandWidth,
	}
}

// Providers bundles the per-organization reference data the ranker reads.
// Licenses are grouped per organization; everything else is keyed by
// organization id. Openings are keyed by opening id for freshness lookups.
type Providers struct {
	Organizations map[string]*model.Organization
	Subscriptions map[string]*model.Subscription
	Licenses      map[string][]model.License
	Stats         map[string]*model.ProviderStats
	Openings      map[string]*model.Opening
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithConfig overrides the default ranking configuration.
func WithConfig(cfg Config) Option {
	return func(r *Ranker) {
		if cfg.PlanBoosts != nil {
			r.planBoosts = cfg.PlanBoosts
		}
		if cfg.BandWidth > 0 {
			r.bandWidth = cfg.BandWidth
		}
	}
}

// WithClock substitutes the time source for freshness computation.
func WithClock(now func() time.Time) Option {
	return func(r *Ranker) {
		if now != nil {
			r.now = now
		}
	}
}

// Ranker re-ranks an already-filtered match list.
type Ranker struct {
	planBoosts map[string]float64
	bandWidth  float64
	now        func() time.Time
}

// NewRanker creates a ranker with configuration options.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{
		planBoosts: DefaultPlanBoosts(),
		bandWidth:  defaultBandWidth,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank computes the three multipliers and final score for every match, then
// produces the fairness-preserving order: base-score-descending bands of
// width bandWidth, reordered only within each band.
func (r *Ranker) Rank(matches []model.MatchResult, providers Providers) []model.RankedMatch {
	now := r.now()

	ranked := make([]model.RankedMatch, len(matches))
	for i := range matches {
		m := matches[i]
		paid, tier := r.paidMultiplier(providers.Subscriptions[m.OrganizationID])
		reliability := r.reliabilityMultiplier(
			providers.Organizations[m.OrganizationID],
			providers.Licenses[m.OrganizationID],
			providers.Stats[m.OrganizationID],
			now,
		)
		freshness := r.freshnessScore(providers.Openings[m.OpeningID], now)

		ranked[i] = model.RankedMatch{
			MatchResult:           m,
			PaidMultiplier:        paid,
			ReliabilityMultiplier: reliability,
			FreshnessScore:        freshness,
			FinalScore:            m.TotalScore * reliability * paid * freshness,
			Tier:                  tier,
		}
	}

	// Bands are formed over base score; the band order itself never changes.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		return ranked[i].OpeningID < ranked[j].OpeningID
	})

	for start := 0; start < len(ranked); {
		end := r.bandEnd(ranked, start)
		sortBand(ranked[start:end])
		start = end
	}

	return ranked
}

// bandEnd returns the exclusive end index of the band anchored at start.
// A match joins the band while anchor - score <= bandWidth, measured from
// the band's first (highest) member; equality joins the upper band.
func (r *Ranker) bandEnd(ranked []model.RankedMatch, start int) int {
	anchor := ranked[start].TotalScore
	end := start + 1
	for end < len(ranked) && anchor-ranked[end].TotalScore <= r.bandWidth {
		end++
	}
	return end
}

// sortBand reorders one band by paid desc, reliability desc, freshness
// desc, base score desc, opening id asc. The id tie-break makes the order a
// total order so repeated runs are byte-identical.
func sortBand(band []model.RankedMatch) {
	sort.Slice(band, func(i, j int) bool {
		a, b := &band[i], &band[j]
		if a.PaidMultiplier != b.PaidMultiplier {
			return a.PaidMultiplier > b.PaidMultiplier
		}
		if a.ReliabilityMultiplier != b.ReliabilityMultiplier {
			return a.ReliabilityMultiplier > b.ReliabilityMultiplier
		}
		if a.FreshnessScore != b.FreshnessScore {
			return a.FreshnessScore > b.FreshnessScore
		}
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		return a.OpeningID < b.OpeningID
	})
}

// paidMultiplier resolves the subscription boost and tier label. Inactive
// or missing subscriptions earn no boost. An explicit priority boost factor
// on the subscription overrides the plan table, clamped to
// [paidBoostFloor, paidBoostCeiling] so the boost can never demote a match
// or dwarf the quality score.
func (r *Ranker) paidMultiplier(sub *model.Subscription) (float64, string) {
	if sub == nil || sub.Status != model.SubscriptionActive {
		return 1.0, string(model.PlanFree)
	}
	if sub.PriorityBoostFactor != nil {
		boost := *sub.PriorityBoostFactor
		if boost < paidBoostFloor {
			boost = paidBoostFloor
		}
		if boost > paidBoostCeiling {
			boost = paidBoostCeiling
		}
		return boost, string(sub.Plan)
	}
	if boost, ok := r.planBoosts[string(sub.Plan)]; ok {
		return boost, string(sub.Plan)
	}
	return 1.0, string(sub.Plan)
}

// reliabilityMultiplier combines verification status, current licensure,
// and referral-history acceptance rate, clamped to
// [reliabilityFloor, reliabilityCeiling].
func (r *Ranker) reliabilityMultiplier(org *model.Organization, licenses []model.License, stats *model.ProviderStats, now time.Time) float64 {
	multiplier := 1.0

	if org != nil {
		switch org.VerificationStatus {
		case model.VerificationVerified:
			multiplier += verifiedBonus
		case model.VerificationUnverified:
			multiplier -= unverifiedPenalty
		}
	}

	for i := range licenses {
		lic := &licenses[i]
		if lic.Status == model.LicenseVerified && lic.ExpirationDate.After(now) {
			multiplier += licensedBonus
			break
		}
	}

	if stats != nil {
		switch rate := stats.AcceptanceRate(minReferralHistory); {
		case rate >= goodAcceptanceRate:
			multiplier += goodAcceptanceBonus
		case rate >= 0 && rate < poorAcceptanceRate:
			multiplier -= poorAcceptancePenalty
		}
	}

	if multiplier < reliabilityFloor {
		multiplier = reliabilityFloor
	}
	if multiplier > reliabilityCeiling {
		multiplier = reliabilityCeiling
	}
	return multiplier
}

// freshnessScore decays with time since the opening's availability was last
// confirmed. Stale confirmations (older than the last window) return zero,
// which zeroes the final score without touching eligibility.
func (r *Ranker) freshnessScore(opening *model.Opening, now time.Time) float64 {
	if opening == nil || opening.LastConfirmedAt == nil {
		return neverConfirmedFreshness
	}
	age := now.Sub(*opening.LastConfirmedAt)
	for _, window := range freshnessWindows {
		if age <= window.within {
			return window.score
		}
	}
	return 0
}
