package model

// Factor names used as ScoreBreakdown keys.
const (
	FactorCounty       = "county"
	FactorFunding      = "funding"
	FactorGender       = "gender"
	FactorAge          = "age"
	FactorAvailability = "availability"
	FactorCapability   = "capability"
)

// Quality tiers derived from the total compatibility score.
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityFair      = "fair"
)

// MatchResult is one scored referral/opening pairing produced by the match
// assembler. TotalScore has a nominal 0-100 ceiling but may exceed it when
// individual factors award above their nominal weight; that is accepted
// behavior, exact matches outrank partial ones.
type MatchResult struct {
	OpeningID      string             `json:"opening_id"`
	OrganizationID string             `json:"organization_id"`
	SiteID         string             `json:"site_id"`
	ScoreBreakdown map[string]float64 `json:"score_breakdown"`
	TotalScore     float64            `json:"total_score"`
	Quality        string             `json:"quality"`
}

// RunMeta describes one assembler run. ConfigUsed echoes the weight,
// constraint, and threshold configuration active for the run so stored
// results remain auditable after the configuration changes.
type RunMeta struct {
	OpeningsSearched int                    `json:"openings_searched"`
	MatchesFound     int                    `json:"matches_found"`
	TopMatchScore    float64                `json:"top_match_score"`
	AvgMatchScore    float64                `json:"avg_match_score"`
	LatencyMS        int64                  `json:"latency_ms"`
	ConfigUsed       map[string]interface{} `json:"config_used"`
}

// MatchOutcome is the assembler's full output contract.
type MatchOutcome struct {
	Results []MatchResult `json:"results"`
	Meta    RunMeta       `json:"meta"`
}

// RankedMatch is a MatchResult after the fairness-aware second pass.
// FinalScore = TotalScore x ReliabilityMultiplier x PaidMultiplier x
// FreshnessScore; the multipliers are clamped to their documented ranges.
type RankedMatch struct {
	MatchResult

	PaidMultiplier        float64 `json:"paid_multiplier"`
	ReliabilityMultiplier float64 `json:"reliability_multiplier"`
	FreshnessScore        float64 `json:"freshness_score"`
	FinalScore            float64 `json:"final_score"`
	Tier                  string  `json:"tier"` // subscription plan label, "free" when none
}

// RankedOutcome is the ranked shortlist stored per referral and returned to
// dashboard readers.
type RankedOutcome struct {
	ReferralID string        `json:"referral_id"`
	Results    []RankedMatch `json:"results"`
	Meta       RunMeta       `json:"meta"`
}

// Explanation is the on-demand rationale bundle for one ranked match.
type Explanation struct {
	ReferralID        string   `json:"referral_id"`
	OpeningID         string   `json:"opening_id"`
	Explanation       string   `json:"explanation"`
	RiskFlags         []string `json:"risk_flags"`
	MatchedBecause    []string `json:"matched_because"`
	PotentialConcerns []string `json:"potential_concerns"`
}

// Snapshot bundles the reference data loaded from the persistence
// collaborator. The engine treats it as read-only.
type Snapshot struct {
	Referrals          []Referral          `json:"referrals"`
	Openings           []Opening           `json:"openings"`
	Organizations      []Organization      `json:"organizations"`
	Sites              []Site              `json:"sites"`
	Licenses           []License           `json:"licenses"`
	CapabilityProfiles []CapabilityProfile `json:"capability_profiles"`
	Subscriptions      []Subscription      `json:"subscriptions"`
	ProviderStats      []ProviderStats     `json:"provider_stats"`
}
