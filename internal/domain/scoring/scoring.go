// Package scoring computes the per-factor compatibility sub-scores between
// a referral and an opening.
//
// Each factor returns a non-negative number bounded by its configured
// weight. Individual factors may award partial fractions, so the summed
// total has a nominal 0-100 ceiling rather than a strict one; exact matches
// outrank partial ones and that is the intended behavior.
package scoring

import (
	"strings"
	"time"

	"github.com/caremesh/matchd/internal/domain/model"
)

// Factor scoring constants.
const (
	servedCountyFraction   = 0.9 // county in the org's served set, not an exact match
	fundingVariantFraction = 0.7 // both codes look like Medical-Assistance variants
	ageNearMissFraction    = 0.5 // outside the range but within the grace window
	ageNearMissYears       = 2
	lateDecayPerDay        = 0.1 // availability decay per day past the desired date
	lateDecayFloor         = 0.3
	noProfileFraction      = 0.5 // unknown capability is not disqualifying
	hoursPerDay            = 24
)

// fundingVariantMarker identifies Medical-Assistance funding variants for
// the partial-compatibility heuristic.
const fundingVariantMarker = "MA"

// Weights configures the nominal contribution of each factor. Defaults sum
// to 100.
type Weights struct {
	County       float64 `koanf:"county" json:"county"`
	Funding      float64 `koanf:"funding" json:"funding"`
	Gender       float64 `koanf:"gender" json:"gender"`
	Age          float64 `koanf:"age" json:"age"`
	Availability float64 `koanf:"availability" json:"availability"`
	Capability   float64 `koanf:"capability" json:"capability"`
}

// DefaultWeights returns the documented default weight set.
func DefaultWeights() Weights {
	return Weights{
		County:       25,
		Funding:      20,
		Gender:       15,
		Age:          15,
		Availability: 15,
		Capability:   10,
	}
}

// Breakdown maps factor name to its awarded sub-score.
type Breakdown = map[string]float64

// Option applies a configuration option to the FactorScorer.
type Option func(*FactorScorer)

// WithWeights overrides the default factor weights.
func WithWeights(w Weights) Option {
	return func(s *FactorScorer) {
		s.weights = w
	}
}

// WithProximityResolver substitutes the county proximity data source.
func WithProximityResolver(r ProximityResolver) Option {
	return func(s *FactorScorer) {
		if r != nil {
			s.proximity = r
		}
	}
}

// WithCapabilityChecks overrides the keyword-to-capability table.
func WithCapabilityChecks(checks []CapabilityCheck) Option {
	return func(s *FactorScorer) {
		s.capabilityChecks = checks
	}
}

// FactorScorer computes the six compatibility sub-scores. It is pure: the
// same inputs always produce the same breakdown.
type FactorScorer struct {
	weights          Weights
	proximity        ProximityResolver
	capabilityChecks []CapabilityCheck
}

// NewFactorScorer creates a scorer with configuration options.
func NewFactorScorer(opts ...Option) *FactorScorer {
	s := &FactorScorer{
		weights:          DefaultWeights(),
		proximity:        NewExactCountyResolver(),
		capabilityChecks: CapabilityChecks,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the active weight set.
func (s *FactorScorer) Weights() Weights {
	return s.weights
}

// ScoreAll runs every factor and returns the breakdown plus the summed
// total. now anchors the availability decay; callers pass the run start so
// one assembler run scores every opening against the same instant.
func (s *FactorScorer) ScoreAll(referral *model.Referral, opening *model.Opening, org *model.Organization, site *model.Site, profile *model.CapabilityProfile, now time.Time) (Breakdown, float64) {
	county := s.CountyScore(referral, org, site)
	funding := s.FundingScore(referral, opening)
	gender := s.GenderScore(referral, opening)
	age := s.AgeScore(referral, opening)
	availability := s.AvailabilityScore(referral, opening, now)
	capability := s.CapabilityScore(referral, profile)

	// Summed in declaration order so repeated runs accumulate identically.
	total := county + funding + gender + age + availability + capability

	breakdown := Breakdown{
		model.FactorCounty:       county,
		model.FactorFunding:      funding,
		model.FactorGender:       gender,
		model.FactorAge:          age,
		model.FactorAvailability: availability,
		model.FactorCapability:   capability,
	}
	return breakdown, total
}

// CountyScore awards full weight for an exact county match, a reduced
// fraction when the client county is merely in the organization's served
// set, and zero otherwise. Proximity resolution is delegated so a real
// adjacency source can replace the exact-match stub.
func (s *FactorScorer) CountyScore(referral *model.Referral, org *model.Organization, site *model.Site) float64 {
	siteCounty := ""
	if site != nil {
		siteCounty = site.County
	}
	var served []string
	if org != nil {
		served = org.CountiesServed
	}
	switch s.proximity.Resolve(referral.ClientCounty, siteCounty, served) {
	case ProximityExact:
		return s.weights.County
	case ProximityServed:
		return s.weights.County * servedCountyFraction
	default:
		return 0
	}
}

// FundingScore awards full weight on an exact case-insensitive match and a
// reduced fraction when both the referral's source and an accepted code are
// Medical-Assistance variants.
func (s *FactorScorer) FundingScore(referral *model.Referral, opening *model.Opening) float64 {
	source := strings.ToUpper(strings.TrimSpace(referral.FundingSource))
	if source == "" {
		return 0
	}
	variant := false
	for _, code := range opening.FundingAccepted {
		accepted := strings.ToUpper(strings.TrimSpace(code))
		if accepted == source {
			return s.weights.Funding
		}
		if strings.Contains(accepted, fundingVariantMarker) && strings.Contains(source, fundingVariantMarker) {
			variant = true
		}
	}
	if variant {
		return s.weights.Funding * fundingVariantFraction
	}
	return 0
}

// GenderScore awards full weight when either side is unspecified or they
// agree, zero otherwise.
func (s *FactorScorer) GenderScore(referral *model.Referral, opening *model.Opening) float64 {
	req := strings.ToLower(opening.GenderRequirement)
	got := strings.ToLower(referral.ClientGender)
	if req == "" || req == model.GenderAny || got == "" || req == got {
		return s.weights.Gender
	}
	return 0
}

// AgeScore gives the referral the benefit of the doubt when age is unknown
// (full weight here only, never in eligibility), full weight inside the
// declared range, half weight within the grace window of either bound, and
// zero beyond it.
func (s *FactorScorer) AgeScore(referral *model.Referral, opening *model.Opening) float64 {
	if referral.ClientAge == nil {
		return s.weights.Age
	}
	age := *referral.ClientAge

	belowBy, aboveBy := 0, 0
	if opening.AgeMin != nil && age < *opening.AgeMin {
		belowBy = *opening.AgeMin - age
	}
	if opening.AgeMax != nil && age > *opening.AgeMax {
		aboveBy = age - *opening.AgeMax
	}
	switch {
	case belowBy == 0 && aboveBy == 0:
		return s.weights.Age
	case belowBy > 0 && belowBy <= ageNearMissYears, aboveBy > 0 && aboveBy <= ageNearMissYears:
		return s.weights.Age * ageNearMissFraction
	default:
		return 0
	}
}

// AvailabilityScore returns zero for openings that cannot take anyone, full
// weight when the opening is available by the desired start date, and a
// linear decay of lateDecayPerDay per day late, floored at lateDecayFloor.
func (s *FactorScorer) AvailabilityScore(referral *model.Referral, opening *model.Opening, now time.Time) float64 {
	if opening.Status != model.OpeningActive || opening.SpotsAvailable <= 0 {
		return 0
	}
	if opening.AvailableDate == nil {
		return s.weights.Availability
	}
	desired := now
	if referral.DesiredStartDate != nil {
		desired = *referral.DesiredStartDate
	}
	late := opening.AvailableDate.Sub(desired)
	if late <= 0 {
		return s.weights.Availability
	}
	daysLate := late.Hours() / hoursPerDay
	multiplier := 1 - lateDecayPerDay*daysLate
	if multiplier < lateDecayFloor {
		multiplier = lateDecayFloor
	}
	return s.weights.Availability * multiplier
}

// CapabilityScore starts at full weight and subtracts a proportional
// penalty for every documented need the profile does not support. With no
// profile at all it returns half weight: unknown is not disqualifying.
// The score floors at zero.
func (s *FactorScorer) CapabilityScore(referral *model.Referral, profile *model.CapabilityProfile) float64 {
	if profile == nil {
		return s.weights.Capability * noProfileFraction
	}
	text := strings.ToLower(referral.BehavioralSummary + " " + referral.MedicalSummary)
	fraction := 1.0
	for i := range s.capabilityChecks {
		check := &s.capabilityChecks[i]
		if mentionsAny(text, check.Keywords) && !check.Supported(profile) {
			fraction -= check.Penalty
		}
	}
	if fraction < 0 {
		fraction = 0
	}
	return s.weights.Capability * fraction
}
