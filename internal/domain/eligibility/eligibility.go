// Package eligibility implements the hard-constraint checker that excludes
// an opening from matching regardless of how well it would score.
package eligibility

import (
	"fmt"
	"strings"

	"github.com/caremesh/matchd/internal/domain/model"
)

// Violation types reported by the checker.
const (
	ViolationFunding = "funding"
	ViolationGender  = "gender"
	ViolationAge     = "age"
	ViolationLicense = "license"
)

// Violation is one failed hard constraint.
type Violation struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Constraints configures which hard rules apply. Callers pass the struct by
// value; the checker never mutates it.
type Constraints struct {
	RequireFundingMatch    bool `koanf:"require_funding_match" json:"require_funding_match"`
	RequireGenderMatch     bool `koanf:"require_gender_match" json:"require_gender_match"`
	RequireAgeRangeMatch   bool `koanf:"require_age_range_match" json:"require_age_range_match"`
	RequireVerifiedLicense bool `koanf:"require_verified_license" json:"require_verified_license"`
	RequireCountyProximity bool `koanf:"require_county_proximity" json:"require_county_proximity"`
	MaxCountyDistance      int  `koanf:"max_county_distance" json:"max_county_distance"`
}

// DefaultConstraints returns the documented default constraint set.
func DefaultConstraints() Constraints {
	return Constraints{
		RequireFundingMatch:    true,
		RequireGenderMatch:     true,
		RequireAgeRangeMatch:   true,
		RequireVerifiedLicense: true,
		RequireCountyProximity: false,
		MaxCountyDistance:      50,
	}
}

// Checker evaluates the hard constraints for one referral/opening pair.
type Checker struct {
	constraints Constraints
}

// Option applies a configuration option to the Checker.
type Option func(*Checker)

// WithConstraints overrides the default constraint set.
func WithConstraints(c Constraints) Option {
	return func(ch *Checker) {
		ch.constraints = c
	}
}

// NewChecker creates a Checker with configuration options.
func NewChecker(opts ...Option) *Checker {
	ch := &Checker{constraints: DefaultConstraints()}
	for _, opt := range opts {
		opt(ch)
	}
	return ch
}

// Constraints returns the active constraint set.
func (ch *Checker) Constraints() Constraints {
	return ch.constraints
}

// Check evaluates every enabled rule independently (no short-circuit) and
// returns the full violation list. An empty list means eligible.
func (ch *Checker) Check(referral *model.Referral, opening *model.Opening, org *model.Organization, license *model.License) []Violation {
	var violations []Violation

	if ch.constraints.RequireFundingMatch {
		if v, ok := checkFunding(referral, opening); !ok {
			violations = append(violations, v)
		}
	}
	if ch.constraints.RequireGenderMatch {
		if v, ok := checkGender(referral, opening); !ok {
			violations = append(violations, v)
		}
	}
	if ch.constraints.RequireAgeRangeMatch {
		violations = append(violations, checkAge(referral, opening)...)
	}
	if ch.constraints.RequireVerifiedLicense {
		if v, ok := checkLicense(license, org); !ok {
			violations = append(violations, v)
		}
	}

	return violations
}

// checkFunding requires the opening's accepted-funding set to contain the
// referral's funding source, compared case-insensitively.
func checkFunding(referral *model.Referral, opening *model.Opening) (Violation, bool) {
	want := strings.ToLower(strings.TrimSpace(referral.FundingSource))
	for _, code := range opening.FundingAccepted {
		if strings.ToLower(strings.TrimSpace(code)) == want {
			return Violation{}, true
		}
	}
	return Violation{
		Type:    ViolationFunding,
		Message: fmt.Sprintf("opening does not accept funding source %q", referral.FundingSource),
	}, false
}

// checkGender passes when the opening accepts any gender, the referral does
// not specify one, or the two agree.
func checkGender(referral *model.Referral, opening *model.Opening) (Violation, bool) {
	req := strings.ToLower(opening.GenderRequirement)
	if req == "" || req == model.GenderAny {
		return Violation{}, true
	}
	got := strings.ToLower(referral.ClientGender)
	if got == "" || got == req {
		return Violation{}, true
	}
	return Violation{
		Type:    ViolationGender,
		Message: fmt.Sprintf("opening requires gender %q, referral specifies %q", opening.GenderRequirement, referral.ClientGender),
	}, false
}

// checkAge evaluates below-min and above-max independently so a
// misconfigured range (min > max) still reports both bounds.
func checkAge(referral *model.Referral, opening *model.Opening) []Violation {
	if referral.ClientAge == nil {
		return nil // unknown age is not a hard failure
	}
	age := *referral.ClientAge

	var violations []Violation
	if opening.AgeMin != nil && age < *opening.AgeMin {
		violations = append(violations, Violation{
			Type:    ViolationAge,
			Message: fmt.Sprintf("client age %d is below the opening minimum of %d", age, *opening.AgeMin),
		})
	}
	if opening.AgeMax != nil && age > *opening.AgeMax {
		violations = append(violations, Violation{
			Type:    ViolationAge,
			Message: fmt.Sprintf("client age %d is above the opening maximum of %d", age, *opening.AgeMax),
		})
	}
	return violations
}

// checkLicense requires the organization to hold a license whose status is
// exactly "verified".
func checkLicense(license *model.License, org *model.Organization) (Violation, bool) {
	if license != nil && license.Status == model.LicenseVerified {
		return Violation{}, true
	}
	name := "organization"
	if org != nil && org.Name != "" {
		name = org.Name
	}
	return Violation{
		Type:    ViolationLicense,
		Message: fmt.Sprintf("%s does not hold a verified license", name),
	}, false
}
