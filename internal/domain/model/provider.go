package model

import "time"

// Verification states for an organization.
const (
	VerificationVerified   = "verified"
	VerificationUnverified = "unverified"
	VerificationPending    = "pending"
)

// Organization is a care provider operating one or more sites.
type Organization struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	CountiesServed     []string `json:"counties_served"`
	VerificationStatus string   `json:"verification_status"`
}

// Site is a physical location belonging to an organization.
type Site struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	County         string `json:"county"`
}

// LicenseVerified is the only license status that satisfies the
// verified-license eligibility constraint.
const LicenseVerified = "verified"

// License is a care license held by an organization.
type License struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Status         string    `json:"status"`
	ExpirationDate time.Time `json:"expiration_date"`
}

// SubscriptionPlan identifies a paid placement tier.
type SubscriptionPlan string

// Subscription plans, lowest to highest boost.
const (
	PlanFree         SubscriptionPlan = "free"
	PlanBasic        SubscriptionPlan = "basic"
	PlanProfessional SubscriptionPlan = "professional"
	PlanEnterprise   SubscriptionPlan = "enterprise"
)

// SubscriptionActive is the only subscription status that earns a paid boost.
const SubscriptionActive = "active"

// Subscription describes an organization's paid placement tier.
type Subscription struct {
	OrganizationID      string           `json:"organization_id"`
	Plan                SubscriptionPlan `json:"plan"`
	Status              string           `json:"status"`
	PriorityBoostFactor *float64         `json:"priority_boost_factor"` // explicit override, nil when unset
}

// ProviderStats aggregates an organization's referral history, used for the
// acceptance-rate component of the reliability multiplier.
type ProviderStats struct {
	OrganizationID    string `json:"organization_id"`
	ReferralsReceived int    `json:"referrals_received"`
	ReferralsAccepted int    `json:"referrals_accepted"`
}

// AcceptanceRate returns accepted/received, or -1 when the organization has
// fewer than min prior referrals and the rate is not meaningful.
func (p ProviderStats) AcceptanceRate(min int) float64 {
	if p.ReferralsReceived < min || p.ReferralsReceived == 0 {
		return -1
	}
	return float64(p.ReferralsAccepted) / float64(p.ReferralsReceived)
}
