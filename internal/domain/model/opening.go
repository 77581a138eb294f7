package model

import "time"

// OpeningStatus is the lifecycle state of an opening.
type OpeningStatus string

// Opening lifecycle states.
const (
	OpeningActive          OpeningStatus = "active"
	OpeningInactive        OpeningStatus = "inactive"
	OpeningFilled          OpeningStatus = "filled"
	OpeningWithdrawn       OpeningStatus = "withdrawn"
	OpeningDraft           OpeningStatus = "draft"
	OpeningPendingApproval OpeningStatus = "pending_approval"
)

// GenderAny means the opening accepts clients of any gender.
const GenderAny = "any"

// Opening represents one fillable slot at a provider site.
type Opening struct {
	ID                string        `json:"id"`
	OrganizationID    string        `json:"organization_id"`
	SiteID            string        `json:"site_id"`
	Status            OpeningStatus `json:"status"`
	SpotsAvailable    int           `json:"spots_available"`
	GenderRequirement string        `json:"gender_requirement"` // "any", "male", or "female"
	AgeMin            *int          `json:"age_min"`            // nil means unbounded below
	AgeMax            *int          `json:"age_max"`            // nil means unbounded above
	FundingAccepted   []string      `json:"funding_accepted"`
	AvailableDate     *time.Time    `json:"available_date"`    // nil means immediately available
	LastConfirmedAt   *time.Time    `json:"last_confirmed_at"` // nil means never confirmed
}
