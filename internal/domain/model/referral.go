// Package model contains domain models passed between layers.
//
// Every type here is an immutable value snapshot: the engine reads them and
// never writes back. Persistence, validation of shapes, and mutation all
// belong to the calling collaborators.
package model

import "time"

// Urgency classifies how quickly a referral needs placement.
type Urgency string

// Urgency levels, lowest to highest.
const (
	UrgencyRoutine Urgency = "routine"
	UrgencyUrgent  Urgency = "urgent"
	UrgencyCrisis  Urgency = "crisis"
)

// Referral represents one client placement request.
//
// Optional fields are pointers; a nil pointer means "unknown", which the
// scorers treat as partial information rather than an error.
type Referral struct {
	ID                string     `json:"id"`
	ClientCounty      string     `json:"client_county"`
	ClientGender      string     `json:"client_gender"` // "male", "female", or "" when unspecified
	ClientAge         *int       `json:"client_age"`    // nil when unknown
	FundingSource     string     `json:"funding_source"`
	DesiredStartDate  *time.Time `json:"desired_start_date"` // nil means "as soon as possible"
	Urgency           Urgency    `json:"urgency"`
	BehavioralSummary string     `json:"behavioral_summary"` // free text from intake
	MedicalSummary    string     `json:"medical_summary"`    // free text from intake
}
