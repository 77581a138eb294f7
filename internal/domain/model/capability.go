package model

// CapabilityLevel grades how much of a behavioral or medical need a site can
// support.
type CapabilityLevel string

// Capability levels, lowest to highest.
const (
	CapabilityNone     CapabilityLevel = "none"
	CapabilityMild     CapabilityLevel = "mild"
	CapabilityModerate CapabilityLevel = "moderate"
	CapabilitySevere   CapabilityLevel = "severe"
)

// AtLeast reports whether l documents support at or above level min.
func (l CapabilityLevel) AtLeast(min CapabilityLevel) bool {
	return levelOrder(l) >= levelOrder(min)
}

func levelOrder(l CapabilityLevel) int {
	switch l {
	case CapabilityMild:
		return 1
	case CapabilityModerate:
		return 2
	case CapabilitySevere:
		return 3
	default:
		return 0
	}
}

// CapabilityProfile documents the behavioral and medical needs a site (or,
// as a fallback, a whole organization) can support. Exactly one of SiteID
// and OrganizationID is normally set; site-level profiles take precedence
// during matching.
type CapabilityProfile struct {
	ID             string `json:"id"`
	SiteID         string `json:"site_id"`         // set for site-level profiles
	OrganizationID string `json:"organization_id"` // set for organization-level profiles

	AggressionPhysical CapabilityLevel `json:"aggression_physical"`
	Elopement          CapabilityLevel `json:"elopement"`
	TubeFeeding        bool            `json:"tube_feeding"`
	Ventilator         bool            `json:"ventilator"`
	SeizureManagement  bool            `json:"seizure_management"`
}
