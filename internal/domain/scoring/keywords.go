package scoring

import (
	"strings"

	"github.com/caremesh/matchd/internal/domain/model"
)

// CapabilityCheck maps intake keywords to the capability a site must
// document to avoid a penalty. Keeping the mapping in an explicit table
// keeps the heuristic auditable and extensible; it is substring scanning,
// not NLP.
type CapabilityCheck struct {
	// Name identifies the need, used in logs and tests.
	Name string

	// Keywords trigger the check when any of them appears in the referral's
	// behavioral or medical summary (case-insensitive substring match).
	Keywords []string

	// Penalty is the fraction of the capability weight subtracted when the
	// profile does not document support.
	Penalty float64

	// Supported reports whether the profile documents matching support.
	Supported func(p *model.CapabilityProfile) bool
}

// CapabilityChecks is the active keyword-to-capability table.
var CapabilityChecks = []CapabilityCheck{
	{
		Name:     "physical aggression",
		Keywords: []string{"aggression", "aggressive"},
		Penalty:  0.5,
		Supported: func(p *model.CapabilityProfile) bool {
			return p.AggressionPhysical.AtLeast(model.CapabilityModerate)
		},
	},
	{
		Name:     "elopement",
		Keywords: []string{"elopement", "elope", "wander"},
		Penalty:  0.4,
		Supported: func(p *model.CapabilityProfile) bool {
			return p.Elopement.AtLeast(model.CapabilityModerate)
		},
	},
	{
		Name:     "tube feeding",
		Keywords: []string{"tube feeding", "feeding tube", "g-tube"},
		Penalty:  0.4,
		Supported: func(p *model.CapabilityProfile) bool {
			return p.TubeFeeding
		},
	},
	{
		Name:     "ventilator",
		Keywords: []string{"ventilator", "vent dependent"},
		Penalty:  0.5,
		Supported: func(p *model.CapabilityProfile) bool {
			return p.Ventilator
		},
	},
	{
		Name:     "seizure",
		Keywords: []string{"seizure", "epilepsy"},
		Penalty:  0.3,
		Supported: func(p *model.CapabilityProfile) bool {
			return p.SeizureManagement
		},
	},
}

// mentionsAny reports whether any keyword appears in the lowercased text.
func mentionsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
