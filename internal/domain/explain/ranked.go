package explain

import (
	"fmt"
	"time"

	"github.com/caremesh/matchd/internal/domain/model"
)

// Explainability thresholds on ranked-match fields.
const (
	highBaseScore        = 80
	freshConfirmScore    = 0.9
	reliableMultiplier   = 1.05
	staleConcernScore    = 0.8
	unreliableMultiplier = 1.0
)

// Explainability is the "matched because / potential concerns" pair the
// dashboard renders next to a ranked match.
type Explainability struct {
	MatchedBecause    []string `json:"matched_because"`
	PotentialConcerns []string `json:"potential_concerns"`
}

// Explain turns a ranked match's multipliers into positive signals and
// concerns. Purely derivative of already-computed fields; no new scoring
// logic. now anchors the hours-since-confirmation wording.
func Explain(match *model.RankedMatch, opening *model.Opening, now time.Time) Explainability {
	var e Explainability

	if match.TotalScore >= highBaseScore {
		e.MatchedBecause = append(e.MatchedBecause, "Excellent compatibility match")
	}
	if match.FreshnessScore >= freshConfirmScore {
		e.MatchedBecause = append(e.MatchedBecause, "Recently confirmed availability")
	}
	if match.ReliabilityMultiplier > reliableMultiplier {
		e.MatchedBecause = append(e.MatchedBecause, "Highly reliable provider")
	}

	if match.FreshnessScore < staleConcernScore {
		note := "Availability has not been confirmed"
		if opening != nil && opening.LastConfirmedAt != nil {
			hours := int(now.Sub(*opening.LastConfirmedAt).Hours())
			note = fmt.Sprintf("Availability last confirmed %d hours ago", hours)
		}
		e.PotentialConcerns = append(e.PotentialConcerns, note)
	}
	if match.ReliabilityMultiplier < unreliableMultiplier {
		e.PotentialConcerns = append(e.PotentialConcerns, "Lower historical responsiveness")
	}

	return e
}
