package explain

import (
	"strings"

	"github.com/caremesh/matchd/internal/domain/model"
)

// lowConfidenceScore is the total score below which a match earns a
// low-confidence flag.
const lowConfidenceScore = 60

// RiskCheck maps intake keywords to a safety flag. The explicit table keeps
// the keyword heuristic auditable; it is substring scanning, not NLP.
type RiskCheck struct {
	Flag     string
	Keywords []string
}

// RiskChecks is the active keyword-to-flag table, in report order.
var RiskChecks = []RiskCheck{
	{Flag: "History of aggression or violence", Keywords: []string{"aggression", "aggressive", "violence", "violent"}},
	{Flag: "Self-harm risk", Keywords: []string{"self-harm", "self harm", "suicid"}},
	{Flag: "Elopement / flight risk", Keywords: []string{"elopement", "elope", "flight risk", "wander"}},
	{Flag: "Complex medical: ventilator/trach", Keywords: []string{"ventilator", "trach"}},
}

// Urgency and confidence flag text.
const (
	FlagCrisisPlacement = "Crisis placement - expedited review required"
	FlagLowConfidence   = "Low match confidence"
)

// RiskFlags keyword-scans the referral's free text and inspects the paired
// match, returning flags in table order. An empty slice means no risk
// language is attached downstream.
func RiskFlags(referral *model.Referral, match *model.MatchResult) []string {
	text := strings.ToLower(referral.BehavioralSummary + " " + referral.MedicalSummary)

	var flags []string
	for _, check := range RiskChecks {
		for _, kw := range check.Keywords {
			if strings.Contains(text, kw) {
				flags = append(flags, check.Flag)
				break
			}
		}
	}
	if referral.Urgency == model.UrgencyCrisis {
		flags = append(flags, FlagCrisisPlacement)
	}
	if match != nil && match.TotalScore < lowConfidenceScore {
		flags = append(flags, FlagLowConfidence)
	}
	return flags
}
