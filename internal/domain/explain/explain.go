// Package explain derives human-readable rationale, risk flags, and
// explainability text from completed match and ranking output. Everything
// here is a pure transform: advisory text generation that never excludes an
// opening by itself.
package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caremesh/matchd/internal/domain/model"
)

// Explanation wording tiers on the total score.
const (
	excellentExplanationScore = 90
	strongExplanationScore    = 75
	goodExplanationScore      = 60
)

// factorLabels render breakdown keys as prose.
var factorLabels = map[string]string{
	model.FactorCounty:       "location",
	model.FactorFunding:      "funding",
	model.FactorGender:       "gender fit",
	model.FactorAge:          "age range",
	model.FactorAvailability: "availability",
	model.FactorCapability:   "care capability",
}

// MatchExplanation produces a templated sentence naming the two
// highest-scoring factors, worded by total-score tier. Deterministic given
// the same breakdown: factor ties resolve alphabetically.
func MatchExplanation(breakdown map[string]float64, totalScore float64) string {
	top := topFactors(breakdown, 2)
	strengths := "overall compatibility"
	if len(top) > 0 {
		labels := make([]string, len(top))
		for i, f := range top {
			labels[i] = factorLabels[f.name]
			if labels[i] == "" {
				labels[i] = f.name
			}
		}
		strengths = strings.Join(labels, " and ")
	}

	switch {
	case totalScore >= excellentExplanationScore:
		return fmt.Sprintf("Excellent match driven by %s.", strengths)
	case totalScore >= strongExplanationScore:
		return fmt.Sprintf("Strong fit (%.0f%%), led by %s.", totalScore, strengths)
	case totalScore >= goodExplanationScore:
		return fmt.Sprintf("Good alignment on %s; a viable option.", strengths)
	default:
		return fmt.Sprintf("Acceptable match on %s; review carefully before referring.", strengths)
	}
}

type factor struct {
	name  string
	score float64
}

// topFactors returns the n highest-scoring factors, ties broken
// alphabetically so the output is stable.
func topFactors(breakdown map[string]float64, n int) []factor {
	factors := make([]factor, 0, len(breakdown))
	for name, score := range breakdown {
		factors = append(factors, factor{name: name, score: score})
	}
	sort.Slice(factors, func(i, j int) bool {
		if factors[i].score != factors[j].score {
			return factors[i].score > factors[j].score
		}
		return factors[i].name < factors[j].name
	})
	if len(factors) > n {
		factors = factors[:n]
	}
	return factors
}
