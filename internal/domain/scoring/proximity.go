package scoring

import (
	"strings"
)

// Proximity classifies how close an opening's site is to the client's county.
type Proximity int

// Proximity classes, farthest to closest.
const (
	ProximityNone Proximity = iota
	ProximityServed
	ProximityExact
)

// ProximityResolver resolves county proximity for the county scorer. A real
// adjacency or distance data source can be substituted without touching the
// scorer itself.
type ProximityResolver interface {
	// Resolve classifies the relationship between the client county and an
	// opening's site county, given the counties the organization serves.
	Resolve(clientCounty, siteCounty string, countiesServed []string) Proximity
}

// ExactCountyResolver is the shipped resolver: exact county match or
// membership in the organization's served-counties set. Adjacency and
// distance are unmodeled.
type ExactCountyResolver struct{}

// NewExactCountyResolver creates the default resolver.
func NewExactCountyResolver() *ExactCountyResolver {
	return &ExactCountyResolver{}
}

// Resolve implements ProximityResolver with case-insensitive comparison.
func (*ExactCountyResolver) Resolve(clientCounty, siteCounty string, countiesServed []string) Proximity {
	want := normalizeCounty(clientCounty)
	if want == "" {
		return ProximityNone
	}
	if normalizeCounty(siteCounty) == want {
		return ProximityExact
	}
	for _, county := range countiesServed {
		if normalizeCounty(county) == want {
			return ProximityServed
		}
	}
	return ProximityNone
}

func normalizeCounty(county string) string {
	return strings.ToLower(strings.TrimSpace(county))
}

var _ ProximityResolver = (*ExactCountyResolver)(nil)
