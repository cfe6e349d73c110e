package merge

import (
	"math"

	"github.com/samber/lo"

	"github.com/rawveg/openapi-directory-mcp-sub004/types"
)

// Metrics aggregates the metrics of two sources without double-counting
// overlap. NumAPIs is exact (union of ids). NumSpecs subtracts the overlap
// count from the naive sum. NumEndpoints is a documented approximation:
// the primary's reported endpoints are scaled by the fraction of ids unique
// to the primary, then all secondary endpoints are added - exact counting
// would require fetching every spec.
func Metrics(primary, secondary types.Metrics, primaryIDs, secondaryIDs []string) types.Metrics {
	union := lo.Union(primaryIDs, secondaryIDs)
	overlap := len(primaryIDs) + len(secondaryIDs) - len(union)

	numSpecs := primary.NumSpecs + secondary.NumSpecs - overlap
	if numSpecs < 0 {
		numSpecs = 0
	}

	var primaryOnlyFraction float64
	if len(primaryIDs) > 0 {
		primaryOnlyFraction = float64(len(primaryIDs)-overlap) / float64(len(primaryIDs))
	}
	numEndpoints := int(math.Round(float64(primary.NumEndpoints)*primaryOnlyFraction)) + secondary.NumEndpoints

	return types.Metrics{
		NumAPIs:      len(union),
		NumSpecs:     numSpecs,
		NumEndpoints: numEndpoints,
	}
}
