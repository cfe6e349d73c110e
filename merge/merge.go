// Package merge contains the pure functions that combine snapshots from the
// directory sources. Precedence is always "secondary wins"; the aggregator
// applies it transitively to get custom > secondary > primary.
package merge

import (
	"log"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"github.com/rawveg/openapi-directory-mcp-sub004/types"
)

// APILists overlays secondary onto primary keyed by id. On id collision the
// secondary entry always wins.
func APILists(primary, secondary types.ApiList) types.ApiList {
	return lo.Assign(primary, secondary)
}

// Providers sanitizes both lists, unions them, and returns a sorted,
// deduplicated result. Blank entries are dropped and logged as anomalies.
func Providers(primary, secondary []string) []string {
	merged := lo.Uniq(append(sanitizeProviders(primary, "primary"), sanitizeProviders(secondary, "secondary")...))
	slices.Sort(merged)
	return merged
}

func sanitizeProviders(providers []string, source string) []string {
	out := make([]string, 0, len(providers))
	for _, p := range providers {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			log.Printf("merge: dropping blank provider entry from %s source", source)
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// Summarize flattens a directory entry into the row shape used by search
// and pagination.
func Summarize(id string, api types.Api) types.ApiSummary {
	summary := types.ApiSummary{
		ID:        id,
		Provider:  strings.SplitN(id, ":", 2)[0],
		Preferred: api.Preferred,
	}
	if v, ok := api.PreferredVersion(); ok {
		summary.Title = v.Info.Title
		summary.Description = v.Info.Description
		summary.Categories = v.Info.Categories
		if v.Info.ProviderName != "" {
			summary.Provider = v.Info.ProviderName
		}
	}
	return summary
}

// ConflictInfo reports id overlap between two sources. Diagnostic only; it
// feeds logs and the metrics approximation, never merge decisions.
func ConflictInfo(primaryIDs, secondaryIDs []string) types.ConflictInfo {
	overlapping := lo.Intersect(primaryIDs, secondaryIDs)
	slices.Sort(overlapping)
	return types.ConflictInfo{
		OverlapCount:      len(overlapping),
		OverlappingIDs:    overlapping,
		UniqueToPrimary:   len(primaryIDs) - len(overlapping),
		UniqueToSecondary: len(secondaryIDs) - len(overlapping),
	}
}

// paginate slices rows to the requested page and fills the bookkeeping
// fields. Page numbering is 1-based.
func paginate(rows []types.ApiSummary, page, limit int) ([]types.ApiSummary, types.Pagination) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	total := len(rows)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	end := start + limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return rows[start:end], types.Pagination{
		Page:         page,
		Limit:        limit,
		TotalResults: total,
		TotalPages:   totalPages,
		HasNext:      page < totalPages,
		HasPrevious:  page > 1,
	}
}

// PaginatedAPIs merges full entries reconstructed from both sources'
// pages, then derives a fresh page slice from the merged set. Naive
// concatenate-then-slice would duplicate or drop rows at source
// boundaries.
func PaginatedAPIs(primary, secondary types.ApiList, page, limit int) types.PaginatedApis {
	merged := APILists(primary, secondary)

	ids := lo.Keys(merged)
	slices.Sort(ids)

	rows := make([]types.ApiSummary, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, Summarize(id, merged[id]))
	}

	pageRows, pagination := paginate(rows, page, limit)
	return types.PaginatedApis{Results: pageRows, Pagination: pagination}
}
