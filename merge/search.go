package merge

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/rawveg/openapi-directory-mcp-sub004/types"
)

const (
	SourcePrimary   = "primary"
	SourceSecondary = "secondary"
	SourceCustom    = "custom"
)

// relevance scores, highest to lowest.
const (
	scoreProviderExact     = 100
	scoreProviderSubstring = 80
	scoreIDPrefix          = 60
	scoreIDSubstring       = 40
	scoreTitleSubstring    = 20
	scoreFallback          = 10
)

func relevance(row types.ApiSummary, query string) int {
	q := strings.ToLower(query)
	provider := strings.ToLower(row.Provider)
	id := strings.ToLower(row.ID)
	title := strings.ToLower(row.Title)

	switch {
	case provider == q:
		return scoreProviderExact
	case strings.Contains(provider, q):
		return scoreProviderSubstring
	case strings.HasPrefix(id, q):
		return scoreIDPrefix
	case strings.Contains(id, q):
		return scoreIDSubstring
	case strings.Contains(title, q):
		return scoreTitleSubstring
	}
	return scoreFallback
}

// SearchResults combines search rows from both sources and re-ranks the
// union deterministically. Rows are tagged with their source, deduplicated
// by id with secondary overwriting primary, scored, tie-broken by a +1
// secondary bonus and then by id, and finally sliced to the requested page.
func SearchResults(primary, secondary []types.ApiSummary, query string, page, limit int) types.SearchResults {
	byID := make(map[string]types.ApiSummary, len(primary)+len(secondary))
	for _, row := range primary {
		row.Source = SourcePrimary
		byID[row.ID] = row
	}
	for _, row := range secondary {
		row.Source = SourceSecondary
		byID[row.ID] = row
	}

	rows := make([]types.ApiSummary, 0, len(byID))
	for _, row := range byID {
		rows = append(rows, row)
	}

	score := func(row types.ApiSummary) int {
		s := relevance(row, query)
		if row.Source == SourceSecondary {
			s++
		}
		return s
	}
	slices.SortFunc(rows, func(a, b types.ApiSummary) int {
		sa, sb := score(a), score(b)
		if sa != sb {
			return sb - sa
		}
		return strings.Compare(a.ID, b.ID)
	})

	pageRows, pagination := paginate(rows, page, limit)
	return types.SearchResults{Results: pageRows, Pagination: pagination}
}
