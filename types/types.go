// Package types holds the wire shapes shared by the directory sources, the
// merge engine, and the aggregator.
package types

// Info is the descriptive block of one API version.
type Info struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Version      string   `json:"version,omitempty"`
	ProviderName string   `json:"x-providerName,omitempty"`
	Categories   []string `json:"x-apisguru-categories,omitempty"`
}

type ExternalDocs struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// ApiVersion is one version of an API as served by the directory sources.
// Timestamps stay strings on the wire; sources are not consistent about
// their formats.
type ApiVersion struct {
	Added          string        `json:"added"`
	Updated        string        `json:"updated,omitempty"`
	SwaggerURL     string        `json:"swaggerUrl,omitempty"`
	SwaggerYamlURL string        `json:"swaggerYamlUrl,omitempty"`
	Info           Info          `json:"info"`
	OpenapiVer     string        `json:"openapiVer,omitempty"`
	Link           string        `json:"link,omitempty"`
	ExternalDocs   *ExternalDocs `json:"externalDocs,omitempty"`
}

// Api is one directory entry: a single API across all its known versions.
// Preferred must be a key of Versions.
type Api struct {
	Added     string                `json:"added"`
	Preferred string                `json:"preferred"`
	Versions  map[string]ApiVersion `json:"versions"`
}

// PreferredVersion returns the version block Preferred points at.
func (a Api) PreferredVersion() (ApiVersion, bool) {
	v, ok := a.Versions[a.Preferred]
	return v, ok
}

// ApiList maps "<provider>[:<name>][:<version>]" ids to entries.
type ApiList map[string]Api

// Metrics is the aggregate view of one source, or of the merged directory.
type Metrics struct {
	NumSpecs     int `json:"numSpecs"`
	NumAPIs      int `json:"numAPIs"`
	NumEndpoints int `json:"numEndpoints"`
}

type Pagination struct {
	Page         int  `json:"page"`
	Limit        int  `json:"limit"`
	TotalResults int  `json:"total_results"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

// ApiSummary is the row shape used by search and pagination responses.
type ApiSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Provider    string   `json:"provider"`
	Preferred   string   `json:"preferred"`
	Categories  []string `json:"categories,omitempty"`
	Source      string   `json:"source,omitempty"`
}

type SearchResults struct {
	Results    []ApiSummary `json:"results"`
	Pagination Pagination   `json:"pagination"`
}

type PaginatedApis struct {
	Results    []ApiSummary `json:"results"`
	Pagination Pagination   `json:"pagination"`
}

// ProviderStats summarizes one provider's footprint in the directory.
type ProviderStats struct {
	Provider     string `json:"provider"`
	APICount     int    `json:"api_count"`
	VersionCount int    `json:"version_count"`
	LatestUpdate string `json:"latest_update,omitempty"`
}

// ConflictInfo is diagnostic output about id overlap between two sources.
type ConflictInfo struct {
	OverlapCount      int      `json:"overlap_count"`
	OverlappingIDs    []string `json:"overlapping_ids"`
	UniqueToPrimary   int      `json:"unique_to_primary"`
	UniqueToSecondary int      `json:"unique_to_secondary"`
}
