package mcp

import (
	"github.com/rawveg/openapi-directory-mcp-sub004/manifest"
	"github.com/rawveg/openapi-directory-mcp-sub004/spec"
	"github.com/rawveg/openapi-directory-mcp-sub004/types"
)

type ListApisInput struct{}

type ListApisOutput struct {
	Apis types.ApiList `json:"apis"`
}

type SearchApisInput struct {
	Query    string `json:"query" description:"Free text matched against provider, id, and title"`
	Provider string `json:"provider,omitempty" description:"Restrict results to one provider"`
	Page     int    `json:"page,omitempty" description:"1-based page number"`
	Limit    int    `json:"limit,omitempty" description:"Rows per page, default 10"`
}

type SearchApisOutput struct {
	Results    []types.ApiSummary `json:"results"`
	Pagination types.Pagination   `json:"pagination"`
}

type GetPaginatedApisInput struct {
	Page  int `json:"page,omitempty" description:"1-based page number"`
	Limit int `json:"limit,omitempty" description:"Rows per page, default 10"`
}

type GetPaginatedApisOutput struct {
	Results    []types.ApiSummary `json:"results"`
	Pagination types.Pagination   `json:"pagination"`
}

type GetApiInput struct {
	Provider string `json:"provider" description:"Provider name, e.g. googleapis.com or custom"`
	API      string `json:"api,omitempty" description:"Service name within the provider, if any"`
}

type GetApiOutput struct {
	ID  string    `json:"id"`
	API types.Api `json:"api"`
}

type GetMetricsInput struct{}

type GetMetricsOutput struct {
	Metrics types.Metrics `json:"metrics"`
}

type GetProviderStatsInput struct {
	Provider string `json:"provider" description:"Provider name to summarize"`
}

type GetProviderStatsOutput struct {
	Stats types.ProviderStats `json:"stats"`
}

type ListProvidersInput struct{}

type ListProvidersOutput struct {
	Providers []string `json:"providers"`
}

type ImportSpecInput struct {
	Source       string `json:"source" description:"File path or http(s) URL of the spec"`
	Name         string `json:"name,omitempty" description:"Import name, derived from the source when empty"`
	SkipSecurity bool   `json:"skipSecurity,omitempty" description:"Bypass the security scan"`
}

type ImportSpecOutput struct {
	Entry manifest.Entry `json:"entry"`
}

type ValidateSpecInput struct {
	Source string `json:"source" description:"File path or http(s) URL of the spec"`
}

type ValidateSpecOutput struct {
	Result spec.ValidationResult `json:"result"`
}

type ListCustomSpecsInput struct{}

type ListCustomSpecsOutput struct {
	Specs []manifest.Entry `json:"specs"`
}

type RemoveCustomSpecInput struct {
	ID string `json:"id" description:"Custom spec id, custom:<name>:<version>"`
}

type RemoveCustomSpecOutput struct {
	Removed bool `json:"removed"`
}
