// Package registry is the client for the primary public API directory.
// It is a black box to the rest of the system: it fetches raw JSON
// snapshots and returns typed values, nothing more.
package registry

import (
	"encoding/json"
	"log"
	"strings"

	"golang.org/x/xerrors"

	"github.com/rawveg/openapi-directory-mcp-sub004/apierror"
	"github.com/rawveg/openapi-directory-mcp-sub004/merge"
	"github.com/rawveg/openapi-directory-mcp-sub004/types"
	"github.com/rawveg/openapi-directory-mcp-sub004/utils"
)

const (
	defaultBaseURL = "https://api.apis.guru/v2"
	defaultRetry   = 3
)

type Client struct {
	baseURL string
	apiKey  string
	retry   int
}

type option func(*Client)

func WithBaseURL(url string) option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

func WithAPIKey(key string) option {
	return func(c *Client) { c.apiKey = key }
}

func WithRetry(retry int) option {
	return func(c *Client) { c.retry = retry }
}

func NewClient(opts ...option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  utils.LookupEnv("OPENAPI_DIRECTORY_API_KEY", ""),
		retry:   defaultRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) fetch(path string, out interface{}) error {
	url := c.baseURL + path
	body, err := utils.FetchURL(url, c.apiKey, c.retry)
	if err != nil {
		return apierror.Classify(err, apierror.Context{Operation: "fetch " + path, Source: merge.SourcePrimary})
	}
	if err := json.Unmarshal(body, out); err != nil {
		return xerrors.Errorf("failed to decode %s: %w", url, err)
	}
	return nil
}

// List returns the full directory snapshot.
func (c *Client) List() (types.ApiList, error) {
	log.Printf("Fetching API list from %s", c.baseURL)
	var list types.ApiList
	if err := c.fetch("/list.json", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Metrics() (types.Metrics, error) {
	var metrics types.Metrics
	if err := c.fetch("/metrics.json", &metrics); err != nil {
		return types.Metrics{}, err
	}
	return metrics, nil
}

type providersResponse struct {
	Data []string `json:"data"`
}

func (c *Client) Providers() ([]string, error) {
	var resp providersResponse
	if err := c.fetch("/providers.json", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Search fetches the list snapshot and filters it client side; the source
// has no search endpoint. Rows come back unranked, the merge engine scores
// them.
func (c *Client) Search(query, provider string) ([]types.ApiSummary, error) {
	list, err := c.List()
	if err != nil {
		return nil, err
	}
	return FilterList(list, query, provider), nil
}

// FilterList reduces a snapshot to the summary rows matching query and the
// optional provider restriction.
func FilterList(list types.ApiList, query, provider string) []types.ApiSummary {
	q := strings.ToLower(query)

	var rows []types.ApiSummary
	for id, api := range list {
		row := merge.Summarize(id, api)
		if provider != "" && row.Provider != provider {
			continue
		}
		if q != "" && !matches(row, q) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func matches(row types.ApiSummary, q string) bool {
	return strings.Contains(strings.ToLower(row.ID), q) ||
		strings.Contains(strings.ToLower(row.Title), q) ||
		strings.Contains(strings.ToLower(row.Provider), q) ||
		strings.Contains(strings.ToLower(row.Description), q)
}
