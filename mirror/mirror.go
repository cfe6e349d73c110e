// Package mirror is the client for the community-curated secondary
// directory. Same wire shape as the primary, different host; its entries
// take precedence over the primary's on id conflicts.
package mirror

import (
	"encoding/json"
	"log"
	"strings"

	"golang.org/x/xerrors"

	"github.com/rawveg/openapi-directory-mcp-sub004/apierror"
	"github.com/rawveg/openapi-directory-mcp-sub004/merge"
	"github.com/rawveg/openapi-directory-mcp-sub004/registry"
	"github.com/rawveg/openapi-directory-mcp-sub004/types"
	"github.com/rawveg/openapi-directory-mcp-sub004/utils"
)

const (
	defaultBaseURL = "https://api.openapidirectory.com"
	defaultRetry   = 3
)

type Client struct {
	baseURL string
	retry   int
}

type option func(*Client)

func WithBaseURL(url string) option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

func WithRetry(retry int) option {
	return func(c *Client) { c.retry = retry }
}

func NewClient(opts ...option) *Client {
	c := &Client{
		baseURL: utils.LookupEnv("OPENAPI_DIRECTORY_MIRROR_URL", defaultBaseURL),
		retry:   defaultRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) fetch(path string, out interface{}) error {
	url := c.baseURL + path
	body, err := utils.FetchURL(url, "", c.retry)
	if err != nil {
		return apierror.Classify(err, apierror.Context{Operation: "fetch " + path, Source: merge.SourceSecondary})
	}
	if err := json.Unmarshal(body, out); err != nil {
		return xerrors.Errorf("failed to decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) List() (types.ApiList, error) {
	log.Printf("Fetching mirror API list from %s", c.baseURL)
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

// Providers on the mirror is a plain JSON array, unlike the primary's
// enveloped response.
func (c *Client) Providers() ([]string, error) {
	var providers []string
	if err := c.fetch("/providers.json", &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

func (c *Client) Search(query, provider string) ([]types.ApiSummary, error) {
	list, err := c.List()
	if err != nil {
		return nil, err
	}
	return registry.FilterList(list, query, provider), nil
}
