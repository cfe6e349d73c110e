// Package directory composes the primary registry, the secondary mirror,
// and locally imported specs behind a single cached query surface.
// Precedence on id conflicts is custom > secondary > primary.
package directory

import (
	"log"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/samber/lo"

	"github.com/rawveg/openapi-directory-mcp-sub004/apierror"
	"github.com/rawveg/openapi-directory-mcp-sub004/cache"
	"github.com/rawveg/openapi-directory-mcp-sub004/manifest"
	"github.com/rawveg/openapi-directory-mcp-sub004/merge"
	"github.com/rawveg/openapi-directory-mcp-sub004/mirror"
	"github.com/rawveg/openapi-directory-mcp-sub004/registry"
	"github.com/rawveg/openapi-directory-mcp-sub004/types"
)

const (
	keyPrimaryList        = "primary:list"
	keySecondaryList      = "secondary:list"
	keyCustomList         = "custom:list"
	keyPrimaryMetrics     = "primary:metrics"
	keySecondaryMetrics   = "secondary:metrics"
	keyPrimaryProviders   = "primary:providers"
	keySecondaryProviders = "secondary:providers"

	defaultTTL = 24 * time.Hour
)

// Source is the read surface every upstream directory exposes.
type Source interface {
	List() (types.ApiList, error)
	Metrics() (types.Metrics, error)
	Providers() ([]string, error)
}

type Service struct {
	cache     *cache.Store
	primary   Source
	secondary Source
	custom    *CustomSource
	ttl       time.Duration
}

type Option func(*Service)

func WithCache(c *cache.Store) Option {
	return func(s *Service) { s.cache = c }
}

func WithPrimary(src Source) Option {
	return func(s *Service) { s.primary = src }
}

func WithSecondary(src Source) Option {
	return func(s *Service) { s.secondary = src }
}

func WithCustom(src *CustomSource) Option {
	return func(s *Service) { s.custom = src }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

func NewService(opts ...Option) *Service {
	s := &Service{
		primary:   registry.NewClient(),
		secondary: mirror.NewClient(),
		ttl:       defaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewStore()
	}
	if s.custom == nil {
		s.custom = NewCustomSource(manifest.NewStore())
	}
	return s
}

func (s *Service) primaryList() (types.ApiList, error) {
	return cache.Warm(s.cache, keyPrimaryList, s.ttl, s.primary.List)
}

func (s *Service) secondaryList() (types.ApiList, error) {
	return cache.Warm(s.cache, keySecondaryList, s.ttl, s.secondary.List)
}

func (s *Service) customList() (types.ApiList, error) {
	return cache.Warm(s.cache, keyCustomList, s.ttl, s.custom.List)
}

// remoteLists fetches both remote snapshots, tolerating a single source
// being down. Only when both remotes fail does the error propagate;
// manifest failures always propagate because the manifest is authoritative.
func (s *Service) remoteLists() (types.ApiList, types.ApiList, error) {
	primary, perr := s.primaryList()
	secondary, serr := s.secondaryList()
	if perr != nil && serr != nil {
		return nil, nil, perr
	}
	if perr != nil {
		log.Printf("primary source unavailable, continuing with secondary: %s", perr)
	}
	if serr != nil {
		log.Printf("secondary source unavailable, continuing with primary: %s", serr)
	}
	return primary, secondary, nil
}

func (s *Service) snapshots() (primary, secondary, custom types.ApiList, err error) {
	primary, secondary, err = s.remoteLists()
	if err != nil {
		return nil, nil, nil, err
	}
	custom, err = s.customList()
	if err != nil {
		return nil, nil, nil, err
	}
	return primary, secondary, custom, nil
}

// ListAPIs returns the merged directory snapshot across all three sources.
func (s *Service) ListAPIs() (types.ApiList, error) {
	primary, secondary, custom, err := s.snapshots()
	if err != nil {
		return nil, err
	}
	return merge.APILists(merge.APILists(primary, secondary), custom), nil
}

// SearchAPIs ranks the merged directory against query, optionally
// restricted to one provider.
func (s *Service) SearchAPIs(query, provider string, page, limit int) (types.SearchResults, error) {
	primary, secondary, custom, err := s.snapshots()
	if err != nil {
		return types.SearchResults{}, err
	}

	primaryRows := registry.FilterList(primary, query, provider)
	secondaryRows := registry.FilterList(merge.APILists(secondary, custom), query, provider)

	results := merge.SearchResults(primaryRows, secondaryRows, query, page, limit)
	for i, row := range results.Results {
		if _, ok := custom[row.ID]; ok {
			results.Results[i].Source = merge.SourceCustom
		}
	}
	return results, nil
}

// GetPaginatedAPIs returns one stable page of the merged directory.
func (s *Service) GetPaginatedAPIs(page, limit int) (types.PaginatedApis, error) {
	primary, secondary, custom, err := s.snapshots()
	if err != nil {
		return types.PaginatedApis{}, err
	}
	return merge.PaginatedAPIs(primary, merge.APILists(secondary, custom), page, limit), nil
}

// GetMetrics aggregates the remote metrics, then adds the local import
// counts on top. Endpoint totals keep the documented weighted
// approximation from the two-remote merge.
func (s *Service) GetMetrics() (types.Metrics, error) {
	primary, secondary, err := s.remoteLists()
	if err != nil {
		return types.Metrics{}, err
	}

	primaryMetrics, perr := cache.Warm(s.cache, keyPrimaryMetrics, s.ttl, s.primary.Metrics)
	if perr != nil {
		log.Printf("primary metrics unavailable: %s", perr)
	}
	secondaryMetrics, serr := cache.Warm(s.cache, keySecondaryMetrics, s.ttl, s.secondary.Metrics)
	if serr != nil {
		log.Printf("secondary metrics unavailable: %s", serr)
	}

	metrics := merge.Metrics(primaryMetrics, secondaryMetrics, lo.Keys(primary), lo.Keys(secondary))

	customMetrics, err := s.custom.Metrics()
	if err != nil {
		return types.Metrics{}, err
	}
	metrics.NumSpecs += customMetrics.NumSpecs
	metrics.NumAPIs += customMetrics.NumAPIs
	return metrics, nil
}

// GetConflictInfo reports id overlap between the two remote sources.
// Diagnostic only; precedence handling does not consult it.
func (s *Service) GetConflictInfo() (types.ConflictInfo, error) {
	primary, secondary, err := s.remoteLists()
	if err != nil {
		return types.ConflictInfo{}, err
	}
	return merge.ConflictInfo(lo.Keys(primary), lo.Keys(secondary)), nil
}

// GetProviderStats summarizes one provider's footprint in the merged
// directory.
func (s *Service) GetProviderStats(provider string) (types.ProviderStats, error) {
	list, err := s.ListAPIs()
	if err != nil {
		return types.ProviderStats{}, err
	}

	stats := types.ProviderStats{Provider: provider}
	var latest time.Time
	for id, api := range list {
		if merge.Summarize(id, api).Provider != provider {
			continue
		}
		stats.APICount++
		stats.VersionCount += len(api.Versions)
		for _, v := range api.Versions {
			for _, stamp := range []string{v.Updated, v.Added} {
				if stamp == "" {
					continue
				}
				ts, err := dateparse.ParseAny(stamp)
				if err != nil {
					continue
				}
				if ts.After(latest) {
					latest = ts
				}
				break
			}
		}
	}
	if stats.APICount == 0 {
		return types.ProviderStats{}, apierror.New(apierror.CodeNotFound,
			apierror.Context{Operation: "getProviderStats", Provider: provider}, nil)
	}
	if !latest.IsZero() {
		stats.LatestUpdate = latest.UTC().Format(time.RFC3339)
	}
	return stats, nil
}

// GetAPI resolves one directory entry. For the custom provider, api may
// name an import without its version; the highest imported version wins.
func (s *Service) GetAPI(provider, api string) (types.Api, error) {
	list, err := s.ListAPIs()
	if err != nil {
		return types.Api{}, err
	}

	id := provider
	if api != "" {
		id = provider + ":" + api
	}
	if entry, ok := list[id]; ok {
		return entry, nil
	}

	if provider == manifest.Provider && api != "" && !strings.Contains(api, ":") {
		version, ok, err := s.custom.PreferredVersion(api)
		if err != nil {
			return types.Api{}, err
		}
		if ok {
			if entry, found := list[manifest.MakeID(api, version)]; found {
				return entry, nil
			}
		}
	}

	return types.Api{}, apierror.New(apierror.CodeNotFound,
		apierror.Context{Operation: "getApi", Provider: provider, APIID: id}, nil)
}

// GetAPISummaryByID flattens one merged entry to its summary row.
func (s *Service) GetAPISummaryByID(id string) (types.ApiSummary, error) {
	list, err := s.ListAPIs()
	if err != nil {
		return types.ApiSummary{}, err
	}
	api, ok := list[id]
	if !ok {
		return types.ApiSummary{}, apierror.New(apierror.CodeNotFound,
			apierror.Context{Operation: "getApiSummary", APIID: id}, nil)
	}
	return merge.Summarize(id, api), nil
}

func (s *Service) HasAPI(id string) (bool, error) {
	list, err := s.ListAPIs()
	if err != nil {
		return false, err
	}
	_, ok := list[id]
	return ok, nil
}

func (s *Service) HasProvider(name string) (bool, error) {
	providers, err := s.ListProviders()
	if err != nil {
		return false, err
	}
	return lo.Contains(providers, name), nil
}

// ListProviders unions the provider lists of all three sources.
func (s *Service) ListProviders() ([]string, error) {
	primary, perr := cache.Warm(s.cache, keyPrimaryProviders, s.ttl, s.primary.Providers)
	secondary, serr := cache.Warm(s.cache, keySecondaryProviders, s.ttl, s.secondary.Providers)
	if perr != nil && serr != nil {
		return nil, perr
	}
	if perr != nil {
		log.Printf("primary providers unavailable: %s", perr)
	}
	if serr != nil {
		log.Printf("secondary providers unavailable: %s", serr)
	}

	custom, err := s.custom.Providers()
	if err != nil {
		return nil, err
	}
	return merge.Providers(merge.Providers(primary, secondary), custom), nil
}

// InvalidateCache drops every cached snapshot and persists the empty
// state so a restart does not resurrect stale entries.
func (s *Service) InvalidateCache() {
	s.cache.Purge()
	s.cache.Flush()
}

// Close flushes and stops the cache store.
func (s *Service) Close() {
	s.cache.Close()
}
