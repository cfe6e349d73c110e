package mcp

import (
	"context"
	"path/filepath"

	"github.com/rawveg/openapi-directory-mcp-sub004/cache"
	"github.com/rawveg/openapi-directory-mcp-sub004/directory"
	"github.com/rawveg/openapi-directory-mcp-sub004/importer"
	"github.com/rawveg/openapi-directory-mcp-sub004/manifest"
	"github.com/rawveg/openapi-directory-mcp-sub004/mirror"
	"github.com/rawveg/openapi-directory-mcp-sub004/registry"
	"github.com/rawveg/openapi-directory-mcp-sub004/utils"
)

// Service adapts the aggregator and the importer to the tool surface.
// Argument validation lives in the tool layer; this layer only composes.
type Service struct {
	dir     *directory.Service
	imp     *importer.Importer
	useText bool
}

func NewService(cfg *Config) *Service {
	if cfg == nil {
		cfg = &Config{}
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = utils.DataDir()
	}
	specDir := filepath.Join(dataDir, "custom-specs")

	store := cache.NewStore(cache.WithDir(dataDir))
	m := manifest.NewStore(manifest.WithDir(specDir))

	primary := registry.NewClient()
	if cfg.PrimaryURL != "" {
		primary = registry.NewClient(registry.WithBaseURL(cfg.PrimaryURL))
	}
	secondary := mirror.NewClient()
	if cfg.SecondaryURL != "" {
		secondary = mirror.NewClient(mirror.WithBaseURL(cfg.SecondaryURL))
	}

	dirOpts := []directory.Option{
		directory.WithCache(store),
		directory.WithPrimary(primary),
		directory.WithSecondary(secondary),
		directory.WithCustom(directory.NewCustomSource(m)),
	}
	if cfg.CacheTTL > 0 {
		dirOpts = append(dirOpts, directory.WithTTL(cfg.CacheTTL))
	}

	return &Service{
		dir: directory.NewService(dirOpts...),
		imp: importer.NewImporter(
			importer.WithManifest(m),
			importer.WithCacheDir(dataDir),
		),
		useText: !cfg.UseData,
	}
}

func (s *Service) UseTextField() bool { return s.useText }

func (s *Service) Close() { s.dir.Close() }

func (s *Service) ListApis(ctx context.Context, in *ListApisInput) (*ListApisOutput, error) {
	apis, err := s.dir.ListAPIs()
	if err != nil {
		return nil, err
	}
	return &ListApisOutput{Apis: apis}, nil
}

func (s *Service) SearchApis(ctx context.Context, in *SearchApisInput) (*SearchApisOutput, error) {
	results, err := s.dir.SearchAPIs(in.Query, in.Provider, in.Page, in.Limit)
	if err != nil {
		return nil, err
	}
	return &SearchApisOutput{Results: results.Results, Pagination: results.Pagination}, nil
}

func (s *Service) GetPaginatedApis(ctx context.Context, in *GetPaginatedApisInput) (*GetPaginatedApisOutput, error) {
	page, err := s.dir.GetPaginatedAPIs(in.Page, in.Limit)
	if err != nil {
		return nil, err
	}
	return &GetPaginatedApisOutput{Results: page.Results, Pagination: page.Pagination}, nil
}

func (s *Service) GetApi(ctx context.Context, in *GetApiInput) (*GetApiOutput, error) {
	api, err := s.dir.GetAPI(in.Provider, in.API)
	if err != nil {
		return nil, err
	}
	id := in.Provider
	if in.API != "" {
		id = in.Provider + ":" + in.API
	}
	return &GetApiOutput{ID: id, API: api}, nil
}

func (s *Service) GetMetrics(ctx context.Context, in *GetMetricsInput) (*GetMetricsOutput, error) {
	metrics, err := s.dir.GetMetrics()
	if err != nil {
		return nil, err
	}
	return &GetMetricsOutput{Metrics: metrics}, nil
}

func (s *Service) GetProviderStats(ctx context.Context, in *GetProviderStatsInput) (*GetProviderStatsOutput, error) {
	stats, err := s.dir.GetProviderStats(in.Provider)
	if err != nil {
		return nil, err
	}
	return &GetProviderStatsOutput{Stats: stats}, nil
}

func (s *Service) ListProviders(ctx context.Context, in *ListProvidersInput) (*ListProvidersOutput, error) {
	providers, err := s.dir.ListProviders()
	if err != nil {
		return nil, err
	}
	return &ListProvidersOutput{Providers: providers}, nil
}

func (s *Service) ImportSpec(ctx context.Context, in *ImportSpecInput) (*ImportSpecOutput, error) {
	entry, err := s.imp.Import(in.Source, in.Name, in.SkipSecurity)
	if err != nil {
		return nil, err
	}
	s.dir.InvalidateCache()
	return &ImportSpecOutput{Entry: entry}, nil
}

func (s *Service) ValidateSpec(ctx context.Context, in *ValidateSpecInput) (*ValidateSpecOutput, error) {
	result, err := s.imp.Validate(in.Source)
	if err != nil {
		return nil, err
	}
	return &ValidateSpecOutput{Result: result}, nil
}

func (s *Service) ListCustomSpecs(ctx context.Context, in *ListCustomSpecsInput) (*ListCustomSpecsOutput, error) {
	specs, err := s.imp.List()
	if err != nil {
		return nil, err
	}
	return &ListCustomSpecsOutput{Specs: specs}, nil
}

func (s *Service) RemoveCustomSpec(ctx context.Context, in *RemoveCustomSpecInput) (*RemoveCustomSpecOutput, error) {
	removed, err := s.imp.Remove(in.ID)
	if err != nil {
		return nil, err
	}
	if removed {
		s.dir.InvalidateCache()
	}
	return &RemoveCustomSpecOutput{Removed: removed}, nil
}
