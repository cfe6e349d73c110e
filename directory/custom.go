package directory

import (
	"sort"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/rawveg/openapi-directory-mcp-sub004/manifest"
	"github.com/rawveg/openapi-directory-mcp-sub004/types"
)

// CustomSource adapts the manifest store to the directory-entry shape so
// imported specs merge through the same pipeline as the remote sources.
type CustomSource struct {
	manifest *manifest.Store
}

func NewCustomSource(m *manifest.Store) *CustomSource {
	return &CustomSource{manifest: m}
}

// List returns one directory entry per imported spec, keyed by its
// custom:<name>:<version> id. Each entry carries a single version.
func (c *CustomSource) List() (types.ApiList, error) {
	entries, err := c.manifest.ListSpecs()
	if err != nil {
		return nil, xerrors.Errorf("failed to list custom specs: %w", err)
	}

	list := make(types.ApiList, len(entries))
	for _, e := range entries {
		imported := e.Imported.Format(time.RFC3339)
		list[e.ID] = types.Api{
			Added:     imported,
			Preferred: e.Version,
			Versions: map[string]types.ApiVersion{
				e.Version: {
					Added:      imported,
					Updated:    imported,
					SwaggerURL: c.manifest.SpecFilePath(e.Name, e.Version),
					Info: types.Info{
						Title:        e.Title,
						Description:  e.Description,
						Version:      e.Version,
						ProviderName: manifest.Provider,
						Categories:   []string{manifest.Provider},
					},
				},
			},
		}
	}
	return list, nil
}

// Metrics counts imported specs. Endpoint counts are unknowable without
// re-parsing every stored file, so they stay zero.
func (c *CustomSource) Metrics() (types.Metrics, error) {
	entries, err := c.manifest.ListSpecs()
	if err != nil {
		return types.Metrics{}, err
	}
	names := lo.Uniq(lo.Map(entries, func(e manifest.Entry, _ int) string { return e.Name }))
	return types.Metrics{
		NumSpecs: len(entries),
		NumAPIs:  len(names),
	}, nil
}

func (c *CustomSource) Providers() ([]string, error) {
	entries, err := c.manifest.ListSpecs()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return []string{manifest.Provider}, nil
}

// PreferredVersion picks the version to default to among the imports of
// one spec name. Semantic ordering when every version parses, plain
// string ordering otherwise.
func (c *CustomSource) PreferredVersion(name string) (string, bool, error) {
	entries, err := c.manifest.ListSpecs()
	if err != nil {
		return "", false, err
	}

	var raw []string
	for _, e := range entries {
		if e.Name == name {
			raw = append(raw, e.Version)
		}
	}
	if len(raw) == 0 {
		return "", false, nil
	}

	parsed := make(goversion.Collection, 0, len(raw))
	for _, v := range raw {
		sv, err := goversion.NewVersion(v)
		if err != nil {
			sort.Strings(raw)
			return raw[len(raw)-1], true, nil
		}
		parsed = append(parsed, sv)
	}
	sort.Sort(parsed)
	return parsed[len(parsed)-1].Original(), true, nil
}
