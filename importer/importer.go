// Package importer runs the full ingestion path for custom specs: process
// the source, persist content and manifest entry, then signal running
// servers to drop their caches.
package importer

import (
	"log"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/rawveg/openapi-directory-mcp-sub004/cache"
	"github.com/rawveg/openapi-directory-mcp-sub004/manifest"
	"github.com/rawveg/openapi-directory-mcp-sub004/spec"
	"github.com/rawveg/openapi-directory-mcp-sub004/utils"
)

type Importer struct {
	processor *spec.Processor
	manifest  *manifest.Store
	appFs     afero.Fs
	cacheDir  string
	now       func() time.Time
}

type option func(*Importer)

func WithProcessor(p *spec.Processor) option {
	return func(i *Importer) { i.processor = p }
}

func WithManifest(m *manifest.Store) option {
	return func(i *Importer) { i.manifest = m }
}

func WithAppFs(fs afero.Fs) option {
	return func(i *Importer) { i.appFs = fs }
}

// WithCacheDir sets the directory holding the cache file of a running
// server, where the invalidation sentinel is written after mutations.
func WithCacheDir(dir string) option {
	return func(i *Importer) { i.cacheDir = dir }
}

func WithClock(now func() time.Time) option {
	return func(i *Importer) { i.now = now }
}

func NewImporter(opts ...option) *Importer {
	i := &Importer{
		appFs:    afero.NewOsFs(),
		cacheDir: utils.DataDir(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.processor == nil {
		i.processor = spec.NewProcessor(spec.WithAppFs(i.appFs))
	}
	if i.manifest == nil {
		i.manifest = manifest.NewStore(manifest.WithAppFs(i.appFs))
	}
	return i
}

// Import processes one source and persists it as a custom spec. name may
// be empty, in which case it is derived from the source path. Returns the
// manifest entry that was written.
func (i *Importer) Import(source, name string, skipSecurity bool) (manifest.Entry, error) {
	result, err := i.processor.Process(source, name, skipSecurity)
	if err != nil {
		return manifest.Entry{}, err
	}

	path, err := i.manifest.StoreSpecFile(result.Name, result.Version, result.Content)
	if err != nil {
		return manifest.Entry{}, xerrors.Errorf("failed to store spec content: %w", err)
	}

	entry := manifest.Entry{
		ID:             manifest.MakeID(result.Name, result.Version),
		Name:           result.Name,
		Version:        result.Version,
		Title:          result.Metadata.Title,
		Description:    result.Metadata.Description,
		Imported:       i.now().UTC(),
		SourceType:     string(result.SourceType),
		OriginalFormat: string(result.OriginalFormat),
		FileSize:       result.Metadata.ByteSize,
	}
	if err := i.manifest.AddSpec(entry); err != nil {
		return manifest.Entry{}, err
	}

	log.Printf("Imported %s from %s (%d bytes) to %s", entry.ID, source, entry.FileSize, path)
	i.signalInvalidation()
	return entry, nil
}

// Validate runs the pre-import checks without persisting anything.
func (i *Importer) Validate(source string) (spec.ValidationResult, error) {
	return i.processor.QuickValidate(source)
}

// Remove deletes a custom spec's manifest entry and its content file.
func (i *Importer) Remove(id string) (bool, error) {
	name, version, err := manifest.ParseID(id)
	if err != nil {
		return false, err
	}

	removed, err := i.manifest.RemoveSpec(id)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}
	if _, err := i.manifest.DeleteSpecFile(name, version); err != nil {
		return false, xerrors.Errorf("entry removed but content file remains: %w", err)
	}

	i.signalInvalidation()
	return true, nil
}

// List returns every imported spec, sorted by id.
func (i *Importer) List() ([]manifest.Entry, error) {
	return i.manifest.ListSpecs()
}

func (i *Importer) signalInvalidation() {
	if err := cache.SignalInvalidation(i.appFs, i.cacheDir); err != nil {
		log.Printf("failed to signal cache invalidation: %s", err)
	}
}
