// Package manifest persists the index and content of user-imported custom
// specifications. The manifest file is the source of truth: unlike the
// cache, write failures here are returned to the caller, never swallowed.
package manifest

import (
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/rawveg/openapi-directory-mcp-sub004/utils"
)

const manifestFileName = "manifest.json"

type Store struct {
	fs  utils.Fs
	dir string
	now func() time.Time
}

type option func(*Store)

func WithDir(dir string) option {
	return func(s *Store) { s.dir = dir }
}

func WithAppFs(fs afero.Fs) option {
	return func(s *Store) { s.fs = utils.NewFs(fs) }
}

func WithClock(now func() time.Time) option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...option) *Store {
	s := &Store{
		fs:  utils.NewFs(afero.NewOsFs()),
		dir: utils.SpecDataDir(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) manifestPath() string {
	return filepath.Join(s.dir, manifestFileName)
}

// SpecFilePath returns the deterministic content path for a spec.
func (s *Store) SpecFilePath(name, version string) string {
	return filepath.Join(s.dir, Provider, name, version+".json")
}

// load re-reads the manifest from disk. Every read operation goes through
// here so concurrent external writers (e.g. an import CLI next to a running
// server) are always observed.
func (s *Store) load() (*Manifest, error) {
	ok, err := afero.Exists(s.fs.AppFs, s.manifestPath())
	if err != nil {
		return nil, xerrors.Errorf("unable to stat manifest: %w", err)
	}
	if !ok {
		return newManifest(), nil
	}

	var m Manifest
	if err := s.fs.ReadJSON(s.manifestPath(), &m); err != nil {
		return nil, xerrors.Errorf("failed to load manifest: %w", err)
	}
	if m.Specs == nil {
		m.Specs = map[string]Entry{}
	}
	return &m, nil
}

func (s *Store) save(m *Manifest) error {
	m.Version = manifestVersion
	m.LastUpdated = s.now().UTC()
	if err := s.fs.WriteJSON(s.manifestPath(), m); err != nil {
		return xerrors.Errorf("failed to save manifest: %w", err)
	}
	return nil
}

func (s *Store) AddSpec(entry Entry) error {
	if _, _, err := ParseID(entry.ID); err != nil {
		return err
	}

	m, err := s.load()
	if err != nil {
		return err
	}
	m.Specs[entry.ID] = entry
	return s.save(m)
}

func (s *Store) RemoveSpec(id string) (bool, error) {
	m, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := m.Specs[id]; !ok {
		return false, nil
	}
	delete(m.Specs, id)
	if err := s.save(m); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateSpec applies mutate to the stored entry. The entry id cannot be
// changed this way.
func (s *Store) UpdateSpec(id string, mutate func(*Entry)) (bool, error) {
	m, err := s.load()
	if err != nil {
		return false, err
	}
	e, ok := m.Specs[id]
	if !ok {
		return false, nil
	}
	mutate(&e)
	e.ID = id
	m.Specs[id] = e
	if err := s.save(m); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GetSpec(id string) (Entry, bool, error) {
	m, err := s.load()
	if err != nil {
		return Entry{}, false, err
	}
	e, ok := m.Specs[id]
	return e, ok, nil
}

func (s *Store) HasSpec(id string) (bool, error) {
	_, ok, err := s.GetSpec(id)
	return ok, err
}

// ListSpecs reloads the manifest from disk and returns all entries sorted
// by id.
func (s *Store) ListSpecs() ([]Entry, error) {
	m, err := s.load()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(m.Specs))
	for _, e := range m.Specs {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

func (s *Store) StoreSpecFile(name, version string, content []byte) (string, error) {
	path := s.SpecFilePath(name, version)
	if err := s.fs.AppFs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", xerrors.Errorf("unable to create spec directory: %w", err)
	}
	if err := afero.WriteFile(s.fs.AppFs, path, content, 0o644); err != nil {
		return "", xerrors.Errorf("failed to store spec file: %w", err)
	}
	return path, nil
}

func (s *Store) ReadSpecFile(name, version string) ([]byte, error) {
	content, err := afero.ReadFile(s.fs.AppFs, s.SpecFilePath(name, version))
	if err != nil {
		return nil, xerrors.Errorf("failed to read spec file: %w", err)
	}
	return content, nil
}

func (s *Store) DeleteSpecFile(name, version string) (bool, error) {
	path := s.SpecFilePath(name, version)
	ok, err := afero.Exists(s.fs.AppFs, path)
	if err != nil {
		return false, xerrors.Errorf("unable to stat spec file: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := s.fs.AppFs.Remove(path); err != nil {
		return false, xerrors.Errorf("failed to delete spec file: %w", err)
	}
	return true, nil
}
