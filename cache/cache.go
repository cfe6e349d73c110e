// Package cache provides a persistent key/value TTL cache for directory
// snapshots. The cache is an optimization, never a hard dependency: any
// read/write failure degrades to a miss and is logged.
package cache

import (
	"encoding/json"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/rawveg/openapi-directory-mcp-sub004/utils"
)

const (
	cacheFileName      = "cache.json"
	invalidateSentinel = ".invalidate"

	defaultTTL           = 24 * time.Hour
	defaultFlushInterval = 60 * time.Second
)

// Entry is the persisted form of a single cached value. Expires == 0 means
// the entry never expires.
type Entry struct {
	Value   json.RawMessage `json:"value"`
	Expires int64           `json:"expires"`
	Created int64           `json:"created"`
}

type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
	dirty   bool

	fs            utils.Fs
	dir           string
	defaultTTL    time.Duration
	flushInterval time.Duration
	now           func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

type option func(*Store)

func WithDir(dir string) option {
	return func(s *Store) { s.dir = dir }
}

func WithAppFs(fs afero.Fs) option {
	return func(s *Store) { s.fs = utils.NewFs(fs) }
}

func WithDefaultTTL(ttl time.Duration) option {
	return func(s *Store) { s.defaultTTL = ttl }
}

func WithFlushInterval(d time.Duration) option {
	return func(s *Store) { s.flushInterval = d }
}

func WithClock(now func() time.Time) option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...option) *Store {
	s := &Store{
		entries:       map[string]Entry{},
		fs:            utils.NewFs(afero.NewOsFs()),
		dir:           utils.DataDir(),
		defaultTTL:    defaultTTL,
		flushInterval: defaultFlushInterval,
		now:           time.Now,
		done:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.load()
	s.applyInvalidateSignal()

	if s.flushInterval > 0 {
		go s.flushLoop()
	}
	return s
}

func (s *Store) filePath() string {
	return filepath.Join(s.dir, cacheFileName)
}

func (s *Store) sentinelPath() string {
	return filepath.Join(s.dir, invalidateSentinel)
}

func (s *Store) load() {
	var entries map[string]Entry
	if ok, _ := afero.Exists(s.fs.AppFs, s.filePath()); !ok {
		return
	}
	if err := s.fs.ReadJSON(s.filePath(), &entries); err != nil {
		log.Printf("cache: failed to load %s, starting empty: %v", s.filePath(), err)
		return
	}
	s.entries = entries
	if s.entries == nil {
		s.entries = map[string]Entry{}
	}
}

// applyInvalidateSignal honours the cross-process sentinel: another process
// (e.g. the import CLI) may have requested that this one drop its cache.
func (s *Store) applyInvalidateSignal() {
	ok, err := afero.Exists(s.fs.AppFs, s.sentinelPath())
	if err != nil || !ok {
		return
	}
	log.Printf("cache: invalidation signal found, clearing %d entries", len(s.entries))
	s.entries = map[string]Entry{}
	s.dirty = true
	if err := s.fs.AppFs.Remove(s.sentinelPath()); err != nil {
		log.Printf("cache: failed to remove invalidation signal: %v", err)
	}
}

func (s *Store) flushLoop() {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
			s.Flush()
		case <-s.done:
			return
		}
	}
}

func (s *Store) expired(e Entry) bool {
	return e.Expires != 0 && s.now().UnixMilli() > e.Expires
}

// GetRaw returns the stored bytes for key, or false when the key is absent
// or expired. Expired entries are removed lazily.
func (s *Store) GetRaw(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		delete(s.entries, key)
		s.dirty = true
		return nil, false
	}
	return e.Value, true
}

// Get unmarshals the cached value for key into out. A failure to decode is
// treated as a miss.
func (s *Store) Get(key string, out interface{}) bool {
	raw, ok := s.GetRaw(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("cache: failed to decode entry %q, treating as miss: %v", key, err)
		s.Delete(key)
		return false
	}
	return true
}

// Set stores value under key. ttl == 0 means the entry never expires; a
// negative ttl selects the store default.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) bool {
	b, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: failed to encode value for %q, not caching: %v", key, err)
		return false
	}
	if ttl < 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	var expires int64
	if ttl > 0 {
		expires = now.Add(ttl).UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{Value: b, Expires: expires, Created: now.UnixMilli()}
	s.dirty = true
	return true
}

func (s *Store) Has(key string) bool {
	_, ok := s.GetRaw(key)
	return ok
}

func (s *Store) Delete(keys ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, key := range keys {
		if _, ok := s.entries[key]; ok {
			delete(s.entries, key)
			count++
		}
	}
	if count > 0 {
		s.dirty = true
	}
	return count
}

// InvalidatePattern removes every key matching the glob pattern. Only the
// "*" wildcard is supported; it is compiled to an anchored regular
// expression.
func (s *Store) InvalidatePattern(pattern string) int {
	re, err := compileGlob(pattern)
	if err != nil {
		log.Printf("cache: invalid pattern %q: %v", pattern, err)
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for key := range s.entries {
		if re.MatchString(key) {
			delete(s.entries, key)
			count++
		}
	}
	if count > 0 {
		s.dirty = true
	}
	return count
}

func (s *Store) InvalidateKeys(keys []string) int {
	return s.Delete(keys...)
}

func compileGlob(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile("^" + strings.Join(parts, ".*") + "$")
}

func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.entries))
	for key, e := range s.entries {
		if s.expired(e) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Purge drops every entry.
func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[string]Entry{}
	s.dirty = true
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, key)
			s.dirty = true
		}
	}
}

// Flush mirrors the in-memory map to the cache file when it has changed.
func (s *Store) Flush() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	snapshot := make(map[string]Entry, len(s.entries))
	for k, v := range s.entries {
		snapshot[k] = v
	}
	s.dirty = false
	s.mu.Unlock()

	if err := s.fs.WriteJSON(s.filePath(), snapshot); err != nil {
		log.Printf("cache: failed to persist %s: %v", s.filePath(), err)
	}
}

// Close flushes the cache and stops the background flusher.
func (s *Store) Close() {
	s.stopOnce.Do(func() { close(s.done) })
	s.Flush()
}

// Warm returns a fresh cached value if present, otherwise invokes fetch,
// stores the result, and returns it. A fetch error is never cached.
func Warm[T any](s *Store, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var cached T
	if s.Get(key, &cached) {
		return cached, nil
	}

	value, err := fetch()
	if err != nil {
		var zero T
		return zero, xerrors.Errorf("fetch for cache key %q: %w", key, err)
	}
	s.Set(key, value, ttl)
	return value, nil
}

// SignalInvalidation writes the sentinel file that tells a running process
// to drop its in-memory cache on next startup check. Delivery is eventual,
// at least once.
func SignalInvalidation(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return xerrors.Errorf("unable to create cache dir: %w", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, invalidateSentinel), []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0o644); err != nil {
		return xerrors.Errorf("unable to write invalidation signal: %w", err)
	}
	return nil
}
