package cache_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawveg/openapi-directory-mcp-sub004/cache"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T, fs afero.Fs, clock *fakeClock) *cache.Store {
	t.Helper()
	s := cache.NewStore(
		cache.WithDir("/data"),
		cache.WithAppFs(fs),
		cache.WithClock(clock.Now),
		cache.WithFlushInterval(0),
	)
	t.Cleanup(s.Close)
	return s
}

func TestStore_SetGet(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newTestStore(t, afero.NewMemMapFs(), clock)

	require.True(t, s.Set("providers", []string{"apis.guru"}, time.Minute))

	var got []string
	require.True(t, s.Get("providers", &got))
	assert.Equal(t, []string{"apis.guru"}, got)
	assert.True(t, s.Has("providers"))

	clock.Advance(time.Minute + time.Second)
	assert.False(t, s.Get("providers", &got))
	assert.False(t, s.Has("providers"))
}

func TestStore_NeverExpires(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newTestStore(t, afero.NewMemMapFs(), clock)

	require.True(t, s.Set("pinned", "v", 0))

	clock.Advance(100 * 365 * 24 * time.Hour)
	var got string
	require.True(t, s.Get("pinned", &got))
	assert.Equal(t, "v", got)
}

func TestStore_InvalidatePattern(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		pattern   string
		wantCount int
		wantLeft  []string
	}{
		{
			name:      "prefix wildcard",
			keys:      []string{"search:one", "search:two", "metrics"},
			pattern:   "search:*",
			wantCount: 2,
			wantLeft:  []string{"metrics"},
		},
		{
			name:      "exact key",
			keys:      []string{"metrics", "providers"},
			pattern:   "metrics",
			wantCount: 1,
			wantLeft:  []string{"providers"},
		},
		{
			name:      "regex metacharacters are literal",
			keys:      []string{"a.b", "axb"},
			pattern:   "a.b",
			wantCount: 1,
			wantLeft:  []string{"axb"},
		},
		{
			name:      "no match",
			keys:      []string{"metrics"},
			pattern:   "search:*",
			wantCount: 0,
			wantLeft:  []string{"metrics"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Now()}
			s := newTestStore(t, afero.NewMemMapFs(), clock)
			for _, k := range tt.keys {
				require.True(t, s.Set(k, "v", 0))
			}

			assert.Equal(t, tt.wantCount, s.InvalidatePattern(tt.pattern))
			assert.ElementsMatch(t, tt.wantLeft, s.Keys())
		})
	}
}

func TestStore_Delete(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, afero.NewMemMapFs(), clock)

	s.Set("a", 1, 0)
	s.Set("b", 2, 0)

	assert.Equal(t, 1, s.Delete("a"))
	assert.Equal(t, 0, s.Delete("a"))
	assert.Equal(t, 1, s.InvalidateKeys([]string{"b", "missing"}))
	assert.Empty(t, s.Keys())
}

func TestStore_Persistence(t *testing.T) {
	fs := afero.NewMemMapFs()
	clock := &fakeClock{now: time.Now()}

	s := newTestStore(t, fs, clock)
	require.True(t, s.Set("metrics", map[string]int{"numAPIs": 42}, 0))
	s.Close()

	ok, err := afero.Exists(fs, filepath.Join("/data", "cache.json"))
	require.NoError(t, err)
	require.True(t, ok)

	// A second store over the same file sees the flushed entry.
	s2 := newTestStore(t, fs, clock)
	var got map[string]int
	require.True(t, s2.Get("metrics", &got))
	assert.Equal(t, 42, got["numAPIs"])
}

func TestStore_InvalidationSignal(t *testing.T) {
	fs := afero.NewMemMapFs()
	clock := &fakeClock{now: time.Now()}

	s := newTestStore(t, fs, clock)
	s.Set("metrics", 1, 0)
	s.Close()

	require.NoError(t, cache.SignalInvalidation(fs, "/data"))

	s2 := newTestStore(t, fs, clock)
	assert.Empty(t, s2.Keys())

	// The sentinel is consumed, not left behind.
	ok, err := afero.Exists(fs, filepath.Join("/data", ".invalidate"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWarm(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, afero.NewMemMapFs(), clock)

	var calls int
	fetch := func() ([]string, error) {
		calls++
		return []string{"one"}, nil
	}

	got, err := cache.Warm(s, "list", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, got)

	got, err = cache.Warm(s, "list", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, got)
	assert.Equal(t, 1, calls, "second call must be served from cache")
}

func TestWarm_FetchError(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, afero.NewMemMapFs(), clock)

	wantErr := errors.New("upstream down")
	_, err := cache.Warm(s, "list", time.Minute, func() (string, error) {
		return "", wantErr
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, s.Has("list"), "failed fetch must not be cached")
}

func TestStore_CorruptFileDegrades(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/cache.json", []byte("{not json"), 0o644))

	clock := &fakeClock{now: time.Now()}
	s := newTestStore(t, fs, clock)

	// Corrupt persistence is a miss, never an error.
	assert.Empty(t, s.Keys())
	assert.True(t, s.Set("k", "v", 0))
	assert.True(t, s.Has("k"))
}
