package utils_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawveg/openapi-directory-mcp-sub004/utils"
)

func TestFetchURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	body, err := utils.FetchURL(ts.URL+"/list.json", "", 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestFetchURL_Status(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := utils.FetchURL(ts.URL, "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code: 404")
}

func TestFetchURL_APIKeyHeader(t *testing.T) {
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	_, err := utils.FetchURL(ts.URL, "secret", 0)
	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
}

func TestTrimSpaceNewline(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "test", want: "test"},
		{in: " test ", want: "test"},
		{in: "test\r\n", want: "test"},
		{in: "\n test \n", want: "test"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, utils.TrimSpaceNewline(tt.in))
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, utils.ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "specs", "a.yaml"), utils.ExpandHome("~/specs/a.yaml"))
	assert.Equal(t, "/abs/path.yaml", utils.ExpandHome("/abs/path.yaml"))
	assert.Equal(t, "relative.yaml", utils.ExpandHome("relative.yaml"))
}

func TestExists(t *testing.T) {
	f := filepath.Join(t.TempDir(), "present")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0644))

	ok, err := utils.Exists(f)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = utils.Exists(f + ".missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupEnv(t *testing.T) {
	t.Setenv("OPENAPI_DIRECTORY_TEST_KEY", "from-env")
	assert.Equal(t, "from-env", utils.LookupEnv("OPENAPI_DIRECTORY_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", utils.LookupEnv("OPENAPI_DIRECTORY_TEST_MISSING", "fallback"))
}
