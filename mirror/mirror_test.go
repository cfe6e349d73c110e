package mirror_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawveg/openapi-directory-mcp-sub004/mirror"
	"github.com/rawveg/openapi-directory-mcp-sub004/types"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_List(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"/list.json": `{
          "weather.example": {
            "added": "2022-03-01T00:00:00Z",
            "preferred": "1.2.0",
            "versions": {
              "1.2.0": {
                "added": "2022-03-01T00:00:00Z",
                "info": {"title": "Weather API", "version": "1.2.0", "x-providerName": "weather.example"}
              }
            }
          }
        }`,
	})

	c := mirror.NewClient(mirror.WithBaseURL(ts.URL), mirror.WithRetry(0))
	list, err := c.List()
	require.NoError(t, err)

	require.Len(t, list, 1)
	assert.Equal(t, "Weather API", list["weather.example"].Versions["1.2.0"].Info.Title)
}

func TestClient_Providers_PlainArray(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"/providers.json": `["weather.example", "pets.example"]`,
	})

	c := mirror.NewClient(mirror.WithBaseURL(ts.URL), mirror.WithRetry(0))
	providers, err := c.Providers()
	require.NoError(t, err)
	assert.Equal(t, []string{"weather.example", "pets.example"}, providers)
}

func TestClient_Metrics_Unreachable(t *testing.T) {
	ts := newTestServer(t, nil)

	c := mirror.NewClient(mirror.WithBaseURL(ts.URL), mirror.WithRetry(0))
	metrics, err := c.Metrics()
	require.Error(t, err)
	assert.Equal(t, types.Metrics{}, metrics)
}
