package registry_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawveg/openapi-directory-mcp-sub004/registry"
	"github.com/rawveg/openapi-directory-mcp-sub004/types"
)

const listJSON = `{
  "pets.example:store": {
    "added": "2020-01-01T00:00:00Z",
    "preferred": "1.0.0",
    "versions": {
      "1.0.0": {
        "added": "2020-01-01T00:00:00Z",
        "info": {"title": "Pet Store", "version": "1.0.0", "x-providerName": "pets.example"}
      }
    }
  },
  "zoo.example": {
    "added": "2021-05-01T00:00:00Z",
    "preferred": "2.0.0",
    "versions": {
      "2.0.0": {
        "added": "2021-05-01T00:00:00Z",
        "info": {"title": "Zoo Directory", "version": "2.0.0", "x-providerName": "zoo.example"}
      }
    }
  }
}`

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
	ts := newTestServer(t, map[string]string{"/list.json": listJSON})

	c := registry.NewClient(registry.WithBaseURL(ts.URL), registry.WithRetry(0))
	list, err := c.List()
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "1.0.0", list["pets.example:store"].Preferred)
	assert.Equal(t, "Pet Store", list["pets.example:store"].Versions["1.0.0"].Info.Title)
}

func TestClient_List_NotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	c := registry.NewClient(registry.WithBaseURL(ts.URL), registry.WithRetry(0))
	_, err := c.List()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code: 404")
}

func TestClient_Metrics(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"/metrics.json": `{"numSpecs": 4000, "numAPIs": 2500, "numEndpoints": 110000}`,
	})

	c := registry.NewClient(registry.WithBaseURL(ts.URL), registry.WithRetry(0))
	metrics, err := c.Metrics()
	require.NoError(t, err)
	assert.Equal(t, types.Metrics{NumSpecs: 4000, NumAPIs: 2500, NumEndpoints: 110000}, metrics)
}

func TestClient_Providers(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"/providers.json": `{"data": ["pets.example", "zoo.example"]}`,
	})

	c := registry.NewClient(registry.WithBaseURL(ts.URL), registry.WithRetry(0))
	providers, err := c.Providers()
	require.NoError(t, err)
	assert.Equal(t, []string{"pets.example", "zoo.example"}, providers)
}

func TestClient_Search(t *testing.T) {
	ts := newTestServer(t, map[string]string{"/list.json": listJSON})
	c := registry.NewClient(registry.WithBaseURL(ts.URL), registry.WithRetry(0))

	tests := []struct {
		name     string
		query    string
		provider string
		wantIDs  []string
	}{
		{name: "title match", query: "zoo directory", wantIDs: []string{"zoo.example"}},
		{name: "id match", query: "store", wantIDs: []string{"pets.example:store"}},
		{name: "provider restriction", query: "", provider: "pets.example", wantIDs: []string{"pets.example:store"}},
		{name: "no match", query: "nothing-here", wantIDs: nil},
		{name: "empty query returns all", query: "", wantIDs: []string{"pets.example:store", "zoo.example"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := c.Search(tt.query, tt.provider)
			require.NoError(t, err)

			var ids []string
			for _, r := range rows {
				ids = append(ids, r.ID)
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}
