package utils_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawveg/openapi-directory-mcp-sub004/utils"
)

func TestFs_WriteReadJSON(t *testing.T) {
	fs := utils.NewFs(afero.NewMemMapFs())

	in := map[string]int{"a": 1, "b": 2}
	require.NoError(t, fs.WriteJSON("/deep/nested/file.json", in))

	var out map[string]int
	require.NoError(t, fs.ReadJSON("/deep/nested/file.json", &out))
	assert.Equal(t, in, out)
}

func TestFs_ReadJSON_Missing(t *testing.T) {
	fs := utils.NewFs(afero.NewMemMapFs())

	var out map[string]int
	err := fs.ReadJSON("/nope.json", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to read a file")
}

func TestFs_ReadJSON_Corrupt(t *testing.T) {
	appFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(appFs, "/bad.json", []byte("{not json"), 0644))

	fs := utils.NewFs(appFs)
	var out map[string]int
	err := fs.ReadJSON("/bad.json", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal JSON")
}
