package endpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvLookupTreatsEmptyAsUnset(t *testing.T) {
	env := Env{"A": "1", "B": ""}

	v, ok := env.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = env.Lookup("B")
	assert.False(t, ok)
	_, ok = env.Lookup("C")
	assert.False(t, ok)

	var nilEnv Env
	_, ok = nilEnv.Lookup("A")
	assert.False(t, ok)
}

func TestFromEnviron(t *testing.T) {
	env := FromEnviron([]string{"NODE_ENV=production", "URL=https://a.example.com/?x=1", "EMPTY=", "=skip", "broken"})

	assert.Equal(t, Env{
		"NODE_ENV": "production",
		"URL":      "https://a.example.com/?x=1",
		"EMPTY":    "",
	}, env)
}

func TestFromOS(t *testing.T) {
	t.Setenv("APIBASE_TEST_VALUE", "present")

	v, ok := FromOS().Lookup("APIBASE_TEST_VALUE")
	assert.True(t, ok)
	assert.Equal(t, "present", v)
}

func TestLoadDotenvLaterFilesWin(t *testing.T) {
	dir := t.TempDir()
	first := writeEnvFile(t, dir, "first.env", "NODE_ENV=development\nVITE_API_URL=https://first.example.com\n")
	second := writeEnvFile(t, dir, "second.env", "# override\nNODE_ENV=production\n")

	env, err := LoadDotenv(first, second)
	require.NoError(t, err)
	assert.Equal(t, "production", env["NODE_ENV"])
	assert.Equal(t, "https://first.example.com", env["VITE_API_URL"])
}

func TestLoadDotenvMissingFile(t *testing.T) {
	_, err := LoadDotenv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.env")
}

func TestMerge(t *testing.T) {
	merged := Merge(Env{"A": "file", "B": "file", "C": ""}, nil, Env{"A": "", "B": "os", "D": ""})
	assert.Equal(t, Env{"A": "file", "B": "os", "C": "", "D": ""}, merged)
}

func TestNewLoaderPrefersProcessEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := writeEnvFile(t, dir, ".env", "APIBASE_LOADER_MODE=development\nAPIBASE_LOADER_URL=https://file.example.com\n")
	t.Setenv("APIBASE_LOADER_MODE", "production")

	env, err := NewLoader([]string{path})()
	require.NoError(t, err)
	assert.Equal(t, "production", env["APIBASE_LOADER_MODE"])
	assert.Equal(t, "https://file.example.com", env["APIBASE_LOADER_URL"])
}

func TestAPIBaseURLIsStable(t *testing.T) {
	// Both build profiles resolve VITE_API_URL in production.
	t.Setenv("NODE_ENV", "production")
	t.Setenv("VITE_VERCEL_ENV", "production")
	t.Setenv("REACT_APP_API_URL", "")
	t.Setenv("VITE_API_URL", "https://api.example.com")

	first, err := APIBaseURL()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", first)

	t.Setenv("VITE_API_URL", "https://other.example.com")
	second, err := APIBaseURL()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func writeEnvFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
