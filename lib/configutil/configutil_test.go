package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port   int      `json:"port"`
	Name   string   `json:"name"`
	Extras []string `json:"extras"`
}

func TestReadConfigWithLocalOverride(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "config.json5")

	err := os.WriteFile(base, []byte(`{
		// comments are allowed
		port: 8311,
		name: "base",
	}`), 0o644)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](base)
	require.NoError(t, err)
	require.Equal(t, 8311, config.Port)
	require.Equal(t, "base", config.Name)

	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		name: "local",
		extras: ["a"],
	}`), 0o644)
	require.NoError(t, err)

	config, err = ReadConfig[testConfig](base)
	require.NoError(t, err)
	// the local file wins field by field, untouched fields keep the
	// base value
	require.Equal(t, "local", config.Name)
	require.Equal(t, 8311, config.Port)
	require.Equal(t, []string{"a"}, config.Extras)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestLocalOnlyConfig(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{port: 1}`), 0o644)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, 1, config.Port)
}
