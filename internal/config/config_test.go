package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Data.Source)
	assert.Equal(t, "data/Real_Estate_Sales_2001-2022_GL.csv", cfg.Data.Path)
	assert.Equal(t, ":5006", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, "REAL_ESTATE_SALES", cfg.Oracle.Table)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CT_DATA_SOURCE", "oracle")
	t.Setenv("CT_SERVER_ADDR", ":9999")
	t.Setenv("CT_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "oracle", cfg.Data.Source)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data:
  source: csv
  path: /tmp/sales.csv
server:
  addr: ":8080"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/sales.csv", cfg.Data.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	t.Setenv("CT_SERVER_ADDR", ":7777")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":8080\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Addr)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	content := `# comment
CT_ENVFILE_PROBE="quoted value"
CT_ENVFILE_OTHER=plain

malformed line
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644))
	t.Setenv("CT_ENVFILE_PROBE", "") // ensure unset semantics
	os.Unsetenv("CT_ENVFILE_PROBE")
	t.Setenv("CT_ENVFILE_OTHER", "preset")

	loadEnvFile(".env")

	assert.Equal(t, "quoted value", os.Getenv("CT_ENVFILE_PROBE"))
	// Existing environment wins over the .env file.
	assert.Equal(t, "preset", os.Getenv("CT_ENVFILE_OTHER"))
}
