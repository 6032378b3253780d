package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusadmin/export"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "dev", c.Env)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, dir, c.ExportDir)
	assert.Equal(t, export.FormatCSV, c.ExportFormat)
	assert.Equal(t, 60*time.Second, c.DeltaSharingTimeout)
	assert.NotEmpty(t, c.PrefsDir)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`
logLevel = "debug"
exportFormat = "xlsx"

[deltaSharing]
timeout = "15s"
`), 0o644))
	t.Setenv("CAMPUSADMIN_EXPORTFORMAT", "parquet")
	t.Setenv("CAMPUSADMIN_PREFSDIR", filepath.Join(dir, "prefs"))

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, export.FormatParquet, c.ExportFormat)
	assert.Equal(t, 15*time.Second, c.DeltaSharingTimeout)

	kv, err := c.PreferenceKV()
	require.NoError(t, err)
	assert.DirExists(t, kv.Dir())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", ".env.test"), []byte("CAMPUSADMIN_LOGLEVEL=warn\n"), 0o644))
	t.Setenv("CAMPUSADMIN_ENV", "test")
	t.Cleanup(func() { os.Unsetenv("CAMPUSADMIN_LOGLEVEL") })

	c, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CAMPUSADMIN_LOGLEVEL", "loud")
	_, err := Load(t.TempDir())
	assert.Error(t, err)

	t.Setenv("CAMPUSADMIN_LOGLEVEL", "info")
	t.Setenv("CAMPUSADMIN_EXPORTFORMAT", "pdf")
	_, err = Load(t.TempDir())
	assert.Error(t, err)
}
