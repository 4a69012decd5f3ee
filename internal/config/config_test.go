package config

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFs(t *testing.T) afero.Fs {
	t.Helper()

	prev := AppFs
	AppFs = afero.NewMemMapFs()
	t.Cleanup(func() { AppFs = prev })

	// Keep environment changes made by .env loading scoped to the test.
	for _, key := range []string{"DRIVER", "DATABASE", "HOST", "PORT", "PASSWORD", "DEBUG"} {
		t.Setenv(EnvPrefix+"_"+key, "")
	}
	t.Setenv("HOME", "/home/tester")
	homedir.DisableCache = true
	return AppFs
}

func TestLoad_Defaults(t *testing.T) {
	memFs(t)

	v, err := New("/work")
	require.NoError(t, err)
	cfg, err := Load(v, "/work")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "", cfg.Settings.Database)
	assert.False(t, cfg.Debug)
}

func TestLoad_FileAndEnv(t *testing.T) {
	fs := memFs(t)

	require.NoError(t, afero.WriteFile(fs, "/work/.fluentquery.yaml", []byte(
		"driver: postgres\nhost: db.internal\nport: 5433\ndatabase: app\nusername: svc\ntrack_leaks: true\n",
	), 0644))
	require.NoError(t, afero.WriteFile(fs, "/work/.env", []byte(
		"FLUENTQUERY_PASSWORD=secret\nFLUENTQUERY_DATABASE=from_env\n",
	), 0644))
	require.NoError(t, afero.WriteFile(fs, "/work/.env.local", []byte(
		"FLUENTQUERY_DATABASE=from_local\n",
	), 0644))

	v, err := New("/work")
	require.NoError(t, err)
	cfg, err := Load(v, "/work")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "db.internal", cfg.Settings.Server)
	assert.Equal(t, 5433, cfg.Settings.Port)
	assert.Equal(t, "svc", cfg.Settings.Username)
	assert.Equal(t, "secret", cfg.Settings.Password)
	assert.Equal(t, "from_local", cfg.Settings.Database)
	assert.True(t, cfg.TrackLeaks)
}

func TestLoad_EnvFileKeepsExisting(t *testing.T) {
	fs := memFs(t)
	t.Setenv("FLUENTQUERY_HOST", "already-set")

	require.NoError(t, afero.WriteFile(fs, "/work/.env", []byte("FLUENTQUERY_HOST=from_env\n"), 0644))

	v, err := New("/work")
	require.NoError(t, err)
	cfg, err := Load(v, "/work")
	require.NoError(t, err)
	assert.Equal(t, "already-set", cfg.Settings.Server)
}

func TestSaveConfig(t *testing.T) {
	fs := memFs(t)

	cfg := &Config{Driver: "mysql", Debug: true}
	cfg.Settings.Database = "shop"
	cfg.Settings.Password = "never-written"

	path, err := SaveConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".config", "fluentquery", ".fluentquery.yaml"), path)

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "driver: mysql")
	assert.Contains(t, string(data), "database: shop")
	assert.NotContains(t, string(data), "never-written")

	v, err := New("/elsewhere")
	require.NoError(t, err)
	loaded, err := Load(v, "/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, "mysql", loaded.Driver)
	assert.True(t, loaded.Debug)
}
