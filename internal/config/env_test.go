package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDaemonConfig_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snackbard.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[display]
position = "top-left"

[web]
listen = "127.0.0.1:9000"
`), 0600))

	t.Setenv("SNACKBARD_POSITION", "bottom-center")
	t.Setenv("SNACKBARD_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SNACKBARD_DBUS", "false")

	cfg, err := LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "bottom-center", cfg.Display.Position)
	assert.Equal(t, "127.0.0.1:9000", cfg.Web.Listen)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Web.AllowedOrigins)
	assert.False(t, cfg.DBus.Enabled)
	assert.True(t, cfg.Web.Enabled)
}

func TestLoadDaemonConfig_EnvValidated(t *testing.T) {
	t.Setenv("SNACKBARD_POSITION", "sideways")

	_, err := LoadDaemonConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("SNACKBAR_TRANSPORT", "http")
	t.Setenv("SNACKBAR_ADDRESS", "10.0.0.2:7077")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Client.Transport)
	assert.Equal(t, "10.0.0.2:7077", cfg.Client.Address)
}
