package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/model"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"5000", 5 * time.Second, false},
		{"0", 0, false},
		{"10s", 10 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestDefaultDaemonConfig(t *testing.T) {
	cfg := DefaultDaemonConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "bottom-left", cfg.Display.Position)
	assert.Equal(t, 768, cfg.Display.WebBreakpoint)
	assert.Equal(t, model.DefaultPosition(), cfg.Position())

	d := cfg.ToastDefaults()
	assert.Equal(t, model.TypeInfo, d.Type)
	require.NotNil(t, d.Timeout)
	assert.Equal(t, model.DefaultTimeout, *d.Timeout)
	require.NotNil(t, d.HideDismissBtn)
	assert.False(t, *d.HideDismissBtn)
	assert.Equal(t, "close", d.DismissIcon)
}

func TestLoadDaemonConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snackbard.toml")

	content := `
[display]
position = "top-right"

[defaults]
type = "success"
timeout = "5000"
dismiss_text = "Got it"

[timeouts]
with_action = "20s"

[behavior]
reset_timer_on_reshow = true

[audio]
enabled = true
[audio.sounds]
error = "~/sounds/error.wav"

[web]
listen = "0.0.0.0:8080"
allowed_origins = ["http://localhost:3000"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadDaemonConfig(path)
	require.NoError(t, err)

	assert.Equal(t, model.Position{Horizontal: model.HorizontalRight, Vertical: model.VerticalTop}, cfg.Position())
	assert.Equal(t, 5*time.Second, cfg.Defaults.Timeout.Duration())
	assert.Equal(t, 20*time.Second, cfg.Timeouts.WithAction.Duration())
	assert.True(t, cfg.Behavior.ResetTimerOnReshow)
	assert.False(t, cfg.Behavior.DismissOnAction)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Web.AllowedOrigins)

	d := cfg.ToastDefaults()
	assert.Equal(t, model.TypeSuccess, d.Type)
	assert.Equal(t, "Got it", d.DismissText)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "sounds/error.wav"), cfg.GetSoundForType(model.TypeError))
	assert.Empty(t, cfg.GetSoundForType(model.TypeInfo))

	// Untouched sections keep defaults.
	assert.True(t, cfg.DBus.Enabled)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
}

func TestLoadDaemonConfig_Missing(t *testing.T) {
	cfg, err := LoadDaemonConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDaemonConfig(), cfg)
}

func TestLoadDaemonConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad position", "[display]\nposition = \"middle\"\n"},
		{"bad type", "[defaults]\ntype = \"loud\"\n"},
		{"bad volume", "[audio]\nvolume = 150\n"},
		{"bad duration", "[defaults]\ntimeout = \"soon\"\n"},
		{"negative timeout", "[defaults]\ntimeout = -5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "snackbard.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := LoadDaemonConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveDaemonConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "snackbard.toml")

	cfg := DefaultDaemonConfig()
	cfg.Display.Position = "top-center"
	cfg.Defaults.Timeout = Duration(3 * time.Second)
	require.NoError(t, SaveDaemonConfig(cfg, path))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "top-center", loaded.Display.Position)
	assert.Equal(t, 3*time.Second, loaded.Defaults.Timeout.Duration())
}

func TestDaemonConfig_HistoryPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")

	cfg := DefaultDaemonConfig()
	assert.Equal(t, "/tmp/data/snackbar/history.jsonl", cfg.HistoryPath())

	cfg.History.Path = "/var/lib/snackbar/journal.jsonl"
	assert.Equal(t, "/var/lib/snackbar/journal.jsonl", cfg.HistoryPath())
}
