package daemon

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/store"
)

func testConfig(dir string) *config.DaemonConfig {
	cfg := config.DefaultDaemonConfig()
	cfg.DBus.Enabled = false
	cfg.Web.Enabled = false
	cfg.Defaults.Timeout = 0
	cfg.History.Path = filepath.Join(dir, "data", "history.jsonl")
	return cfg
}

func newTestDaemon(t *testing.T) (*Daemon, string) {
	t.Helper()
	dir := t.TempDir()
	d := New(testConfig(dir), Options{
		ConfigPath: filepath.Join(dir, "config", "snackbard.toml"),
		StatePath:  filepath.Join(dir, "data", "state.json"),
		ThemesDir:  filepath.Join(dir, "themes"),
		Version:    "test",
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, d.Start())
	t.Cleanup(d.Stop)
	return d, dir
}

func TestDaemon_JournalsClosedToasts(t *testing.T) {
	d, _ := newTestDaemon(t)

	id, err := d.Host().Show(model.Config{Message: "Saved", Type: model.TypeSuccess})
	require.NoError(t, err)
	removed, err := d.Host().Dismiss(id)
	require.NoError(t, err)
	require.True(t, removed)

	require.Equal(t, 1, d.history.Count())
	e := d.history.Lookup(id)
	require.NotNil(t, e)
	assert.Equal(t, model.ReasonDismissed, e.Reason)
	assert.Equal(t, "Saved", e.Message)
	assert.NotNil(t, d.metrics)
}

func TestDaemon_ApplyConfig(t *testing.T) {
	d, dir := newTestDaemon(t)

	cfg := testConfig(dir)
	cfg.Defaults.Type = "warn"
	cfg.Display.Position = "top-right"
	cfg.Behavior.DismissOnAction = true
	d.ApplyConfig(cfg)

	assert.Equal(t, model.TypeWarn, d.mgr.Defaults().Type)
	requested, _ := d.mgr.Position()
	assert.Equal(t, model.Position{Horizontal: model.HorizontalRight, Vertical: model.VerticalTop}, requested)
	assert.Same(t, cfg, d.Config())

	_, ok := d.mgr.Get("snackbard-config-reload")
	assert.True(t, ok)
}

func TestDaemon_ApplyConfigBeforeStart(t *testing.T) {
	dir := t.TempDir()
	d := New(testConfig(dir), Options{
		ConfigPath: filepath.Join(dir, "config", "snackbard.toml"),
		StatePath:  filepath.Join(dir, "data", "state.json"),
		ThemesDir:  filepath.Join(dir, "themes"),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	early := testConfig(dir)
	early.Defaults.Type = "warn"
	require.NotPanics(t, func() { d.ApplyConfig(early) })
	require.NotPanics(t, func() { d.ApplyState(store.DefaultSharedState()) })
	assert.Same(t, early, d.Config())

	require.NoError(t, d.Start())
	t.Cleanup(d.Stop)
	assert.Equal(t, model.TypeWarn, d.mgr.Defaults().Type)
}

func TestDaemon_ApplyState(t *testing.T) {
	d, _ := newTestDaemon(t)

	state := store.DefaultSharedState()
	top := model.Position{Horizontal: model.HorizontalCenter, Vertical: model.VerticalTop}
	require.NoError(t, state.SetPosition(top, "cli"))
	require.NoError(t, store.SaveSharedState(d.opts.StatePath, state))
	d.ApplyState(state)

	requested, _ := d.mgr.Position()
	assert.Equal(t, top, requested)
	_, ok := d.mgr.Get("snackbard-position-change")
	assert.True(t, ok)

	// State position survives a config reload
	d.ApplyConfig(d.Config())
	requested, _ = d.mgr.Position()
	assert.Equal(t, top, requested)

	state.ClearPosition()
	require.NoError(t, store.SaveSharedState(d.opts.StatePath, state))
	d.ApplyState(state)
	requested, _ = d.mgr.Position()
	assert.Equal(t, model.DefaultPosition(), requested)
}

func TestDaemon_HotReload(t *testing.T) {
	d, _ := newTestDaemon(t)

	require.NoError(t, os.WriteFile(d.opts.ConfigPath, []byte("[display]\nposition = \"sideways\"\n"), 0600))
	assert.Eventually(t, func() bool {
		_, ok := d.mgr.Get("snackbard-config-error")
		return ok
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, model.DefaultPosition().String(), d.Config().Display.Position)

	require.NoError(t, os.WriteFile(d.opts.ConfigPath, []byte("[display]\nposition = \"top-left\"\n"), 0600))
	assert.Eventually(t, func() bool {
		requested, _ := d.mgr.Position()
		return requested.Vertical == model.VerticalTop
	}, 3*time.Second, 20*time.Millisecond)
}

func TestDaemon_StateFileMovesStack(t *testing.T) {
	d, _ := newTestDaemon(t)

	state := store.DefaultSharedState()
	require.NoError(t, state.SetPosition(model.Position{Horizontal: model.HorizontalRight, Vertical: model.VerticalBottom}, "cli"))
	require.NoError(t, store.SaveSharedState(d.opts.StatePath, state))

	assert.Eventually(t, func() bool {
		requested, _ := d.mgr.Position()
		return requested.Horizontal == model.HorizontalRight
	}, 3*time.Second, 20*time.Millisecond)
}

func TestJournal_Skip(t *testing.T) {
	dir := t.TempDir()
	p, err := store.NewJSONLPersistence(filepath.Join(dir, "history.jsonl"))
	require.NoError(t, err)
	s := store.NewStore(p)
	t.Cleanup(func() { _ = s.Close() })

	j := NewJournal(s, nil)
	j.now = func() time.Time { return time.Unix(2000, 0) }
	j.SetSkip(func(id string) bool { return id == "dbus-2" })

	shown := time.Unix(1990, 0)
	j.Record(model.Toast{ID: "dbus-1", Type: model.TypeInfo, Message: "a", CreatedAt: shown}, model.ReasonExpired)
	j.Record(model.Toast{ID: "dbus-2", Type: model.TypeInfo, Message: "b", CreatedAt: shown}, model.ReasonExpired)
	j.Record(model.Toast{ID: "snackbard-startup", Type: model.TypeInfo, Message: "c", CreatedAt: shown}, model.ReasonClosed)

	assert.Equal(t, 2, s.Count())
	e := s.Lookup("dbus-1")
	require.NotNil(t, e)
	assert.Equal(t, "dbus", e.Source)
	assert.Equal(t, int64(2000), e.ClosedAt)
	assert.Equal(t, 10*time.Second, e.Lifetime())
	assert.Equal(t, "snackbard", s.Lookup("snackbard-startup").Source)
	assert.Nil(t, s.Lookup("dbus-2"))
}

func TestRestartRequired(t *testing.T) {
	a := config.DefaultDaemonConfig()
	b := config.DefaultDaemonConfig()
	assert.False(t, restartRequired(a, b))

	b.Defaults.Type = "error"
	assert.False(t, restartRequired(a, b))

	b.Web.Listen = "127.0.0.1:9999"
	assert.True(t, restartRequired(a, b))

	c := config.DefaultDaemonConfig()
	c.Web.AllowedOrigins = []string{"http://localhost:3000"}
	assert.True(t, restartRequired(a, c))
}
