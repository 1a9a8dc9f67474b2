package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/snackbar/internal/audio"
	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/metrics"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/store"
	"github.com/jmylchreest/snackbar/internal/theme"
	"github.com/jmylchreest/snackbar/internal/toast"
	"github.com/jmylchreest/snackbar/internal/web"
)

// activityInterval throttles last_toast_at writes to the state file.
const activityInterval = time.Second

// Options configures a Daemon. Empty paths select the XDG defaults.
type Options struct {
	ConfigPath string
	StatePath  string
	ThemesDir  string
	Version    string
	Logger     *slog.Logger

	// Overrides for the matching config sections.
	DisableDBus bool
	DisableWeb  bool
	Listen      string
}

// Daemon owns the toast host and every component around it.
type Daemon struct {
	opts   Options
	logger *slog.Logger

	mu            sync.Mutex
	started       bool
	cfg           *config.DaemonConfig
	statePosition *model.Position
	lastActivity  time.Time

	host     *toast.Host
	mgr      *toast.Manager
	notifier *InternalNotifier
	themes   *theme.Loader
	audio    *audio.Manager
	metrics  *metrics.Recorder
	history  *store.Store
	journal  *Journal

	dbusServer *dbus.NotificationServer
	bridge     *dbus.Bridge
	web        *web.Server

	configWatcher *ConfigWatcher
	stateWatcher  *StateWatcher
}

// New creates a daemon for cfg. Nothing runs until Start.
func New(cfg *config.DaemonConfig, opts Options) *Daemon {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DaemonConfigPath()
	}
	if opts.StatePath == "" {
		opts.StatePath = config.StatePath()
	}
	if opts.ThemesDir == "" {
		opts.ThemesDir = theme.ThemesDir(config.ConfigDir())
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	return &Daemon{
		opts:     opts,
		logger:   opts.Logger,
		cfg:      cfg,
		host:     toast.NewHost(),
		notifier: NewInternalNotifier(opts.Logger),
	}
}

// Host returns the toast host the bridges drive.
func (d *Daemon) Host() *toast.Host {
	return d.host
}

// Config returns the configuration currently applied.
func (d *Daemon) Config() *config.DaemonConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Start mounts the toast manager and starts every enabled component
// except the web listener, which Run serves.
func (d *Daemon) Start() error {
	cfg := d.Config()

	for _, dir := range []string{filepath.Dir(d.opts.ConfigPath), filepath.Dir(d.opts.StatePath)} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	state, err := store.LoadSharedState(d.opts.StatePath)
	if err != nil {
		d.logger.Warn("failed to load shared state", "error", err)
		state = store.DefaultSharedState()
	}
	d.statePosition = state.Position

	position := cfg.Position()
	if state.Position != nil {
		position = *state.Position
	}

	// Theme
	d.themes = theme.NewLoader(d.opts.ThemesDir, d.logger)
	if err := d.themes.LoadTheme(cfg.Theme.Name); err != nil {
		d.notifier.NotifyThemeError(err)
	}

	// Audio
	d.audio = audio.NewManager(cfg, d.logger)
	d.audio.Start()

	// Manager
	opts := []toast.Option{
		toast.WithLogger(d.logger),
		toast.WithDefaults(cfg.ToastDefaults()),
		toast.WithPosition(position),
		toast.WithTimeoutPolicy(toast.ActionTimeout(cfg.Timeouts.WithAction.Duration())),
		toast.WithBehavior(behaviorFor(cfg)),
	}
	if cfg.Metrics.Enabled {
		d.metrics = metrics.New(metrics.Config{Namespace: cfg.Metrics.Namespace})
		opts = append(opts, toast.WithRecorder(d.metrics))
	}
	mgr, err := d.host.Create(opts...)
	if err != nil {
		return fmt.Errorf("failed to create toast manager: %w", err)
	}
	d.mgr = mgr
	d.notifier.SetShowHandler(d.host.Show)

	// History
	if cfg.History.Enabled {
		if err := d.openHistory(cfg.HistoryPath()); err != nil {
			d.logger.Warn("history journal disabled", "error", err)
		}
	}

	// D-Bus
	if cfg.DBus.Enabled && !d.opts.DisableDBus {
		d.startDBus()
	}

	mgr.SetShowCallback(d.onShow)
	mgr.SetCloseCallback(d.onClose)

	// Web
	if cfg.Web.Enabled && !d.opts.DisableWeb {
		listen := cfg.Web.Listen
		if d.opts.Listen != "" {
			listen = d.opts.Listen
		}
		webOpts := web.Options{
			Listen:         listen,
			AllowedOrigins: cfg.Web.AllowedOrigins,
			Breakpoint:     cfg.Display.WebBreakpoint,
			Theme:          d.themes.Current,
			Logger:         d.logger,
		}
		if d.metrics != nil {
			webOpts.Metrics = d.metrics.Handler()
		}
		d.web = web.NewServer(d.host, webOpts)
	}

	// Reloads arriving from here on reach the running components. One
	// that came in while starting is applied now.
	d.mu.Lock()
	d.started = true
	latest := d.cfg
	d.mu.Unlock()
	if latest != cfg {
		d.ApplyConfig(latest)
		cfg = latest
	}

	// Hot reload
	d.configWatcher = NewConfigWatcher(d.opts.ConfigPath, d.logger)
	d.configWatcher.SetReloadCallback(d.ApplyConfig)
	d.configWatcher.SetErrorCallback(d.notifier.NotifyConfigError)
	if err := d.configWatcher.Start(cfg); err != nil {
		d.logger.Warn("config hot reload disabled", "error", err)
	}

	d.stateWatcher = NewStateWatcher(d.opts.StatePath, d.logger)
	d.stateWatcher.SetChangeCallback(d.ApplyState)
	if err := d.stateWatcher.Start(); err != nil {
		d.logger.Warn("state watcher disabled", "error", err)
	}

	d.logger.Info("snackbard started",
		"version", d.opts.Version,
		"position", position.String(),
		"theme", d.themes.CurrentName(),
		"dbus", d.dbusServer != nil,
		"web", d.web != nil,
		"history", d.history != nil,
	)
	return nil
}

func (d *Daemon) openHistory(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	p, err := store.NewJSONLPersistence(path)
	if err != nil {
		return err
	}
	d.history = store.NewStore(p)
	if err := d.history.Hydrate(); err != nil {
		d.logger.Warn("failed to hydrate history", "error", err)
	}
	d.journal = NewJournal(d.history, d.logger)
	d.logger.Info("history journal opened", "path", path, "count", d.history.Count())
	return nil
}

func (d *Daemon) startDBus() {
	info := dbus.DefaultServerInfo()
	info.Version = d.opts.Version
	server := dbus.NewNotificationServer(info, d.logger)

	bridge := dbus.NewBridge(server, d.host, d.logger)
	if err := server.Start(); err != nil {
		d.logger.Warn("D-Bus bridge disabled", "error", err)
		return
	}
	d.dbusServer = server
	d.bridge = bridge
	if d.journal != nil {
		d.journal.SetSkip(bridge.Transient)
	}
}

// onShow runs after every toast is inserted.
func (d *Daemon) onShow(t model.Toast) {
	go func() {
		if err := d.audio.PlayForType(t.Type); err != nil {
			d.notifier.NotifyAudioError(err)
		}
	}()
	d.recordActivity()
}

// onClose runs after every toast is removed.
func (d *Daemon) onClose(t model.Toast, reason model.CloseReason) {
	if d.journal != nil {
		d.journal.Record(t, reason)
	}
	if d.bridge != nil {
		d.bridge.ToastClosed(t, reason)
	}
}

// recordActivity stamps last_toast_at in the shared state for status bars.
func (d *Daemon) recordActivity() {
	d.mu.Lock()
	now := time.Now()
	if now.Sub(d.lastActivity) < activityInterval {
		d.mu.Unlock()
		return
	}
	d.lastActivity = now
	d.mu.Unlock()

	state, err := store.LoadSharedState(d.opts.StatePath)
	if err != nil {
		return
	}
	state.UpdateLastToast()
	if err := store.SaveSharedState(d.opts.StatePath, state); err != nil {
		d.logger.Debug("failed to save shared state", "error", err)
	}
}

// ApplyConfig applies a reloaded configuration to the running daemon.
// Bridge, metrics and history settings need a restart. Before Start has
// finished the config is only stored, and Start applies it.
func (d *Daemon) ApplyConfig(cfg *config.DaemonConfig) {
	d.mu.Lock()
	old := d.cfg
	d.cfg = cfg
	if !d.started {
		d.mu.Unlock()
		d.logger.Debug("config stored until startup finishes")
		return
	}
	statePosition := d.statePosition
	mgr, sounds, themes := d.mgr, d.audio, d.themes
	d.mu.Unlock()

	if err := mgr.ReplaceDefaults(cfg.ToastDefaults()); err != nil {
		d.logger.Warn("failed to apply toast defaults", "error", err)
	}
	mgr.UpdateBehavior(behaviorFor(cfg))
	mgr.SetTimeoutPolicy(toast.ActionTimeout(cfg.Timeouts.WithAction.Duration()))
	if statePosition == nil {
		if err := mgr.SetPosition(cfg.Position()); err != nil {
			d.logger.Warn("failed to apply position", "error", err)
		}
	}

	sounds.UpdateConfig(cfg)

	if old == nil || cfg.Theme.Name != old.Theme.Name {
		if err := themes.LoadTheme(cfg.Theme.Name); err != nil {
			d.notifier.NotifyThemeError(err)
		} else {
			d.notifier.NotifyThemeReloaded(cfg.Theme.Name)
		}
	} else if err := themes.Reload(); err != nil {
		d.notifier.NotifyThemeError(err)
	}

	if old != nil && restartRequired(old, cfg) {
		d.logger.Info("some configuration changes take effect after a restart")
	}
	d.notifier.NotifyConfigReloaded()
}

// ApplyState applies a changed shared state. A cleared position falls
// back to the configured one.
func (d *Daemon) ApplyState(state *store.SharedState) {
	d.mu.Lock()
	d.statePosition = state.Position
	cfg := d.cfg
	mgr := d.mgr
	started := d.started
	d.mu.Unlock()
	if !started {
		return
	}

	target := cfg.Position()
	if state.Position != nil {
		target = *state.Position
	}

	requested, _ := mgr.Position()
	if requested == target {
		return
	}
	if err := mgr.SetPosition(target); err != nil {
		d.logger.Warn("ignoring invalid position from state file", "error", err)
		return
	}
	d.logger.Info("position changed", "position", target.String(), "by", state.PositionSetBy)
	d.notifier.NotifyPositionChanged(target)
}

// Run starts the daemon, serves until ctx is cancelled and stops.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(); err != nil {
		return err
	}
	defer d.Stop()

	d.notifier.NotifyStartup(d.opts.Version)

	if d.web == nil {
		<-ctx.Done()
		return nil
	}

	errCh := make(chan error, 1)
	go func() { errCh <- d.web.Run(ctx) }()

	select {
	case <-ctx.Done():
		return <-errCh
	case err := <-errCh:
		if err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	}
}

// Stop shuts every component down. Active toasts are discarded.
func (d *Daemon) Stop() {
	d.mu.Lock()
	d.started = false
	d.mu.Unlock()

	if d.configWatcher != nil {
		d.configWatcher.Stop()
	}
	if d.stateWatcher != nil {
		d.stateWatcher.Stop()
	}
	if d.dbusServer != nil {
		_ = d.dbusServer.Stop()
	}
	if err := d.host.Destroy(); err != nil {
		d.logger.Debug("toast host already unmounted")
	}
	if d.audio != nil {
		d.audio.Stop()
	}
	if d.history != nil {
		if err := d.history.Close(); err != nil {
			d.logger.Warn("failed to close history", "error", err)
		}
	}
	d.logger.Info("snackbard stopped")
}

func behaviorFor(cfg *config.DaemonConfig) toast.Behavior {
	return toast.Behavior{
		ResetTimerOnReshow: cfg.Behavior.ResetTimerOnReshow,
		DismissOnAction:    cfg.Behavior.DismissOnAction,
	}
}

// restartRequired reports changes that are only read at startup.
func restartRequired(old, cfg *config.DaemonConfig) bool {
	return old.DBus != cfg.DBus ||
		old.Web.Enabled != cfg.Web.Enabled ||
		old.Web.Listen != cfg.Web.Listen ||
		!slices.Equal(old.Web.AllowedOrigins, cfg.Web.AllowedOrigins) ||
		(old.Web.Enabled && old.Display.WebBreakpoint != cfg.Display.WebBreakpoint) ||
		old.Metrics != cfg.Metrics ||
		old.History != cfg.History
}
