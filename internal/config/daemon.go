package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "10s", "1m", "1h30m", or integer milliseconds.
// A value of "0" or 0 means never expire.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Milliseconds returns the duration in milliseconds.
func (d Duration) Milliseconds() int {
	return int(time.Duration(d).Milliseconds())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Daemon defaults.
const (
	DefaultWebListen        = "127.0.0.1:7077"
	DefaultMetricsNamespace = "snackbar"
	DefaultWebBreakpoint    = 768
	DefaultMobileColumns    = 80
)

// DaemonConfig is the configuration for snackbard.
// Loaded from ~/.config/snackbar/snackbard.toml
type DaemonConfig struct {
	Display  DisplayConfig  `toml:"display"`
	Defaults DefaultsConfig `toml:"defaults"`
	Timeouts TimeoutConfig  `toml:"timeouts"`
	Behavior BehaviorConfig `toml:"behavior"`
	Audio    AudioConfig    `toml:"audio"`
	Theme    ThemeConfig    `toml:"theme"`
	DBus     DBusConfig     `toml:"dbus"`
	Web      WebConfig      `toml:"web"`
	Metrics  MetricsConfig  `toml:"metrics"`
	History  HistoryStore   `toml:"history"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	Position         string `toml:"position"`          // "bottom-left", "top-right", etc.
	MaxVisible       int    `toml:"max_visible"`       // Toasts drawn at once by renderers (0 = all)
	Width            int    `toml:"width"`             // Toast width in terminal columns
	MobileBreakpoint int    `toml:"mobile_breakpoint"` // Terminal columns below which the TUI reports mobile
	WebBreakpoint    int    `toml:"web_breakpoint"`    // Pixel width below which browsers report mobile
}

// DefaultsConfig contains the defaults applied to every toast.
type DefaultsConfig struct {
	Type              string   `toml:"type"`
	Timeout           Duration `toml:"timeout"` // "0" = never auto-dismiss
	HideDismissButton bool     `toml:"hide_dismiss_button"`
	DismissIcon       string   `toml:"dismiss_icon"`
	DismissText       string   `toml:"dismiss_text"`
}

// TimeoutConfig contains timeout overrides.
type TimeoutConfig struct {
	WithAction Duration `toml:"with_action"` // Timeout for toasts with an action button (0 = own timeout)
}

// BehaviorConfig contains behavior settings.
type BehaviorConfig struct {
	ResetTimerOnReshow bool `toml:"reset_timer_on_reshow"` // Re-showing an id restarts its timer
	DismissOnAction    bool `toml:"dismiss_on_action"`     // Remove non-link toasts after their action
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-type sound file paths.
type SoundConfig struct {
	Info    string `toml:"info"`
	Warn    string `toml:"warn"`
	Error   string `toml:"error"`
	Success string `toml:"success"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name string `toml:"name"` // Theme name without .toml extension
}

// DBusConfig contains freedesktop notification bridge settings.
type DBusConfig struct {
	Enabled bool `toml:"enabled"`
}

// WebConfig contains HTTP/WebSocket bridge settings.
type WebConfig struct {
	Enabled        bool     `toml:"enabled"`
	Listen         string   `toml:"listen"`
	AllowedOrigins []string `toml:"allowed_origins"` // Empty = same origin only
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`
}

// HistoryStore contains history journal settings.
type HistoryStore struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Empty = default data path
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Display: DisplayConfig{
			Position:         model.DefaultPosition().String(),
			MaxVisible:       5,
			Width:            48,
			MobileBreakpoint: DefaultMobileColumns,
			WebBreakpoint:    DefaultWebBreakpoint,
		},
		Defaults: DefaultsConfig{
			Type:        string(model.TypeInfo),
			Timeout:     Duration(model.DefaultTimeout),
			DismissIcon: model.DefaultDismissIcon,
		},
		Timeouts: TimeoutConfig{
			WithAction: Duration(0),
		},
		Behavior: BehaviorConfig{
			ResetTimerOnReshow: false,
			DismissOnAction:    false,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
		},
		Theme: ThemeConfig{
			Name: "default",
		},
		DBus: DBusConfig{
			Enabled: true,
		},
		Web: WebConfig{
			Enabled: true,
			Listen:  DefaultWebListen,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
		History: HistoryStore{
			Enabled: true,
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() string {
	return filepath.Join(ConfigDir(), "snackbard.toml")
}

// LoadDaemonConfig loads the daemon configuration from disk.
// If path is empty the default path is used. A missing file yields the
// default configuration. SNACKBARD_* environment variables override both.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		path = DaemonConfigPath()
	}

	// Start with defaults, then overlay with file contents and environment
	config := DefaultDaemonConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig saves the daemon configuration to disk.
func SaveDaemonConfig(config *DaemonConfig, path string) error {
	if path == "" {
		path = DaemonConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if _, err := model.ParsePositionString(c.Display.Position); err != nil {
		return fmt.Errorf("invalid position %q: %w", c.Display.Position, err)
	}
	if c.Display.MaxVisible < 0 || c.Display.MaxVisible > 50 {
		return fmt.Errorf("max_visible must be between 0 and 50, got %d", c.Display.MaxVisible)
	}
	if c.Display.Width < 20 || c.Display.Width > 200 {
		return fmt.Errorf("width must be between 20 and 200, got %d", c.Display.Width)
	}
	if c.Display.MobileBreakpoint < 0 || c.Display.WebBreakpoint < 0 {
		return fmt.Errorf("breakpoints cannot be negative")
	}

	if _, err := model.ParseType(c.Defaults.Type); err != nil {
		return fmt.Errorf("invalid default type: %w", err)
	}
	if c.Defaults.Timeout < 0 {
		return fmt.Errorf("default timeout cannot be negative")
	}
	if c.Timeouts.WithAction < 0 {
		return fmt.Errorf("with_action timeout cannot be negative")
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	if c.Web.Enabled && c.Web.Listen == "" {
		return fmt.Errorf("web.listen is required when the web bridge is enabled")
	}

	return nil
}

// Position returns the configured stack position.
func (c *DaemonConfig) Position() model.Position {
	p, err := model.ParsePositionString(c.Display.Position)
	if err != nil {
		return model.DefaultPosition()
	}
	return p
}

// ToastDefaults converts the [defaults] section into manager defaults.
func (c *DaemonConfig) ToastDefaults() model.Defaults {
	t, err := model.ParseType(c.Defaults.Type)
	if err != nil {
		t = model.TypeInfo
	}
	timeout := c.Defaults.Timeout.Duration()
	hide := c.Defaults.HideDismissButton
	return model.Defaults{
		Type:           t,
		Timeout:        &timeout,
		HideDismissBtn: &hide,
		DismissIcon:    c.Defaults.DismissIcon,
		DismissText:    c.Defaults.DismissText,
	}
}

// HistoryPath returns the journal path, falling back to the data directory.
func (c *DaemonConfig) HistoryPath() string {
	if c.History.Path != "" {
		return expandPath(c.History.Path)
	}
	return HistoryPath()
}

// GetSoundForType returns the sound file path for the given toast type.
// Expands ~ to home directory.
func (c *DaemonConfig) GetSoundForType(t model.Type) string {
	var path string
	switch t {
	case model.TypeWarn:
		path = c.Audio.Sounds.Warn
	case model.TypeError:
		path = c.Audio.Sounds.Error
	case model.TypeSuccess:
		path = c.Audio.Sounds.Success
	default:
		path = c.Audio.Sounds.Info
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
