// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultSince     = "48h"
	DefaultSortField = "closed"
	DefaultSortOrder = "desc"
	DefaultOlderThan = "7d"
	DefaultFormat    = "plain"
)

// Config represents the snackbar CLI configuration.
type Config struct {
	History   HistoryConfig   `toml:"history"`
	Sort      SortConfig      `toml:"sort"`
	Prune     PruneConfig     `toml:"prune"`
	Output    OutputConfig    `toml:"output"`
	Client    ClientConfig    `toml:"client"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	TUI       TUIConfig       `toml:"tui"`
}

// HistoryConfig holds default history filtering options.
type HistoryConfig struct {
	Since string `toml:"since"` // Default time filter (0 = all time)
	Limit int    `toml:"limit"` // Max entries (0 = unlimited)
}

// SortConfig holds default sorting options.
type SortConfig struct {
	Field string `toml:"field"` // closed, shown, type, reason, counter
	Order string `toml:"order"` // asc, desc
}

// PruneConfig holds default prune options.
type PruneConfig struct {
	OlderThan string `toml:"older_than"` // Default age threshold
	Keep      int    `toml:"keep"`       // Max to keep (0 = unlimited)
}

// OutputConfig holds output formatting defaults.
type OutputConfig struct {
	Format string `toml:"format"` // plain, json, yaml, ids
}

// ClientConfig tells the CLI how to reach the daemon.
type ClientConfig struct {
	// Transport is "dbus" or "http".
	Transport string `toml:"transport"`
	// Address of the daemon's web bridge when Transport is "http".
	Address string `toml:"address"`
}

// ClipboardConfig holds clipboard settings for the TUI.
type ClipboardConfig struct {
	Command string `toml:"command"` // Empty = auto-detect wl-copy, xclip, xsel
}

// TUIConfig holds terminal renderer settings.
type TUIConfig struct {
	Layout      string `toml:"layout"`       // Layout template name
	OpenCommand string `toml:"open_command"` // Command that opens action links (empty = xdg-open)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			Since: DefaultSince,
			Limit: 0,
		},
		Sort: SortConfig{
			Field: DefaultSortField,
			Order: DefaultSortOrder,
		},
		Prune: PruneConfig{
			OlderThan: DefaultOlderThan,
			Keep:      0,
		},
		Output: OutputConfig{
			Format: DefaultFormat,
		},
		Client: ClientConfig{
			Transport: "dbus",
			Address:   DefaultWebListen,
		},
		TUI: TUIConfig{
			Layout: "default",
		},
	}
}

// ConfigDir returns the snackbar configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "snackbar")
}

// ConfigPath returns the path to the CLI config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "snackbar")
}

// HistoryPath returns the path to the history journal.
func HistoryPath() string {
	return filepath.Join(DataPath(), "history.jsonl")
}

// StatePath returns the path to the shared state file.
func StatePath() string {
	return filepath.Join(DataPath(), "state.json")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist. SNACKBAR_TRANSPORT and
// SNACKBAR_ADDRESS override the [client] section.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.ApplyEnv()
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}
