package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// daemonEnv holds environment overrides for snackbard. Unset variables
// leave the file value alone.
type daemonEnv struct {
	Position       string   `env:"SNACKBARD_POSITION"`
	Theme          string   `env:"SNACKBARD_THEME"`
	Listen         string   `env:"SNACKBARD_LISTEN"`
	AllowedOrigins []string `env:"SNACKBARD_ALLOWED_ORIGINS" envSeparator:","`
	DBus           *bool    `env:"SNACKBARD_DBUS"`
	Web            *bool    `env:"SNACKBARD_WEB"`
	Metrics        *bool    `env:"SNACKBARD_METRICS"`
	HistoryPath    string   `env:"SNACKBARD_HISTORY_PATH"`
}

// clientEnv holds environment overrides for the CLI.
type clientEnv struct {
	Transport string `env:"SNACKBAR_TRANSPORT"`
	Address   string `env:"SNACKBAR_ADDRESS"`
}

// ApplyEnv overlays SNACKBARD_* variables onto c.
func (c *DaemonConfig) ApplyEnv() error {
	var e daemonEnv
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if e.Position != "" {
		c.Display.Position = e.Position
	}
	if e.Theme != "" {
		c.Theme.Name = e.Theme
	}
	if e.Listen != "" {
		c.Web.Listen = e.Listen
	}
	if len(e.AllowedOrigins) > 0 {
		c.Web.AllowedOrigins = e.AllowedOrigins
	}
	if e.DBus != nil {
		c.DBus.Enabled = *e.DBus
	}
	if e.Web != nil {
		c.Web.Enabled = *e.Web
	}
	if e.Metrics != nil {
		c.Metrics.Enabled = *e.Metrics
	}
	if e.HistoryPath != "" {
		c.History.Path = e.HistoryPath
	}
	return nil
}

// ApplyEnv overlays SNACKBAR_* variables onto c.
func (c *Config) ApplyEnv() error {
	var e clientEnv
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if e.Transport != "" {
		c.Client.Transport = e.Transport
	}
	if e.Address != "" {
		c.Client.Address = e.Address
	}
	return nil
}
