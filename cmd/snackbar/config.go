package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/config"
)

var configInitOpts struct {
	daemon bool
	force  bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create configuration files",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the CLI and daemon config paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "cli:    %s\n", cliConfigPath())
		_, _ = fmt.Fprintf(out, "daemon: %s\n", config.DaemonConfigPath())
		_, _ = fmt.Fprintf(out, "state:  %s\n", config.StatePath())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Write a config file with the default settings.

Existing files are left alone unless --force is given.

Examples:
  snackbar config init
  snackbar config init --daemon`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd, configInitCmd)

	configInitCmd.Flags().BoolVar(&configInitOpts.daemon, "daemon", false,
		"Write snackbard.toml instead of the CLI config")
	configInitCmd.Flags().BoolVar(&configInitOpts.force, "force", false,
		"Overwrite an existing file")
}

func cliConfigPath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := cliConfigPath()
	if configInitOpts.daemon {
		path = config.DaemonConfigPath()
	}

	if !configInitOpts.force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	var err error
	if configInitOpts.daemon {
		err = config.SaveDaemonConfig(config.DefaultDaemonConfig(), path)
	} else {
		err = config.DefaultConfig().Save(path)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logger.Debug("wrote config", "path", path)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
