// Package main provides the CLI entrypoint for snackbar.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/store"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose     bool
		historyFile string
		configPath  string
		transport   string
		address     string
	}
	logger *slog.Logger

	// historyStore is opened on demand by the history commands
	historyStore *store.Store
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "snackbar",
	Short: "Toast notifications for terminals and browsers",
	Long: `snackbar sends, inspects and renders toasts queued by snackbard.

Toasts can be sent over the freedesktop notification bus or the daemon's
web bridge, browsed in the terminal, and looked up later in the history
journal.

Running snackbar without a subcommand attaches the terminal renderer to
the running daemon.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logging
		setupLogger()

		// Load configuration
		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if globalOpts.transport != "" {
			cfg.Client.Transport = globalOpts.transport
		}
		if globalOpts.address != "" {
			cfg.Client.Address = globalOpts.address
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if historyStore != nil {
			return historyStore.Close()
		}
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.historyFile, "history-file", "",
		"Path to history journal (default: ~/.local/share/snackbar/history.jsonl)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/snackbar/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.transport, "transport", "",
		"How to reach snackbard: dbus or http (default from config)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.address, "address", "",
		"Address of the snackbard web bridge for the http transport")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// openStore opens the history journal. The daemon writes it; the CLI only
// reads and prunes.
func openStore() (*store.Store, error) {
	if historyStore != nil {
		return historyStore, nil
	}

	historyPath := historyFilePath()
	if globalOpts.historyFile == "" {
		if err := config.EnsureDataDir(); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	persistence, err := store.NewJSONLPersistence(historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	s := store.NewStore(persistence)
	if err := s.Hydrate(); err != nil {
		logger.Warn("failed to hydrate store from disk", "error", err)
	}
	logger.Debug("history loaded", "path", historyPath, "count", s.Count())

	historyStore = s
	return s, nil
}

// historyFilePath returns the journal path, honouring --history-file.
func historyFilePath() string {
	if globalOpts.historyFile != "" {
		return globalOpts.historyFile
	}
	return config.HistoryPath()
}
