package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/layout"
	"github.com/jmylchreest/snackbar/internal/theme"
	"github.com/jmylchreest/snackbar/internal/tui"
)

var tuiOpts struct {
	theme      string
	layout     string
	maxVisible int
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Render the live toast stack in the terminal",
	Long: `Attach a terminal renderer to the running snackbard.

The renderer follows the daemon's queue over the web bridge, reports the
terminal size so narrow terminals center the stack, and drives the toast
controls.

Key bindings:
  j/k, ↑/↓    Move focus between toasts
  enter       Run the focused toast's action
  x, d        Dismiss the focused toast
  c           Copy the focused message to the clipboard
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	for _, cmd := range []*cobra.Command{rootCmd, tuiCmd} {
		cmd.Flags().StringVar(&tuiOpts.theme, "theme", "",
			"Theme name (default from snackbard.toml)")
		cmd.Flags().StringVar(&tuiOpts.layout, "layout", "",
			"Layout template (default, compact, detailed or a user template)")
		cmd.Flags().IntVar(&tuiOpts.maxVisible, "max-visible", -1,
			"Toasts drawn at once (0 = all; default from snackbard.toml)")
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	client, err := newWebClient()
	if err != nil {
		return err
	}

	opts, _, err := rendererOptions()
	if err != nil {
		return err
	}
	return tui.Run(tui.RunOptions{Options: opts, Queue: client})
}

// rendererOptions builds renderer settings from snackbard.toml, the CLI
// config and flags. The daemon config is returned for callers that host
// their own queue.
func rendererOptions() (tui.Options, *config.DaemonConfig, error) {
	dcfg, err := config.LoadDaemonConfig("")
	if err != nil {
		logger.Warn("failed to load daemon config, using defaults", "error", err)
		dcfg = config.DefaultDaemonConfig()
	}

	themeName := dcfg.Theme.Name
	if tuiOpts.theme != "" {
		themeName = tuiOpts.theme
	}
	themes := theme.NewLoader(theme.ThemesDir(config.ConfigDir()), logger)
	if err := themes.LoadTheme(themeName); err != nil {
		logger.Warn("theme not found, using default", "theme", themeName, "error", err)
	}

	layoutName := cfg.TUI.Layout
	if tuiOpts.layout != "" {
		layoutName = tuiOpts.layout
	}
	lc, err := layout.NewLoader(layout.LayoutsDir(config.ConfigDir())).Load(layoutName)
	if err != nil {
		return tui.Options{}, nil, err
	}

	maxVisible := dcfg.Display.MaxVisible
	if tuiOpts.maxVisible >= 0 {
		maxVisible = tuiOpts.maxVisible
	}

	return tui.Options{
		Theme:            themes.Current(),
		Layout:           lc,
		Width:            dcfg.Display.Width,
		MaxVisible:       maxVisible,
		Breakpoint:       dcfg.Display.MobileBreakpoint,
		ClipboardCommand: cfg.Clipboard.Command,
		OpenCommand:      cfg.TUI.OpenCommand,
	}, dcfg, nil
}
