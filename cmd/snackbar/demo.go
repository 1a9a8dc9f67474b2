package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/tui"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Try toasts in a local queue",
	Long: `Run the terminal renderer against a private toast queue.

Number keys create sample toasts (basic, no dismiss, action, warn, error,
link, text dismiss, loading). Nothing is sent to snackbard and nothing is
written to the history journal.

The usual tui key bindings drive the toasts.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&tuiOpts.theme, "theme", "",
		"Theme name (default from snackbard.toml)")
	demoCmd.Flags().StringVar(&tuiOpts.layout, "layout", "",
		"Layout template (default, compact, detailed or a user template)")
	demoCmd.Flags().IntVar(&tuiOpts.maxVisible, "max-visible", -1,
		"Toasts drawn at once (0 = all; default from snackbard.toml)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	opts, dcfg, err := rendererOptions()
	if err != nil {
		return err
	}
	return tui.RunDemo(opts, dcfg.ToastDefaults(), dcfg.Position(), logger)
}
