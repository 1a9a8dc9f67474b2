package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/store"
)

var positionOpts struct {
	quiet bool // Suppress output
}

// positionCmd represents the position command group.
var positionCmd = &cobra.Command{
	Use:   "position [vertical-horizontal | horizontal vertical]",
	Short: "Move the toast stack",
	Long: `Set where snackbard anchors the toast stack.

The preference is written to the shared state file, which snackbard
watches, so it applies to every renderer and survives restarts. Mobile
viewports always center the stack horizontally.

Use 'snackbar position top-right' or 'snackbar position right top' to move it.
Use 'snackbar position clear' to go back to the configured position.
Use 'snackbar position status' to see the current preference.`,
	Args: cobra.MaximumNArgs(2),
	RunE: positionSetRun,
}

// positionClearCmd drops the preference.
var positionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Use the configured position again",
	Long:  `Drop the position preference so snackbard uses display.position from its config.`,
	RunE:  positionClearRun,
}

// positionStatusCmd shows the preference.
var positionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the position preference",
	Long:  `Show the position preference and when it was last changed.`,
	RunE:  positionStatusRun,
}

func init() {
	positionCmd.AddCommand(positionClearCmd)
	positionCmd.AddCommand(positionStatusCmd)

	for _, cmd := range []*cobra.Command{positionCmd, positionClearCmd, positionStatusCmd} {
		cmd.Flags().BoolVarP(&positionOpts.quiet, "quiet", "q", false,
			"Suppress output")
	}

	rootCmd.AddCommand(positionCmd)
}

// parsePositionArgs accepts "top-right" or "right top".
func parsePositionArgs(args []string) (model.Position, error) {
	if len(args) == 1 {
		return model.ParsePositionString(args[0])
	}
	return model.ParsePosition(args[0], args[1])
}

func positionSetRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return positionStatusRun(cmd, args)
	}

	p, err := parsePositionArgs(args)
	if err != nil {
		return err
	}

	path := config.StatePath()
	state, err := store.LoadSharedState(path)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	if err := state.SetPosition(p, "cli"); err != nil {
		return err
	}
	if err := store.SaveSharedState(path, state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	if !positionOpts.quiet {
		fmt.Printf("Position: %s\n", p)
	}
	return nil
}

func positionClearRun(cmd *cobra.Command, args []string) error {
	path := config.StatePath()
	state, err := store.LoadSharedState(path)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	state.ClearPosition()
	if err := store.SaveSharedState(path, state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	if !positionOpts.quiet {
		fmt.Println("Position: from config")
	}
	return nil
}

func positionStatusRun(cmd *cobra.Command, args []string) error {
	state, err := store.LoadSharedState(config.StatePath())
	if err != nil {
		if !positionOpts.quiet {
			fmt.Fprintf(os.Stderr, "Failed to load state: %v\n", err)
		}
		return err
	}
	if positionOpts.quiet {
		return nil
	}

	if state.Position == nil {
		fmt.Println("Position: from config")
	} else {
		fmt.Printf("Position: %s\n", state.Position)
		fmt.Printf("  Last change: %s\n", formatStateTime(state.PositionSetAt))
		if state.PositionSetBy != "" {
			fmt.Printf("  Source: %s\n", state.PositionSetBy)
		}
	}
	if state.LastToastAt > 0 {
		fmt.Printf("Last toast: %s\n", formatStateTime(state.LastToastAt))
	}
	return nil
}

// formatStateTime formats a unix timestamp as a human-readable relative time.
func formatStateTime(timestamp int64) string {
	return humanize.Time(time.Unix(timestamp, 0))
}
