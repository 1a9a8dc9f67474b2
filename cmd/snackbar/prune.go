package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/core"
	"github.com/jmylchreest/snackbar/internal/store"
)

var pruneOpts struct {
	olderThan string
	keep      int
	dryRun    bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the history journal",
	Long: `Remove old entries from the history journal.

Without flags the [prune] defaults from the config file are used.

Examples:
  # Remove entries closed more than 7 days ago
  snackbar history prune --older-than 7d

  # Keep only the 100 most recent entries
  snackbar history prune --keep 100

  # Preview what would be removed (dry run)
  snackbar history prune --older-than 48h --dry-run`,
	RunE: runPrune,
}

func init() {
	historyCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().StringVar(&pruneOpts.olderThan, "older-than", "",
		"Remove entries closed longer ago than this (e.g., 48h, 7d, 1w)")
	pruneCmd.Flags().IntVar(&pruneOpts.keep, "keep", 0,
		"Keep only the N most recent entries (0=unlimited)")
	pruneCmd.Flags().BoolVar(&pruneOpts.dryRun, "dry-run", false,
		"Show what would be removed without actually removing")
}

func runPrune(cmd *cobra.Command, args []string) error {
	olderThan := pruneOpts.olderThan
	keep := pruneOpts.keep
	if !cmd.Flags().Changed("older-than") && !cmd.Flags().Changed("keep") {
		olderThan = cfg.Prune.OlderThan
		keep = cfg.Prune.Keep
	}

	age, err := core.ParseDuration(olderThan)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	if age == 0 && keep == 0 {
		return fmt.Errorf("specify --older-than or --keep")
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	if s.Count() == 0 {
		fmt.Println("No entries in history")
		return nil
	}

	removed, err := s.Prune(store.PruneOptions{
		OlderThan: age,
		Keep:      keep,
		DryRun:    pruneOpts.dryRun,
	})
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	if len(removed) == 0 {
		fmt.Println("No entries to remove")
		return nil
	}

	if pruneOpts.dryRun {
		fmt.Printf("Would remove %d entries:\n", len(removed))
		for i, e := range removed {
			if i >= 10 {
				fmt.Printf("  ... and %d more\n", len(removed)-10)
				break
			}
			fmt.Printf("  - [%s] %s (%s)\n", e.Type, e.Message, humanize.Time(e.ClosedTime()))
		}
		return nil
	}

	fmt.Printf("Removed %d entries\n", len(removed))
	return nil
}
