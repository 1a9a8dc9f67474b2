package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/core"
	"github.com/jmylchreest/snackbar/internal/model"
)

var closeOpts struct {
	stdin bool
	all   bool
}

var closeCmd = &cobra.Command{
	Use:   "close [id...]",
	Short: "Close active toasts",
	Long: `Remove toasts from the running snackbard without running their action.

With the dbus transport ids are the "dbus-N" values printed by send. With
the http transport an id may also be a unique id prefix or a 1-based
position in the stack, and --all closes every toast.

Examples:
  # Close a toast sent earlier
  snackbar close dbus-12

  # Close the oldest toast over http
  snackbar --transport http close 1

  # Close everything
  snackbar --transport http close --all

  # Close ids piped from another command
  snackbar list --format ids | snackbar --transport http close --stdin`,
	RunE: runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)

	closeCmd.Flags().BoolVar(&closeOpts.stdin, "stdin", false,
		"Read ids from stdin (first field of each line)")
	closeCmd.Flags().BoolVar(&closeOpts.all, "all", false,
		"Close every active toast (http transport only)")
}

func runClose(cmd *cobra.Command, args []string) error {
	refs := args
	if closeOpts.stdin {
		stdinRefs, err := readRefs(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
		refs = append(refs, stdinRefs...)
	}

	if cfg.Client.Transport == transportHTTP {
		return closeOverHTTP(refs)
	}

	if closeOpts.all {
		return errors.New("--all needs the http transport")
	}
	if len(refs) == 0 {
		return errors.New("no toast ids provided")
	}

	client, err := newDaemonClient()
	if err != nil {
		return err
	}
	return closeIDs(client, uniqueStrings(refs))
}

// closeOverHTTP resolves references against the live queue first.
func closeOverHTTP(refs []string) error {
	client, err := newWebClient()
	if err != nil {
		return err
	}

	snap, err := client.Snapshot()
	if err != nil {
		return err
	}

	var ids []string
	if closeOpts.all {
		ids = snap.IDs()
	} else {
		if len(refs) == 0 {
			return errors.New("no toast ids provided")
		}
		ordered := slices.Clone(snap.Toasts)
		core.SortDisplayOrder(ordered)
		for _, ref := range refs {
			t, err := core.ResolveToast(ordered, ref)
			if err != nil {
				return err
			}
			ids = append(ids, t.ID)
		}
	}

	if len(ids) == 0 {
		fmt.Println("No active toasts")
		return nil
	}
	return closeIDs(client, uniqueStrings(ids))
}

func closeIDs(client daemonClient, ids []string) error {
	var closed, failed int
	for _, id := range ids {
		removed, err := client.Hide(id)
		switch {
		case err != nil:
			logger.Warn("failed to close toast", "id", id, "error", err)
			failed++
		case !removed:
			logger.Debug("toast already gone", "id", id)
		default:
			closed++
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "closed %d toasts, %d failed\n", closed, failed)
		return fmt.Errorf("%d toasts could not be closed", failed)
	}
	fmt.Printf("closed %d toasts\n", closed)
	return nil
}

// readRefs returns the first field of every non-empty line.
func readRefs(r io.Reader) ([]string, error) {
	var refs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		refs = append(refs, fields[0])
	}
	return refs, scanner.Err()
}

// uniqueStrings removes duplicates, keeping the first occurrence.
func uniqueStrings(s []string) []string {
	seen := make(map[string]bool, len(s))
	out := make([]string, 0, len(s))
	for _, v := range s {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// activeToasts returns the live queue in display order, oldest first.
func activeToasts() ([]model.Toast, error) {
	client, err := newWebClient()
	if err != nil {
		return nil, err
	}
	snap, err := client.Snapshot()
	if err != nil {
		return nil, err
	}
	toasts := slices.Clone(snap.Toasts)
	core.SortDisplayOrder(toasts)
	return toasts, nil
}
