package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/snackbar/internal/adapter/output"
	"github.com/jmylchreest/snackbar/internal/model"
)

var listOpts struct {
	format string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active toasts",
	Long: `List the toasts currently queued on snackbard, oldest first.

The live queue is read from the web bridge, so this command always uses
the http transport.

Examples:
  snackbar list
  snackbar list --format json
  snackbar list --format ids | snackbar --transport http close --stdin`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml, ids)")
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(listOpts.format)
	if err != nil {
		return err
	}

	toasts, err := activeToasts()
	if err != nil {
		return err
	}
	return writeToasts(os.Stdout, toasts, format, time.Now())
}

// writeToasts prints active toasts in the requested format.
func writeToasts(w io.Writer, toasts []model.Toast, format output.FormatType, now time.Time) error {
	switch format {
	case output.FormatJSON:
		if toasts == nil {
			toasts = []model.Toast{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toasts)

	case output.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toasts); err != nil {
			return err
		}
		return enc.Close()

	case output.FormatIDs:
		for _, t := range toasts {
			if _, err := fmt.Fprintln(w, t.ID); err != nil {
				return err
			}
		}
		return nil
	}

	for i, t := range toasts {
		line := fmt.Sprintf("[%d] %-7s %s", i+1, t.Type, t.Message)
		if t.ActionButton != nil {
			line += " [" + t.ActionButton.Caption + "]"
		}
		line += fmt.Sprintf(" (%s, shown %s", t.ID, humanize.RelTime(t.CreatedAt, now, "ago", "from now"))
		// Timeout does not survive the JSON round trip; TimeoutMS does.
		if t.TimeoutMS > 0 {
			closes := t.CreatedAt.Add(time.Duration(t.TimeoutMS) * time.Millisecond)
			line += ", closes " + humanize.RelTime(closes, now, "ago", "from now")
		}
		line += ")"
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
