package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/model"
)

var statusOpts struct {
	watch bool
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text       string `json:"text"`
	Alt        string `json:"alt,omitempty"`
	Tooltip    string `json:"tooltip,omitempty"`
	Class      string `json:"class,omitempty"`
	Percentage int    `json:"percentage,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output the active toast count in Waybar's custom module JSON format.

alt and class carry the most severe active type (success, info, warn,
error) or "empty". With --watch a new line is written on every queue
change, which suits Waybar's continuous mode:

  "custom/toasts": {
    "exec": "snackbar status --watch",
    "return-type": "json",
    "on-click": "snackbar tui"
  }`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&statusOpts.watch, "watch", "w", false,
		"Keep running and print a line on every change")
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := newWebClient()
	if err != nil {
		return err
	}

	if !statusOpts.watch {
		snap, err := client.Snapshot()
		if err != nil {
			return outputStatus(os.Stdout, WaybarStatus{Text: "", Alt: "error", Class: "error"})
		}
		return outputStatus(os.Stdout, generateStatus(snap.Toasts))
	}

	updates, cancel, err := client.Subscribe()
	if err != nil {
		return err
	}
	defer cancel()

	for snap := range updates {
		if err := outputStatus(os.Stdout, generateStatus(snap.Toasts)); err != nil {
			return err
		}
	}
	return outputStatus(os.Stdout, WaybarStatus{Text: "", Alt: "error", Class: "error"})
}

// severity orders types for the status class.
var severity = []model.Type{model.TypeError, model.TypeWarn, model.TypeInfo, model.TypeSuccess}

// generateStatus summarises the active toasts.
func generateStatus(toasts []model.Toast) WaybarStatus {
	if len(toasts) == 0 {
		return WaybarStatus{
			Text:  "",
			Alt:   "empty",
			Class: "empty",
		}
	}

	counts := make(map[model.Type]int)
	for _, t := range toasts {
		counts[t.Type]++
	}

	class := ""
	var lines []string
	for _, typ := range severity {
		n := counts[typ]
		if n == 0 {
			continue
		}
		name := strings.ToLower(string(typ))
		if class == "" {
			class = name
		}
		lines = append(lines, fmt.Sprintf("%s: %d", name, n))
	}

	return WaybarStatus{
		Text:       fmt.Sprintf("%d", len(toasts)),
		Alt:        class,
		Tooltip:    fmt.Sprintf("%d active\n%s", len(toasts), strings.Join(lines, "\n")),
		Class:      class,
		Percentage: min(len(toasts), 100),
	}
}

// outputStatus writes the status as one JSON line.
func outputStatus(w io.Writer, status WaybarStatus) error {
	encoder := json.NewEncoder(w)
	return encoder.Encode(status)
}
