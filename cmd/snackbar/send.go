package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/adapter/input"
	"github.com/jmylchreest/snackbar/internal/core"
	"github.com/jmylchreest/snackbar/internal/model"
)

var sendOpts struct {
	// Input options
	stdin bool

	// Toast options
	id          string
	toastType   string
	timeout     string
	action      string
	link        string
	linkTarget  string
	noDismiss   bool
	dismissIcon string
	dismissText string
	loading     bool

	quiet bool
}

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Show a toast",
	Long: `Queue a toast on the running snackbard and print its id.

Requests can also be read from stdin as a JSON object, a JSON array or one
JSON object per line (--stdin). Flags are ignored for stdin requests.

Reusing an id replaces the toast that has it.

Examples:
  # Plain info toast
  snackbar send "Build finished"

  # Error toast, stays until dismissed
  snackbar send --type error "Deploy failed"

  # Toast with a link action
  snackbar send --action "Open PR" --link https://github.com/org/repo/pull/1 "Review requested"

  # Update a loading toast in place
  id=$(snackbar send --loading --timeout 0 "Syncing")
  snackbar send --id "$id" --type success "Synced"

  # Batch from a script
  echo '[{"message":"one"},{"message":"two","type":"warn"}]' | snackbar send --stdin`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolVar(&sendOpts.stdin, "stdin", false,
		"Read toast requests as JSON from stdin")

	sendCmd.Flags().StringVar(&sendOpts.id, "id", "",
		"Toast id (reusing an id replaces that toast)")
	sendCmd.Flags().StringVarP(&sendOpts.toastType, "type", "t", "",
		"Toast type (success, info, warn, error)")
	sendCmd.Flags().StringVar(&sendOpts.timeout, "timeout", "",
		"Auto-dismiss after this duration (e.g., 5s, 1m; 0 = never)")
	sendCmd.Flags().StringVarP(&sendOpts.action, "action", "a", "",
		"Caption of the action control")
	sendCmd.Flags().StringVar(&sendOpts.link, "link", "",
		"Open this URL when the action is activated")
	sendCmd.Flags().StringVar(&sendOpts.linkTarget, "link-target", "",
		"Browser target for the link (e.g., _blank)")
	sendCmd.Flags().BoolVar(&sendOpts.noDismiss, "no-dismiss", false,
		"Hide the dismiss control")
	sendCmd.Flags().StringVar(&sendOpts.dismissIcon, "dismiss-icon", "",
		"Icon name for the dismiss control")
	sendCmd.Flags().StringVar(&sendOpts.dismissText, "dismiss-text", "",
		"Text label for the dismiss control instead of an icon")
	sendCmd.Flags().BoolVar(&sendOpts.loading, "loading", false,
		"Show a progress indicator")

	sendCmd.Flags().BoolVarP(&sendOpts.quiet, "quiet", "q", false,
		"Do not print toast ids")
}

func runSend(cmd *cobra.Command, args []string) error {
	var requests []model.Request
	if sendOpts.stdin {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		adapter, err := input.NewAdapter("stdin")
		if err != nil {
			return err
		}
		requests, err = adapter.Read(ctx)
		if err != nil {
			return fmt.Errorf("failed to read requests: %w", err)
		}
		if len(requests) == 0 {
			return errors.New("no requests on stdin")
		}
	} else {
		req, err := requestFromFlags(cmd, args)
		if err != nil {
			return err
		}
		requests = []model.Request{req}
	}

	client, err := newDaemonClient()
	if err != nil {
		return err
	}

	for _, req := range requests {
		id, err := client.Show(req)
		if err != nil {
			return fmt.Errorf("failed to show toast: %w", err)
		}
		logger.Debug("toast sent", "id", id, "transport", cfg.Client.Transport)
		if !sendOpts.quiet {
			fmt.Println(id)
		}
	}
	return nil
}

// requestFromFlags builds a request from the message argument and flags.
func requestFromFlags(cmd *cobra.Command, args []string) (model.Request, error) {
	if len(args) == 0 {
		return model.Request{}, errors.New("message required (or use --stdin)")
	}

	req := model.Request{
		ID:          sendOpts.id,
		Message:     strings.Join(args, " "),
		Type:        sendOpts.toastType,
		DismissIcon: sendOpts.dismissIcon,
		DismissText: sendOpts.dismissText,
		Loading:     sendOpts.loading,
	}

	if cmd.Flags().Changed("timeout") {
		d, err := core.ParseDuration(sendOpts.timeout)
		if err != nil {
			return model.Request{}, fmt.Errorf("invalid timeout: %w", err)
		}
		req.TimeoutMS = model.Ptr(d.Milliseconds())
	}

	if sendOpts.noDismiss {
		req.HideDismissBtn = model.Ptr(true)
	}

	if sendOpts.action != "" || sendOpts.link != "" {
		caption := sendOpts.action
		if caption == "" {
			caption = "Open"
		}
		req.Action = &model.ActionButton{
			Caption:    caption,
			Link:       sendOpts.link,
			LinkTarget: sendOpts.linkTarget,
		}
	}

	// Validate locally so the daemon never sees a bad request.
	if _, err := req.Config(); err != nil {
		return model.Request{}, err
	}
	return req, nil
}
