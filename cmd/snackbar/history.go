package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/adapter/output"
	"github.com/jmylchreest/snackbar/internal/core"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/store"
)

var historyOpts struct {
	// Filter options
	since     string
	toastType string
	reason    string
	filter    string
	limit     int
	search    string

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format   string
	field    string
	template string

	follow bool
}

var historyCmd = &cobra.Command{
	Use:   "history [index|id]",
	Short: "Query the journal of closed toasts",
	Long: `Query the history journal and output it in various formats.

snackbard appends every toast to the journal when it closes, together with
why it closed (expired, dismissed, closed, action).

With an index (1-based, after filtering and sorting) or id argument, outputs
that entry only.

Examples:
  # Everything closed in the last two days (the default window)
  snackbar history

  # Errors from the last hour
  snackbar history --type error --since 1h

  # Toasts whose action was used
  snackbar history --reason action

  # Filter expressions
  snackbar history --filter "type>=warn,message~disk"

  # Message of the most recent entry
  snackbar history 1 --field message

  # JSON for scripts
  snackbar history --format json

  # Watch toasts close as they happen
  snackbar history --since 0 --follow`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	// Filter flags
	historyCmd.Flags().StringVar(&historyOpts.since, "since", "",
		"Show entries closed within this duration (e.g., 1h, 7d, 1w; 0 = all)")
	historyCmd.Flags().StringVarP(&historyOpts.toastType, "type", "t", "",
		"Filter by type (success, info, warn, error)")
	historyCmd.Flags().StringVar(&historyOpts.reason, "reason", "",
		"Filter by close reason (expired, dismissed, closed, action)")
	historyCmd.Flags().StringVar(&historyOpts.filter, "filter", "",
		"Filter expression (e.g., \"type>=warn,message~disk\")")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 0,
		"Maximum number of entries to show (0=unlimited)")
	historyCmd.Flags().StringVarP(&historyOpts.search, "search", "s", "",
		"Search in messages and action captions")

	// Sort flags
	historyCmd.Flags().StringVar(&historyOpts.sortBy, "sort", "",
		"Sort by field (closed, shown, type, reason, counter)")
	historyCmd.Flags().StringVar(&historyOpts.sortOrder, "order", "",
		"Sort order (asc, desc)")

	// Output flags
	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "",
		"Output format (plain, json, yaml, ids)")
	historyCmd.Flags().StringVar(&historyOpts.field, "field", "",
		"Output a single field (id, type, message, action, source, reason, shown, closed, lifetime)")
	historyCmd.Flags().StringVar(&historyOpts.template, "template", "",
		"Custom Go template for plain output")

	historyCmd.Flags().BoolVarP(&historyOpts.follow, "follow", "F", false,
		"Keep running and print entries as snackbard journals them")
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	filter, err := historyFilter()
	if err != nil {
		return err
	}
	expr, err := core.ParseFilter(historyOpts.filter)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	sortOpts, err := historySort()
	if err != nil {
		return err
	}

	// Search runs after the query, so the limit has to wait for it.
	limit := filter.Limit
	filter.Limit = 0
	entries := s.Query(filter, expr, sortOpts)
	entries = core.Search(entries, historyOpts.search)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	if len(args) > 0 {
		e, err := lookupEntry(entries, args[0])
		if err != nil {
			return err
		}
		return outputEntries([]model.Entry{*e}, true)
	}

	if len(entries) > 0 {
		if err := outputEntries(entries, false); err != nil {
			return err
		}
	} else {
		logger.Debug("no history entries to output")
	}

	if historyOpts.follow {
		return followHistory(s, filter, expr, entries)
	}
	return nil
}

// followHistory prints entries appended to the journal after seen until
// interrupted. Only Since and Type/Reason filters apply; the limit does not.
func followHistory(s *store.Store, filter core.FilterOptions, expr *core.FilterExpr, seen []model.Entry) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printed := make(map[string]bool, len(seen))
	for _, e := range seen {
		printed[entryKey(e)] = true
	}

	changes := s.Subscribe()
	defer s.Unsubscribe(changes)

	fw, err := store.NewStoreWatcher(s, historyFilePath())
	if err != nil {
		return fmt.Errorf("failed to watch history: %w", err)
	}
	if err := fw.Start(); err != nil {
		return fmt.Errorf("failed to watch history: %w", err)
	}
	defer func() { _ = fw.Stop() }()

	oldestFirst := core.SortOptions{Field: core.SortByClosed, Order: core.SortAsc}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-changes:
			if !ok {
				return nil
			}
			if ev.Type != store.ChangeTypeAdd {
				continue
			}

			var fresh []model.Entry
			for _, e := range core.Search(s.Query(filter, expr, oldestFirst), historyOpts.search) {
				if !printed[entryKey(e)] {
					printed[entryKey(e)] = true
					fresh = append(fresh, e)
				}
			}
			if len(fresh) == 0 {
				continue
			}
			if err := outputEntries(fresh, false); err != nil {
				return err
			}
		}
	}
}

// entryKey identifies a journal line; ids repeat when a toast is replaced.
func entryKey(e model.Entry) string {
	return e.ID + "/" + strconv.FormatUint(e.Counter, 10) + "/" + strconv.FormatInt(e.ClosedAt, 10)
}

// historyFilter merges flags over the config defaults.
func historyFilter() (core.FilterOptions, error) {
	opts := core.FilterOptions{Limit: cfg.History.Limit}
	if historyOpts.limit > 0 {
		opts.Limit = historyOpts.limit
	}

	since := cfg.History.Since
	if historyOpts.since != "" {
		since = historyOpts.since
	}
	d, err := core.ParseDuration(since)
	if err != nil {
		return opts, fmt.Errorf("invalid since duration: %w", err)
	}
	opts.Since = d

	if historyOpts.toastType != "" {
		t, err := model.ParseType(historyOpts.toastType)
		if err != nil {
			return opts, err
		}
		opts.Type = t
	}

	if historyOpts.reason != "" {
		r, err := core.ParseReason(historyOpts.reason)
		if err != nil {
			return opts, err
		}
		opts.Reason = r
	}
	return opts, nil
}

// historySort merges flags over the config defaults.
func historySort() (core.SortOptions, error) {
	fieldName := cfg.Sort.Field
	if historyOpts.sortBy != "" {
		fieldName = historyOpts.sortBy
	}
	orderName := cfg.Sort.Order
	if historyOpts.sortOrder != "" {
		orderName = historyOpts.sortOrder
	}

	field, err := core.ParseSortField(fieldName)
	if err != nil {
		return core.SortOptions{}, err
	}
	order, err := core.ParseSortOrder(orderName)
	if err != nil {
		return core.SortOptions{}, err
	}
	return core.SortOptions{Field: field, Order: order}, nil
}

// lookupEntry resolves a 1-based index or a toast id. Ids can repeat in the
// journal; the first match in the current order wins.
func lookupEntry(entries []model.Entry, ref string) (*model.Entry, error) {
	ref = strings.TrimSpace(ref)
	if idx, err := strconv.Atoi(ref); err == nil && idx > 0 && len(ref) < 6 {
		if idx > len(entries) {
			return nil, fmt.Errorf("history entry at index %d not found", idx)
		}
		return &entries[idx-1], nil
	}

	if e := core.LookupByID(entries, ref); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("history entry with id %s not found", ref)
}

// outputEntries writes entries with the requested formatter. A single
// looked-up entry defaults to JSON.
func outputEntries(entries []model.Entry, single bool) error {
	if historyOpts.field != "" {
		for i := range entries {
			fmt.Println(output.FormatField(&entries[i], historyOpts.field))
		}
		return nil
	}

	name := historyOpts.format
	if name == "" {
		name = cfg.Output.Format
		if single && historyOpts.template == "" {
			name = string(output.FormatJSON)
		}
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = historyOpts.template
	return output.NewFormatter(format, opts).Format(os.Stdout, entries)
}
