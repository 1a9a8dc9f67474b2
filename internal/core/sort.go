// Package core provides filtering, sorting, and lookup logic.
package core

import (
	"cmp"
	"sort"
	"strings"

	"github.com/jmylchreest/snackbar/internal/model"
)

// SortDisplayOrder sorts toasts into display order (ascending counter).
func SortDisplayOrder(toasts []model.Toast) {
	sort.Slice(toasts, func(i, j int) bool {
		return toasts[i].Counter < toasts[j].Counter
	})
}

// SortField represents a field to sort by.
type SortField string

const (
	SortByClosed  SortField = "closed"
	SortByShown   SortField = "shown"
	SortByType    SortField = "type"
	SortByReason  SortField = "reason"
	SortByCounter SortField = "counter"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField // Field to sort by
	Order SortOrder // Sort order (asc/desc)
}

// DefaultSortOptions returns default sort options (most recently closed first).
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByClosed,
		Order: SortDesc,
	}
}

// typeRank orders types by severity.
var typeRank = map[model.Type]int{
	model.TypeSuccess: 0,
	model.TypeInfo:    1,
	model.TypeWarn:    2,
	model.TypeError:   3,
}

// Sort sorts journal entries in place based on the provided options.
// Ties are broken by counter so the result is deterministic.
func Sort(entries []model.Entry, opts SortOptions) {
	if len(entries) == 0 {
		return
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		var order int
		switch opts.Field {
		case SortByShown:
			order = cmp.Compare(a.ShownAt, b.ShownAt)
		case SortByType:
			order = cmp.Compare(typeRank[a.Type], typeRank[b.Type])
		case SortByReason:
			order = strings.Compare(string(a.Reason), string(b.Reason))
		case SortByCounter:
			// ordered by the tie-break below
		default:
			order = cmp.Compare(a.ClosedAt, b.ClosedAt)
		}
		if order == 0 {
			order = cmp.Compare(a.Counter, b.Counter)
		}

		if opts.Order == SortDesc {
			return order > 0
		}
		return order < 0
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "closed", "time", "t":
		return SortByClosed, nil
	case "shown", "created", "s":
		return SortByShown, nil
	case "type", "severity":
		return SortByType, nil
	case "reason", "r":
		return SortByReason, nil
	case "counter", "order", "c":
		return SortByCounter, nil
	default:
		return SortByClosed, nil
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "a":
		return SortAsc, nil
	case "desc", "descending", "d":
		return SortDesc, nil
	default:
		return SortDesc, nil
	}
}
