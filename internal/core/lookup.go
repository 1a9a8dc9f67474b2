package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Lookup errors.
var (
	ErrNoMatch   = errors.New("no toast matches")
	ErrAmbiguous = errors.New("reference matches more than one toast")
)

// LookupByID finds a journal entry by toast id.
// Returns nil if not found.
func LookupByID(entries []model.Entry, id string) *model.Entry {
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i]
		}
	}
	return nil
}

// ResolveToast resolves a user supplied reference against toasts in display
// order. The reference may be a full id, a unique case-insensitive id
// prefix, or a 1-based position.
func ResolveToast(toasts []model.Toast, ref string) (*model.Toast, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNoMatch
	}

	for i := range toasts {
		if toasts[i].ID == ref {
			return &toasts[i], nil
		}
	}

	if n, err := strconv.Atoi(ref); err == nil && len(ref) < 6 {
		if n < 1 || n > len(toasts) {
			return nil, fmt.Errorf("%w: position %d", ErrNoMatch, n)
		}
		return &toasts[n-1], nil
	}

	upper := strings.ToUpper(ref)
	var found *model.Toast
	for i := range toasts {
		if strings.HasPrefix(strings.ToUpper(toasts[i].ID), upper) {
			if found != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
			}
			found = &toasts[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, ref)
	}
	return found, nil
}

// Search finds entries whose message or action caption contains term.
// Case-insensitive substring match.
func Search(entries []model.Entry, term string) []model.Entry {
	if term == "" {
		return entries
	}

	term = strings.ToLower(term)
	var result []model.Entry

	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Message), term) ||
			strings.Contains(strings.ToLower(e.Action), term) {
			result = append(result, e)
		}
	}

	return result
}

// CountByType tallies entries per type.
func CountByType(entries []model.Entry) map[model.Type]int {
	counts := make(map[model.Type]int, len(model.Types))
	for _, e := range entries {
		counts[e.Type]++
	}
	return counts
}
