// Package store provides the history journal for closed toasts.
package store

import (
	"strconv"
	"sync"
	"time"

	"github.com/jmylchreest/snackbar/internal/core"
	"github.com/jmylchreest/snackbar/internal/model"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates entries were added.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeClear indicates all entries were cleared.
	ChangeTypeClear
	// ChangeTypePrune indicates entries were pruned.
	ChangeTypePrune
	// ChangeTypeDelete indicates an entry was deleted.
	ChangeTypeDelete
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type   ChangeType
	Count  int
	Source string
}

// PruneOptions selects entries to drop from the journal.
type PruneOptions struct {
	OlderThan time.Duration    // Drop entries closed before now-OlderThan (0 = no age limit)
	Keep      int              // Keep at most this many newest entries (0 = unlimited)
	DryRun    bool             // Report without changing anything
	Now       func() time.Time // Clock override for tests
}

// Store manages the history journal with thread-safe operations.
type Store struct {
	mu      sync.RWMutex
	entries []model.Entry
	index   map[string]int // entry key -> slice index

	persistence Persistence

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates a new Store.
// If persistence is not nil, it will be used to persist entries.
func NewStore(persistence Persistence) *Store {
	return &Store{
		entries:     make([]model.Entry, 0),
		index:       make(map[string]int),
		persistence: persistence,
		subscribers: make([]chan ChangeEvent, 0),
	}
}

// entryKey identifies a journal line. Toast ids may be reused by callers,
// so the display counter and close time are part of the key.
func entryKey(e model.Entry) string {
	return e.ID + "/" + strconv.FormatUint(e.Counter, 10) + "/" + strconv.FormatInt(e.ClosedAt, 10)
}

// Add records a closed toast.
func (s *Store) Add(e model.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	key := entryKey(e)
	if _, exists := s.index[key]; exists {
		return nil
	}

	s.index[key] = len(s.entries)
	s.entries = append(s.entries, e)

	if s.persistence != nil {
		if err := s.persistence.Append(e); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:   ChangeTypeAdd,
		Count:  1,
		Source: e.Source,
	})

	return nil
}

// All returns all entries, most recently closed first.
func (s *Store) All() []model.Entry {
	s.mu.RLock()
	result := make([]model.Entry, len(s.entries))
	copy(result, s.entries)
	s.mu.RUnlock()

	core.Sort(result, core.DefaultSortOptions())
	return result
}

// Query filters and sorts entries.
func (s *Store) Query(filter core.FilterOptions, expr *core.FilterExpr, sortOpts core.SortOptions) []model.Entry {
	s.mu.RLock()
	result := make([]model.Entry, len(s.entries))
	copy(result, s.entries)
	s.mu.RUnlock()

	limit := filter.Limit
	filter.Limit = 0
	result = core.Filter(result, filter)
	result = core.FilterWithExpr(result, expr)
	core.Sort(result, sortOpts)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Lookup returns the most recent entry for a toast id.
func (s *Store) Lookup(id string) *model.Entry {
	all := s.All()
	if e := core.LookupByID(all, id); e != nil {
		found := *e
		return &found
	}
	return nil
}

// Count returns the total number of entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Delete removes every entry for a toast id. Returns the number removed.
func (s *Store) Delete(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	kept := s.entries[:0:0]
	for _, e := range s.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	removed := len(s.entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := s.replaceLocked(kept); err != nil {
		return 0, err
	}

	s.notifyChange(ChangeEvent{
		Type:  ChangeTypeDelete,
		Count: removed,
	})
	return removed, nil
}

// Prune drops entries by age and count. Returns the entries removed (or that
// would be removed when DryRun is set).
func (s *Store) Prune(opts PruneOptions) ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	now := time.Now()
	if opts.Now != nil {
		now = opts.Now()
	}

	sorted := make([]model.Entry, len(s.entries))
	copy(sorted, s.entries)
	core.Sort(sorted, core.DefaultSortOptions())

	var kept, removed []model.Entry
	cutoff := now.Add(-opts.OlderThan).Unix()
	for _, e := range sorted {
		switch {
		case opts.OlderThan > 0 && e.ClosedAt < cutoff:
			removed = append(removed, e)
		case opts.Keep > 0 && len(kept) >= opts.Keep:
			removed = append(removed, e)
		default:
			kept = append(kept, e)
		}
	}

	if len(removed) == 0 || opts.DryRun {
		return removed, nil
	}

	// Journal order is oldest first.
	core.Sort(kept, core.SortOptions{Field: core.SortByClosed, Order: core.SortAsc})
	if err := s.replaceLocked(kept); err != nil {
		return nil, err
	}

	s.notifyChange(ChangeEvent{
		Type:  ChangeTypePrune,
		Count: len(removed),
	})
	return removed, nil
}

// replaceLocked swaps the entry set and rewrites persistence.
func (s *Store) replaceLocked(entries []model.Entry) error {
	if s.persistence != nil {
		if err := s.persistence.Rewrite(entries); err != nil {
			return err
		}
	}

	s.entries = entries
	s.index = make(map[string]int, len(entries))
	for i, e := range entries {
		s.index[entryKey(e)] = i
	}
	return nil
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close releases resources and closes all subscriber channels.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	if s.persistence != nil {
		return s.persistence.Close()
	}

	return nil
}

// Hydrate loads entries from persistence into the store. Entries already
// present are skipped, so it is safe to call repeatedly from a watcher.
func (s *Store) Hydrate() error {
	if s.persistence == nil {
		return nil
	}

	entries, err := s.persistence.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	added := 0
	for _, e := range entries {
		key := entryKey(e)
		if _, exists := s.index[key]; exists {
			continue
		}
		s.index[key] = len(s.entries)
		s.entries = append(s.entries, e)
		added++
	}

	if added > 0 {
		s.notifyChange(ChangeEvent{
			Type:   ChangeTypeAdd,
			Count:  added,
			Source: "persistence",
		})
	}

	return nil
}

// Clear removes all entries from the store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	count := len(s.entries)
	s.entries = make([]model.Entry, 0)
	s.index = make(map[string]int)

	if s.persistence != nil {
		if err := s.persistence.Clear(); err != nil {
			return err
		}
	}

	s.notifyChange(ChangeEvent{
		Type:  ChangeTypeClear,
		Count: count,
	})

	return nil
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

// Errors
var (
	ErrStoreClosed = storeError("store is closed")
)

type storeError string

func (e storeError) Error() string {
	return string(e)
}
