package daemon

import (
	"log/slog"
	"strings"
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/store"
)

// Journal appends every closed toast to the history store.
type Journal struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time

	// skip reports toasts that must not be recorded.
	skip func(id string) bool
}

// NewJournal creates a journal writing to s.
func NewJournal(s *store.Store, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{store: s, logger: logger, now: time.Now}
}

// SetSkip installs a predicate for toasts that are never recorded.
func (j *Journal) SetSkip(skip func(id string) bool) {
	j.skip = skip
}

// Record writes one closed toast.
func (j *Journal) Record(t model.Toast, reason model.CloseReason) {
	if j.skip != nil && j.skip(t.ID) {
		j.logger.Debug("skipped transient toast", "id", t.ID)
		return
	}

	e := model.NewEntry(t, reason, j.now())
	e.Source = sourceOf(t.ID)
	if err := j.store.Add(e); err != nil {
		j.logger.Error("failed to record toast", "id", t.ID, "error", err)
		return
	}
	j.logger.Debug("recorded toast", "id", t.ID, "reason", reason)
}

// sourceOf names the bridge a toast came through from its id prefix.
func sourceOf(id string) string {
	switch {
	case strings.HasPrefix(id, "dbus-"):
		return "dbus"
	case strings.HasPrefix(id, "snackbard-"):
		return "snackbard"
	default:
		return ""
	}
}
