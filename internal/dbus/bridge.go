package dbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Queue is the part of toast.Host the bridge drives.
type Queue interface {
	Show(cfg model.Config) (string, error)
	Hide(id string) (bool, error)
}

// Bridge connects a NotificationServer to the toast queue.
type Bridge struct {
	server *NotificationServer
	queue  Queue
	logger *slog.Logger

	mu        sync.Mutex
	transient map[uint32]bool
}

// NewBridge wires server handlers to queue.
func NewBridge(server *NotificationServer, queue Queue, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		server:    server,
		queue:     queue,
		logger:    logger,
		transient: make(map[uint32]bool),
	}
	server.SetHandler(b)
	return b
}

// HandleNotify shows a notification as a toast.
func (b *Bridge) HandleNotify(n *DBusNotification, id uint32) error {
	cfg, err := n.Config(ToastID(id))
	if err != nil {
		return err
	}

	if cfg.ActionButton != nil {
		key := n.ActionKey()
		resident := n.Resident()
		cfg.ActionButton.Callback = func(_ context.Context, toastID string) error {
			return b.invoke(id, toastID, key, resident)
		}
	}

	b.mu.Lock()
	if n.Transient() {
		b.transient[id] = true
	} else {
		delete(b.transient, id)
	}
	b.mu.Unlock()

	if _, err := b.queue.Show(cfg); err != nil {
		return err
	}
	b.logger.Debug("notification shown as toast", "id", id, "app", n.AppName, "type", cfg.Type)
	return nil
}

// invoke reports an action to the sending application. Non-resident
// notifications are closed afterwards.
func (b *Bridge) invoke(id uint32, toastID, key string, resident bool) error {
	if !b.server.Active(id) {
		return nil
	}
	if err := b.server.ReportAction(id, key); err != nil {
		b.logger.Warn("failed to report action", "id", id, "error", err)
	}
	if !resident {
		if err := b.server.ReportClosed(id, CloseReasonDismissed); err != nil {
			b.logger.Warn("failed to report closed notification", "id", id, "error", err)
		}
		if _, err := b.queue.Hide(toastID); err != nil {
			return err
		}
	}
	return nil
}

// HandleClose hides the toast for a CloseNotification call.
func (b *Bridge) HandleClose(id uint32) {
	if _, err := b.queue.Hide(ToastID(id)); err != nil {
		b.logger.Warn("failed to hide toast for CloseNotification", "id", id, "error", err)
	}
}

// ToastClosed reports a toast removal to D-Bus clients. Toasts that did
// not come from D-Bus, or were already reported, are ignored. Transient
// must be asked before this is called.
func (b *Bridge) ToastClosed(t model.Toast, reason model.CloseReason) {
	id, ok := bridgeID(t.ID)
	if !ok {
		return
	}

	b.mu.Lock()
	delete(b.transient, id)
	b.mu.Unlock()

	if err := b.server.ReportClosed(id, CloseReasonFor(reason)); err != nil {
		b.logger.Warn("failed to report closed notification", "id", id, "error", err)
	}
}

// Transient reports whether a toast came from a notification marked
// transient. The history journal skips those.
func (b *Bridge) Transient(toastID string) bool {
	id, ok := bridgeID(toastID)
	if !ok {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transient[id]
}
