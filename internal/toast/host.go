package toast

import (
	"context"
	"sync"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Host mounts at most one Manager and forwards operations to it.
// Every operation fails with ErrNotReady while nothing is mounted.
type Host struct {
	mu  sync.RWMutex
	mgr *Manager
}

// NewHost returns an empty host.
func NewHost() *Host {
	return &Host{}
}

// Create mounts a new manager built with opts.
func (h *Host) Create(opts ...Option) (*Manager, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.mgr != nil {
		return nil, ErrAlreadyMounted
	}
	h.mgr = NewManager(opts...)
	return h.mgr, nil
}

// Destroy stops and unmounts the current manager.
func (h *Host) Destroy() error {
	h.mu.Lock()
	mgr := h.mgr
	h.mgr = nil
	h.mu.Unlock()

	if mgr == nil {
		return ErrNotReady
	}
	mgr.Stop()
	return nil
}

// Ready reports whether a manager is mounted.
func (h *Host) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mgr != nil
}

// Manager returns the mounted manager.
func (h *Host) Manager() (*Manager, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.mgr == nil {
		return nil, ErrNotReady
	}
	return h.mgr, nil
}

// Show forwards to Manager.Show.
func (h *Host) Show(cfg model.Config) (string, error) {
	mgr, err := h.Manager()
	if err != nil {
		return "", err
	}
	return mgr.Show(cfg)
}

// Hide forwards to Manager.Hide.
func (h *Host) Hide(id string) (bool, error) {
	mgr, err := h.Manager()
	if err != nil {
		return false, err
	}
	return mgr.Hide(id), nil
}

// Dismiss forwards to Manager.Dismiss.
func (h *Host) Dismiss(id string) (bool, error) {
	mgr, err := h.Manager()
	if err != nil {
		return false, err
	}
	return mgr.Dismiss(id), nil
}

// OnAction forwards to Manager.OnAction.
func (h *Host) OnAction(ctx context.Context, id string) (ActionResult, error) {
	mgr, err := h.Manager()
	if err != nil {
		return ActionResult{}, err
	}
	return mgr.OnAction(ctx, id)
}

// ConfigureDefaults forwards to Manager.ConfigureDefaults.
func (h *Host) ConfigureDefaults(d model.Defaults) error {
	mgr, err := h.Manager()
	if err != nil {
		return err
	}
	return mgr.ConfigureDefaults(d)
}

// SetPosition forwards to Manager.SetPosition.
func (h *Host) SetPosition(p model.Position) error {
	mgr, err := h.Manager()
	if err != nil {
		return err
	}
	return mgr.SetPosition(p)
}

// SetViewportClass forwards to Manager.SetViewportClass.
func (h *Host) SetViewportClass(v model.ViewportClass) error {
	mgr, err := h.Manager()
	if err != nil {
		return err
	}
	return mgr.SetViewportClass(v)
}

// Snapshot forwards to Manager.Snapshot.
func (h *Host) Snapshot() (Snapshot, error) {
	mgr, err := h.Manager()
	if err != nil {
		return Snapshot{}, err
	}
	return mgr.Snapshot(), nil
}

// Subscribe forwards to Manager.Subscribe. The returned cancel func
// unsubscribes from the manager the channel came from, even if the host
// has since been remounted.
func (h *Host) Subscribe() (<-chan Snapshot, func(), error) {
	mgr, err := h.Manager()
	if err != nil {
		return nil, func() {}, err
	}
	ch := mgr.Subscribe()
	return ch, func() { mgr.Unsubscribe(ch) }, nil
}
