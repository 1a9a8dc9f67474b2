package toast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/snackbar/internal/core"
	"github.com/jmylchreest/snackbar/internal/model"
)

// record is an active toast together with the callbacks that never leave
// the manager.
type record struct {
	toast           model.Toast
	onDismiss       func(id string)
	dismissCallback func(id string)

	// timerFloor is the lowest counter whose expiry timer may still hide
	// this record. Timers armed by earlier shows that were cancelled, or
	// that belong to a toast already hidden, fall below it.
	timerFloor uint64
}

// ShowCallback is called after a toast is inserted.
type ShowCallback func(t model.Toast)

// CloseCallback is called after a toast is removed.
type CloseCallback func(t model.Toast, reason model.CloseReason)

// ActionResult tells a renderer what to do after an action completes.
type ActionResult struct {
	Link       string `json:"link,omitempty"`
	LinkTarget string `json:"link_target,omitempty"`
}

// Manager manages the active toast queue.
type Manager struct {
	logger        *slog.Logger
	clock         Clock
	recorder      Recorder
	timeoutPolicy TimeoutPolicy

	mu       sync.Mutex
	queue    map[string]*record
	timers   map[string][]Timer
	disabled map[string]bool
	defaults model.Defaults
	behavior Behavior
	sequence uint64
	position model.Position
	viewport model.ViewportClass
	closed   bool

	// Snapshot publication
	version     uint64
	current     Snapshot
	subscribers []chan Snapshot

	// Callbacks
	onShow  ShowCallback
	onClose CloseCallback
}

// NewManager creates a toast manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		logger:        slog.Default(),
		clock:         SystemClock(),
		recorder:      nopRecorder{},
		timeoutPolicy: ToastTimeout,
		queue:         make(map[string]*record),
		timers:        make(map[string][]Timer),
		disabled:      make(map[string]bool),
		defaults:      model.BuiltinDefaults(),
		position:      model.DefaultPosition(),
		viewport:      model.ViewportDesktop,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.current = m.snapshotLocked()
	return m
}

// SetShowCallback sets the callback for toast insertions.
func (m *Manager) SetShowCallback(cb ShowCallback) {
	m.mu.Lock()
	m.onShow = cb
	m.mu.Unlock()
}

// SetCloseCallback sets the callback for toast removals.
func (m *Manager) SetCloseCallback(cb CloseCallback) {
	m.mu.Lock()
	m.onClose = cb
	m.mu.Unlock()
}

// ConfigureDefaults merges the set fields of d into the current defaults.
// Only later Show calls are affected.
func (m *Manager) ConfigureDefaults(d model.Defaults) error {
	if err := d.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.defaults = m.defaults.Merge(d)
	return nil
}

// ReplaceDefaults discards earlier ConfigureDefaults calls and merges d over
// the built-in defaults. Used when configuration is reloaded.
func (m *Manager) ReplaceDefaults(d model.Defaults) error {
	if err := d.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.defaults = model.BuiltinDefaults().Merge(d)
	return nil
}

// Defaults returns the current defaults.
func (m *Manager) Defaults() model.Defaults {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defaults.Merge(model.Defaults{})
}

// UpdateBehavior replaces the runtime behavior switches.
func (m *Manager) UpdateBehavior(b Behavior) {
	m.mu.Lock()
	m.behavior = b
	m.mu.Unlock()
}

// SetTimeoutPolicy replaces the timeout policy for later Show calls.
func (m *Manager) SetTimeoutPolicy(p TimeoutPolicy) {
	if p == nil {
		p = ToastTimeout
	}
	m.mu.Lock()
	m.timeoutPolicy = p
	m.mu.Unlock()
}

// SetPosition sets the requested stack position.
func (m *Manager) SetPosition(p model.Position) error {
	if err := p.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.position == p {
		return nil
	}
	m.position = p
	m.publishLocked()

	m.logger.Debug("position changed", "position", p.String())
	return nil
}

// SetViewportClass records the renderer's viewport class. Mobile viewports
// force the effective horizontal position to center; desktop restores the
// requested one.
func (m *Manager) SetViewportClass(v model.ViewportClass) error {
	if _, err := model.ParseViewportClass(string(v)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.viewport == v {
		return nil
	}
	m.viewport = v
	m.publishLocked()

	m.logger.Debug("viewport changed", "viewport", v)
	return nil
}

// Position returns the requested and effective positions.
func (m *Manager) Position() (requested, effective model.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position, m.position.Effective(m.viewport)
}

// Show inserts or replaces a toast and returns its id.
// A toast whose id is already active is replaced in place and moves to the
// end of the display order.
func (m *Manager) Show(cfg model.Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", ErrClosed
	}

	id := cfg.ID
	if id == "" {
		id = model.NewID()
	}

	t := cfg.Resolve(m.defaults)
	t.ID = id
	m.sequence++
	t.Counter = m.sequence
	t.CreatedAt = m.clock.Now()

	floor := t.Counter
	prev, replaced := m.queue[id]
	if replaced {
		if m.behavior.ResetTimerOnReshow {
			m.stopTimersLocked(id)
		} else {
			floor = prev.timerFloor
		}
	}

	m.queue[id] = &record{
		toast:           t,
		onDismiss:       cfg.OnDismiss,
		dismissCallback: cfg.DismissCallback,
		timerFloor:      floor,
	}

	timeout := m.timeoutPolicy(t)
	if timeout > 0 && t.Type != model.TypeError {
		counter := t.Counter
		m.timers[id] = append(m.timers[id], m.clock.AfterFunc(timeout, func() {
			m.expire(id, counter)
		}))
	}

	m.publishLocked()
	onShow := m.onShow
	count := len(m.queue)
	m.mu.Unlock()

	m.logger.Debug("showed toast",
		"id", id,
		"type", t.Type,
		"counter", t.Counter,
		"timeout_ms", timeout.Milliseconds(),
		"replaced", replaced,
		"active", count,
	)

	m.recorder.ToastShown(t)
	m.recorder.QueueLength(count)
	if onShow != nil {
		onShow(t.Clone())
	}

	return id, nil
}

// Hide removes a toast programmatically. Unknown ids are ignored.
// It reports whether a toast was removed.
func (m *Manager) Hide(id string) bool {
	return m.hide(id, model.ReasonClosed)
}

// Dismiss removes a toast because the user activated its dismiss control.
// When the control is a text button the toast's dismiss callback runs
// before removal; the icon control only hides.
func (m *Manager) Dismiss(id string) bool {
	m.mu.Lock()
	rec, exists := m.queue[id]
	var cb func(string)
	if exists && rec.toast.DismissText != "" {
		cb = rec.dismissCallback
	}
	m.mu.Unlock()

	if !exists {
		return false
	}
	if cb != nil {
		cb(id)
	}
	return m.hide(id, model.ReasonDismissed)
}

// HideAll removes every active toast and returns how many were removed.
func (m *Manager) HideAll() int {
	m.mu.Lock()
	ids := make([]string, 0, len(m.queue))
	for id := range m.queue {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	n := 0
	for _, id := range ids {
		if m.hide(id, model.ReasonClosed) {
			n++
		}
	}
	return n
}

func (m *Manager) hide(id string, reason model.CloseReason) bool {
	return m.remove(id, reason, nil)
}

// expire hides id for a timer armed by the show that assigned counter. A
// timer that already fired when Stop was called can still get here, so
// timers older than the record's floor are ignored.
func (m *Manager) expire(id string, counter uint64) {
	m.remove(id, model.ReasonExpired, func(rec *record) bool {
		return counter >= rec.timerFloor
	})
}

func (m *Manager) remove(id string, reason model.CloseReason, keep func(*record) bool) bool {
	m.mu.Lock()
	rec, exists := m.queue[id]
	if !exists || m.closed || (keep != nil && !keep(rec)) {
		m.mu.Unlock()
		return false
	}
	delete(m.queue, id)
	m.stopTimersLocked(id)
	m.publishLocked()
	onClose := m.onClose
	count := len(m.queue)
	m.mu.Unlock()

	m.logger.Debug("hid toast",
		"id", id,
		"reason", reason,
		"active", count,
	)

	if rec.onDismiss != nil {
		rec.onDismiss(id)
	}
	m.recorder.ToastClosed(rec.toast, reason)
	m.recorder.QueueLength(count)
	if onClose != nil {
		onClose(rec.toast.Clone(), reason)
	}
	return true
}

// OnAction activates the action control of a toast. The control is
// disabled while the callback runs and re-enabled afterwards, whether the
// callback succeeds, fails, or panics. Callback errors are returned as is.
func (m *Manager) OnAction(ctx context.Context, id string) (ActionResult, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ActionResult{}, ErrClosed
	}
	rec, exists := m.queue[id]
	if !exists {
		m.mu.Unlock()
		return ActionResult{}, ErrNotFound
	}
	if rec.toast.ActionButton == nil {
		m.mu.Unlock()
		return ActionResult{}, ErrNoAction
	}
	if m.disabled[id] {
		m.mu.Unlock()
		return ActionResult{}, ErrActionInProgress
	}
	m.disabled[id] = true
	m.publishLocked()
	t := rec.toast.Clone()
	dismissOnAction := m.behavior.DismissOnAction
	m.mu.Unlock()

	button := t.ActionButton
	result := ActionResult{Link: button.Link, LinkTarget: button.LinkTarget}

	start := m.clock.Now()
	err := m.runAction(ctx, id, button.Callback)
	took := m.clock.Now().Sub(start)
	m.recorder.ActionInvoked(t, took, err)

	if err != nil {
		m.logger.Warn("toast action failed", "id", id, "error", err)
		return result, err
	}

	m.logger.Debug("toast action completed", "id", id, "took", took)

	if dismissOnAction && !button.IsLink() {
		m.hide(id, model.ReasonAction)
	}
	return result, nil
}

func (m *Manager) runAction(ctx context.Context, id string, cb model.ActionFunc) error {
	defer func() {
		m.mu.Lock()
		delete(m.disabled, id)
		if !m.closed {
			m.publishLocked()
		}
		m.mu.Unlock()
	}()

	if cb == nil {
		return nil
	}
	return cb(ctx, id)
}

// Get returns the active toast with the given id.
func (m *Manager) Get(id string) (model.Toast, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.queue[id]
	if !exists {
		return model.Toast{}, false
	}
	t := rec.toast.Clone()
	t.ActionDisabled = m.disabled[id]
	return t, true
}

// Len returns the number of active toasts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Stop cancels all pending timers and closes subscriber channels.
// Active toasts are discarded without callbacks.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true

	for id := range m.timers {
		m.stopTimersLocked(id)
	}
	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil

	m.logger.Debug("toast manager stopped", "discarded", len(m.queue))
}

func (m *Manager) stopTimersLocked(id string) {
	for _, t := range m.timers[id] {
		t.Stop()
	}
	delete(m.timers, id)
}

// snapshotLocked builds the current snapshot. Caller must hold the lock.
func (m *Manager) snapshotLocked() Snapshot {
	toasts := make([]model.Toast, 0, len(m.queue))
	for id, rec := range m.queue {
		t := rec.toast.Clone()
		t.ActionDisabled = m.disabled[id]
		toasts = append(toasts, t)
	}
	core.SortDisplayOrder(toasts)

	return Snapshot{
		Version:   m.version,
		Toasts:    toasts,
		Requested: m.position,
		Position:  m.position.Effective(m.viewport),
		Viewport:  m.viewport,
		Timestamp: m.clock.Now(),
	}
}

// publishLocked records a new snapshot and offers it to subscribers.
// Caller must hold the lock.
func (m *Manager) publishLocked() {
	m.version++
	m.current = m.snapshotLocked()

	for _, ch := range m.subscribers {
		select {
		case ch <- m.current:
		default:
			// Subscriber is behind; it can always pull Snapshot().
		}
	}
}
