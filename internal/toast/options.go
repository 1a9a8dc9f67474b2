package toast

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
)

// TimeoutPolicy returns the auto-dismiss delay for a toast about to be
// shown. A result <= 0 means the toast is not auto-dismissed. It runs with
// the manager lock held and must not call back into the manager.
type TimeoutPolicy func(t model.Toast) time.Duration

// ToastTimeout is the default policy: the merged timeout of the toast.
func ToastTimeout(t model.Toast) time.Duration {
	return t.Timeout
}

// ActionTimeout returns a policy that gives toasts carrying an action
// button withAction instead of their own timeout. Toasts whose timeout is
// zero stay persistent.
func ActionTimeout(withAction time.Duration) TimeoutPolicy {
	return func(t model.Toast) time.Duration {
		if t.Timeout > 0 && t.HasAction() && withAction > 0 {
			return withAction
		}
		return t.Timeout
	}
}

// Behavior holds the switches that can change while the manager runs.
type Behavior struct {
	// ResetTimerOnReshow cancels the pending timer of an id when it is shown
	// again. When false the earlier timer keeps running and may remove the
	// replacement.
	ResetTimerOnReshow bool

	// DismissOnAction removes non-link toasts after their action callback
	// returns without error.
	DismissOnAction bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithDefaults merges d over the built-in defaults.
func WithDefaults(d model.Defaults) Option {
	return func(m *Manager) {
		m.defaults = m.defaults.Merge(d)
	}
}

// WithPosition sets the initial requested position.
func WithPosition(p model.Position) Option {
	return func(m *Manager) {
		m.position = p
	}
}

// WithTimeoutPolicy overrides how auto-dismiss delays are computed.
func WithTimeoutPolicy(p TimeoutPolicy) Option {
	return func(m *Manager) {
		if p != nil {
			m.timeoutPolicy = p
		}
	}
}

// WithBehavior sets the runtime behavior switches.
func WithBehavior(b Behavior) Option {
	return func(m *Manager) {
		m.behavior = b
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// Recorder observes queue activity. Calls are made outside the manager lock.
type Recorder interface {
	ToastShown(t model.Toast)
	ToastClosed(t model.Toast, reason model.CloseReason)
	ActionInvoked(t model.Toast, took time.Duration, err error)
	QueueLength(n int)
}

type nopRecorder struct{}

func (nopRecorder) ToastShown(model.Toast)                          {}
func (nopRecorder) ToastClosed(model.Toast, model.CloseReason)      {}
func (nopRecorder) ActionInvoked(model.Toast, time.Duration, error) {}
func (nopRecorder) QueueLength(int)                                 {}
