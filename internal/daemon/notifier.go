package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
)

// internalTimeout is how long daemon toasts stay up.
const internalTimeout = 5 * time.Second

// InternalNotifier shows toasts about snackbard's own events.
// It rate limits per key to prevent toast floods.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	// Handler for creating toasts
	showHandler func(cfg model.Config) (string, error)

	// Rate limiting
	lastNotifyTime map[string]time.Time // key -> last notification time
	minInterval    time.Duration        // minimum time between same notifications
	now            func() time.Time

	// Enabled flag
	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second, // Don't repeat same notification within 5 seconds
		now:            time.Now,
		enabled:        true,
	}
}

// SetShowHandler sets the function to call when creating a toast.
func (n *InternalNotifier) SetShowHandler(handler func(cfg model.Config) (string, error)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.showHandler = handler
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notifications.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows an internal toast if not rate-limited.
// The key is used for rate limiting and as the toast id, so a repeat
// after the interval replaces the toast still on screen.
func (n *InternalNotifier) Notify(key, message string, typ model.Type) {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}
	handler := n.showHandler
	if handler == nil {
		n.mu.Unlock()
		n.logger.Debug("internal notification skipped: no handler", "message", message)
		return
	}

	now := n.now()
	if lastTime, ok := n.lastNotifyTime[key]; ok && now.Sub(lastTime) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "message", message)
		return
	}
	n.lastNotifyTime[key] = now
	n.mu.Unlock()

	timeout := internalTimeout
	cfg := model.Config{
		ID:      "snackbard-" + key,
		Message: message,
		Type:    typ,
		Timeout: &timeout,
	}

	n.logger.Debug("sending internal notification", "key", key, "message", message, "type", typ)
	if _, err := handler(cfg); err != nil {
		n.logger.Warn("failed to show internal notification", "key", key, "error", err)
	}
}

// NotifyConfigReloaded shows a toast about config being reloaded.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration reloaded", model.TypeSuccess)
}

// NotifyConfigError shows a toast about a config validation error.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Failed to reload configuration: "+err.Error(), model.TypeWarn)
}

// NotifyThemeReloaded shows a toast about the theme being reloaded.
func (n *InternalNotifier) NotifyThemeReloaded(themeName string) {
	n.Notify("theme-reload", "Theme '"+themeName+"' loaded", model.TypeInfo)
}

// NotifyThemeError shows a toast about a theme loading error.
func (n *InternalNotifier) NotifyThemeError(err error) {
	n.Notify("theme-error", "Failed to load theme: "+err.Error(), model.TypeWarn)
}

// NotifyPositionChanged shows a toast when the CLI moves the stack.
func (n *InternalNotifier) NotifyPositionChanged(p model.Position) {
	n.Notify("position-change", "Toasts moved to "+p.String(), model.TypeInfo)
}

// NotifyStartup shows a toast that the daemon has started.
func (n *InternalNotifier) NotifyStartup(version string) {
	n.Notify("startup", "snackbard "+version+" is running", model.TypeInfo)
}

// NotifyAudioError shows a toast about an audio playback error.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify("audio-error", "Failed to play toast sound: "+err.Error(), model.TypeWarn)
}
