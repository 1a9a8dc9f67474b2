package dbus

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/snackbar/internal/model"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved by the notification specification.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// CloseReasonFor maps a toast close reason onto the D-Bus one.
// An action counts as a user dismissal.
func CloseReasonFor(r model.CloseReason) CloseReason {
	switch r {
	case model.ReasonExpired:
		return CloseReasonExpired
	case model.ReasonDismissed, model.ReasonAction:
		return CloseReasonDismissed
	case model.ReasonClosed:
		return CloseReasonClosed
	default:
		return CloseReasonUndefined
	}
}

// Urgency levels from the notification specification.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// Hints understood on top of the standard ones.
const (
	HintType        = "x-snackbar-type"
	HintLink        = "x-snackbar-link"
	HintLinkTarget  = "x-snackbar-link-target"
	HintHideDismiss = "x-snackbar-hide-dismiss"
	HintLoading     = "x-snackbar-loading"
)

// DefaultActionKey is the key used for the single action a toast carries
// when a client sends one from the CLI.
const DefaultActionKey = "default"

// ToastID returns the toast id used for a D-Bus notification id.
func ToastID(id uint32) string {
	return "dbus-" + strconv.FormatUint(uint64(id), 10)
}

// ParseToastID accepts "dbus-N" or a bare number.
func ParseToastID(s string) (uint32, bool) {
	return parseID(strings.TrimPrefix(s, "dbus-"))
}

// bridgeID only accepts ids the bridge created.
func bridgeID(s string) (uint32, bool) {
	rest, ok := strings.CutPrefix(s, "dbus-")
	if !ok {
		return 0, false
	}
	return parseID(rest)
}

func parseID(s string) (uint32, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint32(n), true
}

// DBusNotification represents an incoming D-Bus Notify call.
// It contains the raw parameters from the org.freedesktop.Notifications.Notify method.
type DBusNotification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Action represents a notification action with key and label.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ParsedActions converts the D-Bus action array to structured form.
// D-Bus actions are passed as alternating key/label pairs.
func (n *DBusNotification) ParsedActions() []Action {
	actions := make([]Action, 0, len(n.Actions)/2)
	for i := 0; i+1 < len(n.Actions); i += 2 {
		actions = append(actions, Action{
			Key:   n.Actions[i],
			Label: n.Actions[i+1],
		})
	}
	return actions
}

func (n *DBusNotification) stringHint(key string) string {
	if v, ok := n.Hints[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

func (n *DBusNotification) boolHint(key string) bool {
	if v, ok := n.Hints[key]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}

// Urgency extracts the urgency hint from the notification.
// Returns UrgencyNormal if not specified.
func (n *DBusNotification) Urgency() byte {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return b
		}
	}
	return UrgencyNormal
}

// ToastType returns the x-snackbar-type hint when valid, ERROR for
// critical urgency and INFO otherwise.
func (n *DBusNotification) ToastType() model.Type {
	if s := n.stringHint(HintType); s != "" {
		if t, err := model.ParseType(s); err == nil {
			return t
		}
	}
	if n.Urgency() == UrgencyCritical {
		return model.TypeError
	}
	return model.TypeInfo
}

// Resident returns true if the resident hint is set.
// Resident notifications should not be auto-removed after an action is invoked.
func (n *DBusNotification) Resident() bool {
	return n.boolHint("resident")
}

// Transient returns true if the transient hint is set.
// Transient notifications are not written to the history journal.
func (n *DBusNotification) Transient() bool {
	return n.boolHint("transient")
}

// Message joins summary and body.
func (n *DBusNotification) Message() string {
	summary := strings.TrimSpace(n.Summary)
	body := strings.TrimSpace(n.Body)
	switch {
	case summary == "":
		return body
	case body == "":
		return summary
	default:
		return summary + ": " + body
	}
}

// Timeout converts expire_timeout. Nil means the server default.
func (n *DBusNotification) Timeout() *time.Duration {
	if n.ExpireTimeout < 0 {
		return nil
	}
	d := time.Duration(n.ExpireTimeout) * time.Millisecond
	return &d
}

// Config converts the notification into a toast config with the given id.
// The action callback is attached by the caller.
func (n *DBusNotification) Config(id string) (model.Config, error) {
	cfg := model.Config{
		ID:      id,
		Message: n.Message(),
		Type:    n.ToastType(),
		Timeout: n.Timeout(),
		Loading: n.boolHint(HintLoading),
	}
	if n.boolHint(HintHideDismiss) {
		hide := true
		cfg.HideDismissBtn = &hide
	}

	if actions := n.ParsedActions(); len(actions) > 0 {
		label := actions[0].Label
		if label == "" {
			label = actions[0].Key
		}
		cfg.ActionButton = &model.ActionButton{
			Caption:    label,
			Link:       n.stringHint(HintLink),
			LinkTarget: n.stringHint(HintLinkTarget),
		}
	}

	if err := cfg.Validate(); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// ActionKey returns the key of the action the toast button stands for.
func (n *DBusNotification) ActionKey() string {
	if actions := n.ParsedActions(); len(actions) > 0 {
		return actions[0].Key
	}
	return ""
}

// ServerCapabilities lists the capabilities advertised by snackbard.
var ServerCapabilities = []string{
	"actions", // One action rendered as the toast button
	"body",    // Body text is appended to the summary
	"sound",   // Per-type sounds
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "snackbard"
	Vendor      string // "snackbar"
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "snackbard",
		Vendor:      "snackbar",
		Version:     "0.0.1", // Will be replaced by build-time version
		SpecVersion: "1.2",
	}
}

// BridgeError is returned when a D-Bus call or signal fails.
type BridgeError struct {
	Op  string
	ID  uint32
	Err error
}

func (e *BridgeError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("dbus %s (id %d): %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("dbus %s: %v", e.Op, e.Err)
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}
