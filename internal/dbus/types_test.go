package dbus

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/model"
)

func TestCloseReasonString(t *testing.T) {
	tests := []struct {
		reason   CloseReason
		expected string
	}{
		{CloseReasonExpired, "expired"},
		{CloseReasonDismissed, "dismissed"},
		{CloseReasonClosed, "closed"},
		{CloseReasonUndefined, "undefined"},
		{CloseReason(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.reason.String())
		})
	}
}

func TestCloseReasonFor(t *testing.T) {
	assert.Equal(t, CloseReasonExpired, CloseReasonFor(model.ReasonExpired))
	assert.Equal(t, CloseReasonDismissed, CloseReasonFor(model.ReasonDismissed))
	assert.Equal(t, CloseReasonDismissed, CloseReasonFor(model.ReasonAction))
	assert.Equal(t, CloseReasonClosed, CloseReasonFor(model.ReasonClosed))
	assert.Equal(t, CloseReasonUndefined, CloseReasonFor(model.CloseReason("other")))
}

func TestParsedActions(t *testing.T) {
	tests := []struct {
		name     string
		actions  []string
		expected []Action
	}{
		{
			name:     "empty",
			actions:  nil,
			expected: []Action{},
		},
		{
			name:     "single action",
			actions:  []string{"default", "Open"},
			expected: []Action{{Key: "default", Label: "Open"}},
		},
		{
			name:    "multiple actions",
			actions: []string{"default", "Open", "dismiss", "Dismiss"},
			expected: []Action{
				{Key: "default", Label: "Open"},
				{Key: "dismiss", Label: "Dismiss"},
			},
		},
		{
			name:     "odd number (incomplete pair ignored)",
			actions:  []string{"default", "Open", "orphan"},
			expected: []Action{{Key: "default", Label: "Open"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &DBusNotification{Actions: tt.actions}
			assert.Equal(t, tt.expected, n.ParsedActions())
		})
	}
}

func TestToastType(t *testing.T) {
	tests := []struct {
		name     string
		hints    map[string]dbus.Variant
		expected model.Type
	}{
		{"no hints", nil, model.TypeInfo},
		{"low urgency", map[string]dbus.Variant{"urgency": dbus.MakeVariant(UrgencyLow)}, model.TypeInfo},
		{"critical urgency", map[string]dbus.Variant{"urgency": dbus.MakeVariant(UrgencyCritical)}, model.TypeError},
		{"type hint", map[string]dbus.Variant{HintType: dbus.MakeVariant("success")}, model.TypeSuccess},
		{"type hint wins", map[string]dbus.Variant{
			HintType:  dbus.MakeVariant("warning"),
			"urgency": dbus.MakeVariant(UrgencyCritical),
		}, model.TypeWarn},
		{"bad type hint falls back", map[string]dbus.Variant{HintType: dbus.MakeVariant("loud")}, model.TypeInfo},
		{"wrong variant type", map[string]dbus.Variant{"urgency": dbus.MakeVariant("2")}, model.TypeInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &DBusNotification{Hints: tt.hints}
			assert.Equal(t, tt.expected, n.ToastType())
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Build: passed", (&DBusNotification{Summary: "Build", Body: "passed"}).Message())
	assert.Equal(t, "Build", (&DBusNotification{Summary: " Build "}).Message())
	assert.Equal(t, "passed", (&DBusNotification{Body: "passed"}).Message())
	assert.Empty(t, (&DBusNotification{}).Message())
}

func TestTimeout(t *testing.T) {
	assert.Nil(t, (&DBusNotification{ExpireTimeout: -1}).Timeout())

	never := (&DBusNotification{ExpireTimeout: 0}).Timeout()
	require.NotNil(t, never)
	assert.Equal(t, time.Duration(0), *never)

	d := (&DBusNotification{ExpireTimeout: 2500}).Timeout()
	require.NotNil(t, d)
	assert.Equal(t, 2500*time.Millisecond, *d)
}

func TestConfig(t *testing.T) {
	n := &DBusNotification{
		Summary: "Update ready",
		Actions: []string{"open", "Open", "later", "Later"},
		Hints: map[string]dbus.Variant{
			HintLink:        dbus.MakeVariant("https://example.com"),
			HintLinkTarget:  dbus.MakeVariant("_blank"),
			HintHideDismiss: dbus.MakeVariant(true),
			"resident":      dbus.MakeVariant(true),
			"transient":     dbus.MakeVariant(true),
		},
		ExpireTimeout: -1,
	}

	cfg, err := n.Config("dbus-7")
	require.NoError(t, err)
	assert.Equal(t, "dbus-7", cfg.ID)
	assert.Equal(t, "Update ready", cfg.Message)
	assert.Nil(t, cfg.Timeout)
	require.NotNil(t, cfg.HideDismissBtn)
	assert.True(t, *cfg.HideDismissBtn)
	require.NotNil(t, cfg.ActionButton)
	assert.Equal(t, "Open", cfg.ActionButton.Caption)
	assert.Equal(t, "https://example.com", cfg.ActionButton.Link)
	assert.Equal(t, "_blank", cfg.ActionButton.LinkTarget)
	assert.Equal(t, "open", n.ActionKey())
	assert.True(t, n.Resident())
	assert.True(t, n.Transient())

	// Missing label uses the key
	n = &DBusNotification{Summary: "x", Actions: []string{"retry", ""}}
	cfg, err = n.Config("dbus-1")
	require.NoError(t, err)
	assert.Equal(t, "retry", cfg.ActionButton.Caption)

	_, err = (&DBusNotification{}).Config("dbus-2")
	assert.ErrorIs(t, err, model.ErrEmptyMessage)
}

func TestToastIDs(t *testing.T) {
	assert.Equal(t, "dbus-42", ToastID(42))

	id, ok := ParseToastID("dbus-42")
	assert.True(t, ok)
	assert.Equal(t, uint32(42), id)

	id, ok = ParseToastID("42")
	assert.True(t, ok)
	assert.Equal(t, uint32(42), id)

	for _, bad := range []string{"", "dbus-", "dbus-0", "abc", "dbus--1", "99999999999"} {
		_, ok := ParseToastID(bad)
		assert.False(t, ok, bad)
	}

	_, ok = bridgeID("42")
	assert.False(t, ok)
	_, ok = bridgeID("dbus-42")
	assert.True(t, ok)
}

func TestBridgeError(t *testing.T) {
	err := &BridgeError{Op: "Notify", ID: 3, Err: errNotConnected}
	assert.Equal(t, "dbus Notify (id 3): not connected to D-Bus", err.Error())
	assert.ErrorIs(t, err, errNotConnected)

	err = &BridgeError{Op: "connect", Err: errNotConnected}
	assert.Equal(t, "dbus connect: not connected to D-Bus", err.Error())
}

func TestDefaultServerInfo(t *testing.T) {
	info := DefaultServerInfo()
	assert.Equal(t, "snackbard", info.Name)
	assert.Equal(t, "snackbar", info.Vendor)
	assert.Equal(t, "1.2", info.SpecVersion)
}

func TestServerCapabilities(t *testing.T) {
	assert.Contains(t, ServerCapabilities, "actions")
	assert.Contains(t, ServerCapabilities, "body")
	assert.NotContains(t, ServerCapabilities, "body-markup")
	assert.NotContains(t, ServerCapabilities, "persistence")
}
