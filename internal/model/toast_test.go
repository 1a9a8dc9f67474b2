package model

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input   string
		want    Type
		wantErr bool
	}{
		{"INFO", TypeInfo, false},
		{"info", TypeInfo, false},
		{" Warn ", TypeWarn, false},
		{"warning", TypeWarn, false},
		{"error", TypeError, false},
		{"SUCCESS", TypeSuccess, false},
		{"", "", true},
		{"fatal", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseType(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "valid minimal",
			cfg:  Config{Message: "hello"},
		},
		{
			name:    "empty message",
			cfg:     Config{Message: "  "},
			wantErr: ErrEmptyMessage,
		},
		{
			name:    "invalid type",
			cfg:     Config{Message: "hello", Type: "LOUD"},
			wantErr: ErrInvalidType,
		},
		{
			name:    "negative timeout",
			cfg:     Config{Message: "hello", Timeout: Ptr(-time.Second)},
			wantErr: ErrInvalidTimeout,
		},
		{
			name: "zero timeout allowed",
			cfg:  Config{Message: "hello", Timeout: Ptr(time.Duration(0))},
		},
		{
			name:    "action without caption",
			cfg:     Config{Message: "hello", ActionButton: &ActionButton{}},
			wantErr: ErrEmptyCaption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDefaults_Merge(t *testing.T) {
	base := BuiltinDefaults()
	merged := base.Merge(Defaults{Type: TypeWarn, DismissText: "OK"})

	assert.Equal(t, TypeWarn, merged.Type)
	assert.Equal(t, "OK", merged.DismissText)
	assert.Equal(t, DefaultDismissIcon, merged.DismissIcon)
	require.NotNil(t, merged.Timeout)
	assert.Equal(t, DefaultTimeout, *merged.Timeout)

	// The base is untouched and pointers are not shared.
	assert.Equal(t, TypeInfo, base.Type)
	override := Ptr(3 * time.Second)
	merged = merged.Merge(Defaults{Timeout: override})
	*override = time.Hour
	assert.Equal(t, 3*time.Second, *merged.Timeout)
}

func TestConfig_Resolve(t *testing.T) {
	defaults := BuiltinDefaults().Merge(Defaults{Type: TypeSuccess, Timeout: Ptr(5 * time.Second)})

	t.Run("inherits defaults", func(t *testing.T) {
		cfg := Config{ID: "a", Message: "saved"}
		toast := cfg.Resolve(defaults)

		assert.Equal(t, "a", toast.ID)
		assert.Equal(t, TypeSuccess, toast.Type)
		assert.Equal(t, 5*time.Second, toast.Timeout)
		assert.Equal(t, int64(5000), toast.TimeoutMS)
		assert.False(t, toast.HideDismissBtn)
		assert.Equal(t, DefaultDismissIcon, toast.DismissIcon)
	})

	t.Run("config wins", func(t *testing.T) {
		cfg := Config{
			Message:        "gone",
			Type:           TypeError,
			Timeout:        Ptr(time.Duration(0)),
			HideDismissBtn: Ptr(true),
			DismissIcon:    "x",
			DismissText:    "Got it",
		}
		toast := cfg.Resolve(defaults)

		assert.Equal(t, TypeError, toast.Type)
		assert.Equal(t, time.Duration(0), toast.Timeout)
		assert.True(t, toast.HideDismissBtn)
		assert.Equal(t, "x", toast.DismissIcon)
		assert.Equal(t, "Got it", toast.DismissText)
		assert.True(t, toast.Persistent())
	})

	t.Run("action button is copied", func(t *testing.T) {
		called := false
		ab := &ActionButton{Caption: "Undo", Callback: func(context.Context, string) error {
			called = true
			return nil
		}}
		cfg := Config{Message: "deleted", ActionButton: ab}
		toast := cfg.Resolve(defaults)

		require.True(t, toast.HasAction())
		ab.Caption = "changed"
		assert.Equal(t, "Undo", toast.ActionButton.Caption)
		require.NoError(t, toast.ActionButton.Callback(context.Background(), "x"))
		assert.True(t, called)
	})
}

func TestToast_Persistent(t *testing.T) {
	assert.True(t, (&Toast{Type: TypeInfo, Timeout: 0}).Persistent())
	assert.True(t, (&Toast{Type: TypeError, Timeout: time.Second}).Persistent())
	assert.False(t, (&Toast{Type: TypeWarn, Timeout: time.Second}).Persistent())
}

func TestToast_Clone(t *testing.T) {
	orig := Toast{ID: "a", ActionButton: &ActionButton{Caption: "Open"}}
	c := orig.Clone()
	c.ActionButton.Caption = "Close"
	assert.Equal(t, "Open", orig.ActionButton.Caption)
}

func TestNewID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.Len(t, id, 26)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestPosition(t *testing.T) {
	p, err := ParsePosition("Right", "top")
	require.NoError(t, err)
	assert.Equal(t, Position{HorizontalRight, VerticalTop}, p)
	assert.Equal(t, "top-right", p.String())

	p, err = ParsePositionString("bottom-center")
	require.NoError(t, err)
	assert.Equal(t, HorizontalCenter, p.Horizontal)

	_, err = ParsePosition("middle", "top")
	assert.ErrorIs(t, err, ErrInvalidPosition)
	_, err = ParsePositionString("left")
	assert.ErrorIs(t, err, ErrInvalidPosition)

	assert.Equal(t, DefaultPosition(), Position{HorizontalLeft, VerticalBottom})
	assert.Equal(t, HorizontalCenter, p.Effective(ViewportMobile).Horizontal)
	right := Position{HorizontalRight, VerticalTop}
	assert.Equal(t, right, right.Effective(ViewportDesktop))
}

func TestParseViewportClass(t *testing.T) {
	v, err := ParseViewportClass("MOBILE")
	require.NoError(t, err)
	assert.Equal(t, ViewportMobile, v)

	_, err = ParseViewportClass("tablet")
	assert.ErrorIs(t, err, ErrInvalidViewport)
}

func TestEntry(t *testing.T) {
	created := time.Unix(1_700_000_000, 0)
	toast := Toast{
		ID:           "01H",
		Type:         TypeWarn,
		Message:      "disk almost full",
		Counter:      4,
		CreatedAt:    created,
		ActionButton: &ActionButton{Caption: "Clean up"},
	}

	e := NewEntry(toast, ReasonAction, created.Add(90*time.Second))
	require.NoError(t, e.Validate())
	assert.Equal(t, "Clean up", e.Action)
	assert.Equal(t, 90*time.Second, e.Lifetime())
	assert.Equal(t, created.Add(90*time.Second).Unix(), e.ClosedTime().Unix())

	e.Reason = "vanished"
	assert.ErrorIs(t, e.Validate(), ErrInvalidCloseKind)
	e.Reason = ReasonExpired
	e.ID = ""
	assert.ErrorIs(t, e.Validate(), ErrEmptyEntryID)
}

func TestRequest_Config(t *testing.T) {
	t.Run("full request", func(t *testing.T) {
		req := Request{
			ID:        "deploy",
			Message:   "Deployed",
			Type:      "success",
			TimeoutMS: Ptr(int64(2500)),
			Action:    &ActionButton{Caption: "Open", Link: "https://example.com", LinkTarget: "_blank"},
		}

		cfg, err := req.Config()
		require.NoError(t, err)
		assert.Equal(t, "deploy", cfg.ID)
		assert.Equal(t, TypeSuccess, cfg.Type)
		require.NotNil(t, cfg.Timeout)
		assert.Equal(t, 2500*time.Millisecond, *cfg.Timeout)
		require.NotNil(t, cfg.ActionButton)
		assert.True(t, cfg.ActionButton.IsLink())

		// The action is copied, not aliased
		req.Action.Caption = "changed"
		assert.Equal(t, "Open", cfg.ActionButton.Caption)
	})

	t.Run("unset fields inherit", func(t *testing.T) {
		cfg, err := Request{Message: "hi"}.Config()
		require.NoError(t, err)
		assert.Empty(t, cfg.Type)
		assert.Nil(t, cfg.Timeout)
		assert.Nil(t, cfg.HideDismissBtn)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := Request{}.Config()
		assert.ErrorIs(t, err, ErrEmptyMessage)

		_, err = Request{Message: "x", Type: "loud"}.Config()
		assert.ErrorIs(t, err, ErrInvalidType)

		_, err = Request{Message: "x", TimeoutMS: Ptr(int64(-1))}.Config()
		assert.ErrorIs(t, err, ErrInvalidTimeout)

		_, err = Request{Message: "x", Action: &ActionButton{}}.Config()
		assert.ErrorIs(t, err, ErrEmptyCaption)
	})
}
