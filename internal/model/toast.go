// Package model defines the core data structures for snackbar.
package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Type is the visual category of a toast.
type Type string

// Toast types.
const (
	TypeInfo    Type = "INFO"
	TypeWarn    Type = "WARN"
	TypeError   Type = "ERROR"
	TypeSuccess Type = "SUCCESS"
)

// Types lists every valid type in display order.
var Types = []Type{TypeInfo, TypeWarn, TypeError, TypeSuccess}

// Validation errors.
var (
	ErrEmptyMessage    = errors.New("message cannot be empty")
	ErrInvalidType     = errors.New("type must be one of INFO, WARN, ERROR, SUCCESS")
	ErrInvalidTimeout  = errors.New("timeout cannot be negative")
	ErrEmptyCaption    = errors.New("action button caption cannot be empty")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidViewport = errors.New("viewport class must be desktop or mobile")
)

// ParseType parses a type name case-insensitively.
// WARNING is accepted as an alias for WARN.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INFO":
		return TypeInfo, nil
	case "WARN", "WARNING":
		return TypeWarn, nil
	case "ERROR":
		return TypeError, nil
	case "SUCCESS":
		return TypeSuccess, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case TypeInfo, TypeWarn, TypeError, TypeSuccess:
		return true
	}
	return false
}

// Lower returns the lowercase name, used for metric labels and style classes.
func (t Type) Lower() string {
	return strings.ToLower(string(t))
}

// ActionFunc is invoked when the action control of a toast is activated.
type ActionFunc func(ctx context.Context, id string) error

// ActionButton describes the optional action control on a toast.
// When Link is set the control is rendered as a hyperlink; Callback still
// runs on activation.
type ActionButton struct {
	Caption    string     `json:"caption" yaml:"caption"`
	Link       string     `json:"link,omitempty" yaml:"link,omitempty"`
	LinkTarget string     `json:"link_target,omitempty" yaml:"link_target,omitempty"`
	Callback   ActionFunc `json:"-" yaml:"-"`
}

// IsLink reports whether the action is rendered as a hyperlink.
func (a *ActionButton) IsLink() bool {
	return a != nil && a.Link != ""
}

// Config is the per-call configuration passed to Show.
// Zero values (empty strings, nil pointers) inherit from the defaults.
type Config struct {
	ID             string
	Message        string
	Type           Type
	Timeout        *time.Duration
	HideDismissBtn *bool
	DismissIcon    string
	DismissText    string
	ActionButton   *ActionButton
	Loading        bool

	// OnDismiss runs after the toast is removed, whatever removed it.
	OnDismiss func(id string)

	// DismissCallback runs when the user activates a text dismiss control
	// (DismissText set), before the toast is removed.
	DismissCallback func(id string)
}

// Validate checks the fields a caller supplied.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Message) == "" {
		return ErrEmptyMessage
	}
	if c.Type != "" && !c.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, c.Type)
	}
	if c.Timeout != nil && *c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.ActionButton != nil && c.ActionButton.Caption == "" {
		return ErrEmptyCaption
	}
	return nil
}

// Defaults holds the defaultable subset of Config.
type Defaults struct {
	Type           Type
	Timeout        *time.Duration
	HideDismissBtn *bool
	DismissIcon    string
	DismissText    string
}

// Built-in default values.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultDismissIcon = "close"
)

// BuiltinDefaults returns the defaults every merge starts from.
func BuiltinDefaults() Defaults {
	timeout := DefaultTimeout
	hide := false
	return Defaults{
		Type:           TypeInfo,
		Timeout:        &timeout,
		HideDismissBtn: &hide,
		DismissIcon:    DefaultDismissIcon,
	}
}

// Validate checks the fields that are set.
func (d Defaults) Validate() error {
	if d.Type != "" && !d.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, d.Type)
	}
	if d.Timeout != nil && *d.Timeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Merge returns d with every field that is set in o replaced.
func (d Defaults) Merge(o Defaults) Defaults {
	if o.Type != "" {
		d.Type = o.Type
	}
	if o.Timeout != nil {
		v := *o.Timeout
		d.Timeout = &v
	}
	if o.HideDismissBtn != nil {
		v := *o.HideDismissBtn
		d.HideDismissBtn = &v
	}
	if o.DismissIcon != "" {
		d.DismissIcon = o.DismissIcon
	}
	if o.DismissText != "" {
		d.DismissText = o.DismissText
	}
	return d
}

// Toast is an active toast as exposed to renderers.
type Toast struct {
	ID             string        `json:"id" yaml:"id"`
	Message        string        `json:"message" yaml:"message"`
	Type           Type          `json:"type" yaml:"type"`
	Timeout        time.Duration `json:"-" yaml:"timeout"`
	TimeoutMS      int64         `json:"timeout_ms" yaml:"-"`
	HideDismissBtn bool          `json:"hide_dismiss_btn" yaml:"hide_dismiss_btn"`
	DismissIcon    string        `json:"dismiss_icon,omitempty" yaml:"dismiss_icon,omitempty"`
	DismissText    string        `json:"dismiss_text,omitempty" yaml:"dismiss_text,omitempty"`
	ActionButton   *ActionButton `json:"action_button,omitempty" yaml:"action_button,omitempty"`
	Loading        bool          `json:"loading" yaml:"loading"`
	Counter        uint64        `json:"counter" yaml:"counter"`
	CreatedAt      time.Time     `json:"created_at" yaml:"created_at"`
	ActionDisabled bool          `json:"action_disabled" yaml:"action_disabled"`
}

// Resolve merges c over d (which must be fully populated) into a Toast.
// Counter and CreatedAt are left for the caller to assign.
func (c *Config) Resolve(d Defaults) Toast {
	t := Toast{
		ID:          c.ID,
		Message:     c.Message,
		Type:        d.Type,
		DismissIcon: d.DismissIcon,
		DismissText: d.DismissText,
		Loading:     c.Loading,
	}
	if d.Timeout != nil {
		t.Timeout = *d.Timeout
	}
	if d.HideDismissBtn != nil {
		t.HideDismissBtn = *d.HideDismissBtn
	}

	if c.Type != "" {
		t.Type = c.Type
	}
	if c.Timeout != nil {
		t.Timeout = *c.Timeout
	}
	if c.HideDismissBtn != nil {
		t.HideDismissBtn = *c.HideDismissBtn
	}
	if c.DismissIcon != "" {
		t.DismissIcon = c.DismissIcon
	}
	if c.DismissText != "" {
		t.DismissText = c.DismissText
	}
	if c.ActionButton != nil {
		ab := *c.ActionButton
		t.ActionButton = &ab
	}
	t.TimeoutMS = t.Timeout.Milliseconds()
	return t
}

// HasAction reports whether the toast carries an action control.
func (t *Toast) HasAction() bool {
	return t.ActionButton != nil
}

// Persistent reports whether the toast is only removed by explicit dismissal.
func (t *Toast) Persistent() bool {
	return t.Timeout == 0 || t.Type == TypeError
}

// Clone returns a copy that shares no pointers with t.
func (t *Toast) Clone() Toast {
	c := *t
	if t.ActionButton != nil {
		ab := *t.ActionButton
		c.ActionButton = &ab
	}
	return c
}

// NewID returns a fresh toast identifier.
// ulid.Make draws from a process-wide monotonic source, so ids generated in
// the same millisecond still sort and never collide.
func NewID() string {
	return ulid.Make().String()
}

// Ptr returns a pointer to v. Handy for the optional Config fields.
func Ptr[T any](v T) *T {
	return &v
}
