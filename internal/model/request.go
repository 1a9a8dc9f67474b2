package model

import (
	"fmt"
	"time"
)

// Request is the wire form of a Show call, as accepted by the web bridge,
// the stdin adapter and the CLI. Callbacks cannot cross the wire; bridges
// attach their own.
type Request struct {
	ID             string        `json:"id,omitempty" yaml:"id,omitempty"`
	Message        string        `json:"message" yaml:"message"`
	Type           string        `json:"type,omitempty" yaml:"type,omitempty"`
	TimeoutMS      *int64        `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	HideDismissBtn *bool         `json:"hide_dismiss_btn,omitempty" yaml:"hide_dismiss_btn,omitempty"`
	DismissIcon    string        `json:"dismiss_icon,omitempty" yaml:"dismiss_icon,omitempty"`
	DismissText    string        `json:"dismiss_text,omitempty" yaml:"dismiss_text,omitempty"`
	Action         *ActionButton `json:"action,omitempty" yaml:"action,omitempty"`
	Loading        bool          `json:"loading,omitempty" yaml:"loading,omitempty"`
}

// Config converts the request into a validated Config.
func (r Request) Config() (Config, error) {
	cfg := Config{
		ID:             r.ID,
		Message:        r.Message,
		HideDismissBtn: r.HideDismissBtn,
		DismissIcon:    r.DismissIcon,
		DismissText:    r.DismissText,
		Loading:        r.Loading,
	}

	if r.Type != "" {
		t, err := ParseType(r.Type)
		if err != nil {
			return Config{}, err
		}
		cfg.Type = t
	}

	if r.TimeoutMS != nil {
		if *r.TimeoutMS < 0 {
			return Config{}, fmt.Errorf("%w: %d", ErrInvalidTimeout, *r.TimeoutMS)
		}
		d := time.Duration(*r.TimeoutMS) * time.Millisecond
		cfg.Timeout = &d
	}

	if r.Action != nil {
		ab := ActionButton{
			Caption:    r.Action.Caption,
			Link:       r.Action.Link,
			LinkTarget: r.Action.LinkTarget,
		}
		cfg.ActionButton = &ab
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
