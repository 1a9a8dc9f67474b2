package model

import (
	"fmt"
	"strings"
)

// Horizontal is the horizontal anchor of the toast stack.
type Horizontal string

// Vertical is the vertical anchor of the toast stack.
type Vertical string

// Anchors.
const (
	HorizontalLeft   Horizontal = "left"
	HorizontalCenter Horizontal = "center"
	HorizontalRight  Horizontal = "right"

	VerticalTop    Vertical = "top"
	VerticalBottom Vertical = "bottom"
)

// Position is where the toast stack is drawn.
type Position struct {
	Horizontal Horizontal `json:"horizontal" yaml:"horizontal" toml:"horizontal"`
	Vertical   Vertical   `json:"vertical" yaml:"vertical" toml:"vertical"`
}

// DefaultPosition is bottom-left.
func DefaultPosition() Position {
	return Position{Horizontal: HorizontalLeft, Vertical: VerticalBottom}
}

// Validate checks both anchors.
func (p Position) Validate() error {
	switch p.Horizontal {
	case HorizontalLeft, HorizontalCenter, HorizontalRight:
	default:
		return fmt.Errorf("%w: horizontal %q", ErrInvalidPosition, p.Horizontal)
	}
	switch p.Vertical {
	case VerticalTop, VerticalBottom:
	default:
		return fmt.Errorf("%w: vertical %q", ErrInvalidPosition, p.Vertical)
	}
	return nil
}

// String returns the "vertical-horizontal" form, e.g. "bottom-left".
func (p Position) String() string {
	return string(p.Vertical) + "-" + string(p.Horizontal)
}

// ParsePosition parses the separate anchors.
func ParsePosition(horizontal, vertical string) (Position, error) {
	p := Position{
		Horizontal: Horizontal(strings.ToLower(strings.TrimSpace(horizontal))),
		Vertical:   Vertical(strings.ToLower(strings.TrimSpace(vertical))),
	}
	if err := p.Validate(); err != nil {
		return Position{}, err
	}
	return p, nil
}

// ParsePositionString parses "vertical-horizontal" forms such as
// "top-right" or "bottom-center".
func ParsePositionString(s string) (Position, error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "-", 2)
	if len(parts) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	return ParsePosition(parts[1], parts[0])
}

// ViewportClass is the coarse viewport size reported by a renderer.
type ViewportClass string

// Viewport classes.
const (
	ViewportDesktop ViewportClass = "desktop"
	ViewportMobile  ViewportClass = "mobile"
)

// ParseViewportClass parses a viewport class name.
func ParseViewportClass(s string) (ViewportClass, error) {
	switch v := ViewportClass(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewportDesktop, ViewportMobile:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidViewport, s)
}

// Effective returns the position actually used for the viewport: mobile
// viewports always center horizontally.
func (p Position) Effective(v ViewportClass) Position {
	if v == ViewportMobile {
		p.Horizontal = HorizontalCenter
	}
	return p
}
