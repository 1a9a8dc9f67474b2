package layout

import (
	"sync"
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Breakpoint defaults.
const (
	DefaultPixelBreakpoint  = 768
	DefaultColumnBreakpoint = 80
	DefaultResizeDebounce   = 200 * time.Millisecond
)

// ClassifyPixels returns mobile for widths below breakpoint pixels.
// A breakpoint <= 0 selects DefaultPixelBreakpoint.
func ClassifyPixels(width, breakpoint int) model.ViewportClass {
	if breakpoint <= 0 {
		breakpoint = DefaultPixelBreakpoint
	}
	return classify(width, breakpoint)
}

// ClassifyColumns returns mobile for terminals narrower than breakpoint
// columns. A breakpoint <= 0 selects DefaultColumnBreakpoint.
func ClassifyColumns(cols, breakpoint int) model.ViewportClass {
	if breakpoint <= 0 {
		breakpoint = DefaultColumnBreakpoint
	}
	return classify(cols, breakpoint)
}

func classify(width, breakpoint int) model.ViewportClass {
	if width > 0 && width < breakpoint {
		return model.ViewportMobile
	}
	return model.ViewportDesktop
}

// Debouncer coalesces bursts of calls (resize events) into one call made
// after the burst has been quiet for the delay.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer creates a debouncer. A delay <= 0 selects
// DefaultResizeDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultResizeDebounce
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules f, replacing any call still pending.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, f)
}

// Stop cancels a pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
