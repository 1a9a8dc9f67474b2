package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/snackbar/internal/layout"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/theme"
	"github.com/jmylchreest/snackbar/internal/toast"
)

// dismissGlyphs maps dismiss icon names to terminal glyphs. Unknown names
// are drawn as given.
var dismissGlyphs = map[string]string{
	"close":  "✕",
	"clear":  "✕",
	"cancel": "⊗",
}

// Renderer draws toasts with a theme and a row layout.
type Renderer struct {
	theme  *theme.Theme
	styles theme.Styles
	layout *layout.LayoutConfig
	width  int
}

// NewRenderer creates a renderer. width is the requested toast width in
// columns, clamped by the layout.
func NewRenderer(th *theme.Theme, lc *layout.LayoutConfig, width int) *Renderer {
	if th == nil {
		th = theme.NewDefaultTheme()
	}
	if lc == nil {
		lc = layout.DefaultLayout()
	}
	return &Renderer{theme: th, styles: th.Styles(), layout: lc, width: width}
}

// Width returns the outer width of a rendered toast.
func (r *Renderer) Width() int {
	return r.layout.Width(r.width)
}

// Toast renders one toast. spin is the current spinner frame, drawn while
// the toast is loading or its action runs.
func (r *Renderer) Toast(t model.Toast, focused bool, spin string) string {
	outer := r.Width()
	// Border and padding take two columns each side.
	inner := max(outer-4, 8)

	var before, after []string
	var right []string
	seenMessage := false
	for _, e := range r.layout.Elements {
		if e.Type == layout.ElementTypeMessage {
			seenMessage = true
			continue
		}
		parts := r.element(e, t, spin)
		if e.Type == layout.ElementTypeBox && e.Attributes["align"] == "right" {
			right = append(right, parts...)
			continue
		}
		if seenMessage {
			after = append(after, parts...)
		} else {
			before = append(before, parts...)
		}
	}

	left := strings.Join(before, " ")
	tail := strings.Join(append(after, right...), " ")

	used := lipgloss.Width(left) + lipgloss.Width(tail)
	if left != "" {
		used++
	}
	if tail != "" {
		used++
	}
	msgWidth := max(inner-used, 4)
	msg := lipgloss.NewStyle().Width(msgWidth).Render(t.Message)

	var cols []string
	if left != "" {
		cols = append(cols, left+" ")
	}
	cols = append(cols, msg)
	if tail != "" {
		cols = append(cols, " "+tail)
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	style := r.styles.Toast(t.Type, outer-2)
	if focused {
		style = style.BorderStyle(lipgloss.ThickBorder())
	}
	return style.Render(row)
}

// element renders a non-message layout element. Elements with nothing to
// show return no parts. A loading toast has no action or dismiss control.
func (r *Renderer) element(e layout.LayoutElement, t model.Toast, spin string) []string {
	switch e.Type {
	case layout.ElementTypeIcon:
		if icon := r.styles.Icon(t.Type); icon != "" {
			return []string{icon}
		}
	case layout.ElementTypeSpinner:
		if t.Loading || t.ActionDisabled {
			return []string{spin}
		}
	case layout.ElementTypeCounter:
		return []string{r.styles.Muted().Render(fmt.Sprintf("#%d", t.Counter))}
	case layout.ElementTypeAction:
		if t.ActionButton != nil && !t.Loading {
			return []string{r.action(t)}
		}
	case layout.ElementTypeDismiss:
		if !t.HideDismissBtn && !t.Loading {
			return []string{r.dismiss(t)}
		}
	case layout.ElementTypeBox:
		var parts []string
		for _, child := range e.Children {
			parts = append(parts, r.element(child, t, spin)...)
		}
		if len(parts) > 0 {
			return []string{strings.Join(parts, " ")}
		}
	}
	return nil
}

func (r *Renderer) action(t model.Toast) string {
	caption := t.ActionButton.Caption
	if t.ActionButton.IsLink() {
		caption += " ↗"
	}
	style := r.styles.Action(t.Type, t.ActionDisabled)
	if t.ActionButton.IsLink() {
		style = style.Underline(true)
	}
	return style.Render("[" + caption + "]")
}

func (r *Renderer) dismiss(t model.Toast) string {
	label := t.DismissText
	if label == "" {
		label = t.DismissIcon
		if glyph, ok := dismissGlyphs[label]; ok {
			label = glyph
		}
	}
	return r.styles.Dismiss(t.Type).Render(label)
}

// Stack renders the visible toasts of snap in drawing order. At most limit
// toasts are drawn (0 = all); the rest are summarised away from the
// anchored edge.
func (r *Renderer) Stack(snap toast.Snapshot, focusID, spin string, limit int) string {
	if len(snap.Toasts) == 0 {
		return ""
	}

	rows := make([]string, 0, len(snap.Toasts)+1)
	for _, t := range layout.Arrange(snap.Toasts, snap.Position.Vertical, limit) {
		rows = append(rows, r.Toast(t, t.ID == focusID, spin))
	}

	if hidden := layout.Hidden(len(snap.Toasts), limit); hidden > 0 {
		more := r.styles.Muted().Render(fmt.Sprintf("+%d more", hidden))
		if snap.Position.Vertical == model.VerticalTop {
			rows = append(rows, more)
		} else {
			rows = append([]string{more}, rows...)
		}
	}

	h, _ := layout.Align(snap.Position)
	return lipgloss.JoinVertical(h, rows...)
}
