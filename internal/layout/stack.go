package layout

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Arrange returns toasts in top-to-bottom drawing order with the newest
// toast nearest the anchored edge. toasts must be in display order. When
// limit > 0 only the newest limit toasts are kept.
func Arrange(toasts []model.Toast, v model.Vertical, limit int) []model.Toast {
	start := 0
	if limit > 0 && len(toasts) > limit {
		start = len(toasts) - limit
	}

	visible := toasts[start:]
	out := make([]model.Toast, len(visible))
	if v == model.VerticalTop {
		for i, t := range visible {
			out[len(visible)-1-i] = t
		}
		return out
	}
	copy(out, visible)
	return out
}

// Hidden returns how many toasts Arrange drops for limit.
func Hidden(n, limit int) int {
	if limit <= 0 || n <= limit {
		return 0
	}
	return n - limit
}

// Align maps a stack position to lipgloss alignments.
func Align(p model.Position) (h, v lipgloss.Position) {
	switch p.Horizontal {
	case model.HorizontalCenter:
		h = lipgloss.Center
	case model.HorizontalRight:
		h = lipgloss.Right
	default:
		h = lipgloss.Left
	}
	if p.Vertical == model.VerticalTop {
		v = lipgloss.Top
	} else {
		v = lipgloss.Bottom
	}
	return h, v
}

// Place positions a rendered stack inside a width x height area.
func Place(width, height int, p model.Position, stack string) string {
	h, v := Align(p)
	if width <= 0 || height <= 0 {
		return lipgloss.PlaceHorizontal(max(width, lipgloss.Width(stack)), h, stack)
	}
	return lipgloss.Place(width, height, h, v, stack)
}
