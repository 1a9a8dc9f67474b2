package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/toast"
)

// DemoActionDelay is how long the slow demo action takes.
const DemoActionDelay = 10 * time.Second

// DemoToast is one toast the demo can create.
type DemoToast struct {
	Key    string
	Name   string
	Config func() model.Config
}

// DemoToasts returns the demo catalogue.
func DemoToasts() []DemoToast {
	return []DemoToast{
		{Key: "1", Name: "basic", Config: func() model.Config {
			return model.Config{Message: "This is a basic toast"}
		}},
		{Key: "2", Name: "no dismiss", Config: func() model.Config {
			return model.Config{
				Message:        "This toast has no dismiss button and closes by itself",
				Timeout:        model.Ptr(5 * time.Second),
				HideDismissBtn: model.Ptr(true),
			}
		}},
		{Key: "3", Name: "action", Config: func() model.Config {
			return model.Config{
				Message: "Message archived",
				Timeout: model.Ptr(time.Duration(0)),
				ActionButton: &model.ActionButton{
					Caption:  "Undo",
					Callback: slowAction,
				},
			}
		}},
		{Key: "4", Name: "warn", Config: func() model.Config {
			return model.Config{Message: "Disk space is running low", Type: model.TypeWarn}
		}},
		{Key: "5", Name: "error", Config: func() model.Config {
			return model.Config{Message: "Upload failed: connection reset", Type: model.TypeError}
		}},
		{Key: "6", Name: "link", Config: func() model.Config {
			return model.Config{
				Message: "A new version is available",
				Type:    model.TypeSuccess,
				ActionButton: &model.ActionButton{
					Caption:    "Release notes",
					Link:       "https://github.com/jmylchreest/snackbar/releases",
					LinkTarget: "_blank",
				},
			}
		}},
		{Key: "7", Name: "text dismiss", Config: func() model.Config {
			return model.Config{
				Message:     "Cookies keep this demo running",
				DismissText: "Got it",
				Timeout:     model.Ptr(time.Duration(0)),
			}
		}},
		{Key: "8", Name: "loading", Config: func() model.Config {
			return model.Config{
				ID:      "demo-loading",
				Message: fmt.Sprintf("Syncing (started %s)", time.Now().Format(time.Kitchen)),
				Loading: true,
				Timeout: model.Ptr(8 * time.Second),
			}
		}},
	}
}

// slowAction stands in for a network call.
func slowAction(ctx context.Context, _ string) error {
	select {
	case <-time.After(DemoActionDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type demoBinding struct {
	binding key.Binding
	toast   DemoToast
}

// Demo creates demo toasts from key presses.
type Demo struct {
	show     func(model.Config) (string, error)
	bindings []demoBinding
}

// NewDemo creates a demo that shows toasts through show.
func NewDemo(show func(model.Config) (string, error)) *Demo {
	d := &Demo{show: show}
	for _, t := range DemoToasts() {
		d.bindings = append(d.bindings, demoBinding{
			binding: key.NewBinding(key.WithKeys(t.Key), key.WithHelp(t.Key, t.Name)),
			toast:   t,
		})
	}
	return d
}

// handleKey returns a command showing the toast bound to msg, or nil.
func (d *Demo) handleKey(msg tea.KeyMsg) tea.Cmd {
	for _, b := range d.bindings {
		if !key.Matches(msg, b.binding) {
			continue
		}
		cfg := b.toast.Config()
		show := d.show
		return func() tea.Msg {
			if _, err := show(cfg); err != nil {
				return statusMsg{text: "Show failed: " + err.Error(), isErr: true}
			}
			return nil
		}
	}
	return nil
}

func (d *Demo) helpView(width int) string {
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	const separator = "  "
	var b strings.Builder
	used := 0
	for _, db := range d.bindings {
		h := db.binding.Help()
		n := len(h.Key) + 1 + lipgloss.Width(h.Desc)
		if used > 0 {
			n += len(separator)
		}
		if width > 0 && used+n > width {
			break
		}
		if used > 0 {
			b.WriteString(separator)
		}
		b.WriteString(keyStyle.Render(h.Key) + " " + h.Desc)
		used += n
	}
	return style.Render(b.String())
}

// RunDemo runs the TUI against a local toast manager with the demo key
// bindings enabled.
func RunDemo(opts Options, defaults model.Defaults, position model.Position, logger *slog.Logger) error {
	host := toast.NewHost()
	if _, err := host.Create(
		toast.WithLogger(logger),
		toast.WithDefaults(defaults),
		toast.WithPosition(position),
	); err != nil {
		return err
	}
	defer func() { _ = host.Destroy() }()

	opts.Demo = NewDemo(host.Show)
	return Run(RunOptions{Options: opts, Queue: host})
}
