// Package tui provides the BubbleTea-based terminal toast renderer.
package tui

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/snackbar/internal/layout"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/theme"
	"github.com/jmylchreest/snackbar/internal/toast"
)

// Queue is the toast queue the TUI renders and drives. *toast.Host and
// *web.Client satisfy it.
type Queue interface {
	Subscribe() (<-chan toast.Snapshot, func(), error)
	Dismiss(id string) (bool, error)
	OnAction(ctx context.Context, id string) (toast.ActionResult, error)
	SetViewportClass(v model.ViewportClass) error
}

// Options configures the TUI.
type Options struct {
	Theme      *theme.Theme
	Layout     *layout.LayoutConfig
	Width      int // Toast width in columns
	MaxVisible int // 0 = all
	Breakpoint int // Terminal columns below which the viewport is mobile

	ClipboardCommand string
	OpenCommand      string

	// Demo adds key bindings that create the demo toasts.
	Demo *Demo
}

// Model is the main TUI model.
type Model struct {
	queue    Queue
	opts     Options
	updates  <-chan toast.Snapshot
	renderer *Renderer

	// Components
	help    help.Model
	spinner spinner.Model
	keys    KeyMap

	// State
	snap     toast.Snapshot
	synced   bool // snap holds a received snapshot
	focus    string
	width    int
	height   int
	ready    bool
	showHelp bool
	viewport model.ViewportClass
	resize   *layout.Debouncer

	// Status message
	statusMsg string
	statusErr bool

	err error
}

// New creates a TUI model rendering the snapshots received on updates.
func New(q Queue, updates <-chan toast.Snapshot, opts Options) Model {
	if opts.Breakpoint <= 0 {
		opts.Breakpoint = 80
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		queue:    q,
		opts:     opts,
		updates:  updates,
		renderer: NewRenderer(opts.Theme, opts.Layout, opts.Width),
		help:     help.New(),
		spinner:  s,
		keys:     DefaultKeyMap(),
		resize:   layout.NewDebouncer(0),
	}
}

// Err returns the error that ended the session, if any.
func (m Model) Err() error {
	return m.err
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForSnapshot,
		m.spinner.Tick,
	)
}

type snapshotMsg toast.Snapshot

type disconnectedMsg struct{}

// waitForSnapshot blocks until the queue publishes.
func (m Model) waitForSnapshot() tea.Msg {
	snap, ok := <-m.updates
	if !ok {
		return disconnectedMsg{}
	}
	return snapshotMsg(snap)
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

type actionDoneMsg struct {
	id     string
	result toast.ActionResult
	err    error
}

// errDisconnected ends the session when the snapshot stream closes.
var errDisconnected = errors.New("toast queue went away")

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.reportViewport(layout.ClassifyColumns(msg.Width, m.opts.Breakpoint))
		return m, nil

	case snapshotMsg:
		if m.synced && msg.Version <= m.snap.Version {
			return m, m.waitForSnapshot
		}
		m.synced = true
		m.snap = toast.Snapshot(msg)
		m.focus = m.keepFocus()
		return m, m.waitForSnapshot

	case disconnectedMsg:
		m.err = errDisconnected
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case actionDoneMsg:
		if msg.err != nil {
			return m, status("Action failed: "+msg.err.Error(), true)
		}
		if msg.result.Link != "" {
			return m, m.open(msg.result.Link)
		}
		return m, nil

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status("Copied to clipboard", false)
	}

	return m, nil
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// reportViewport tells the queue about a viewport class change once
// resizing settles.
func (m *Model) reportViewport(class model.ViewportClass) {
	if class == m.viewport {
		return
	}
	m.viewport = class
	q := m.queue
	m.resize.Trigger(func() {
		_ = q.SetViewportClass(class)
	})
}

// keepFocus returns the focused id after a snapshot: unchanged when the
// toast survives, otherwise the newest toast.
func (m Model) keepFocus() string {
	if _, ok := m.snap.Find(m.focus); ok {
		return m.focus
	}
	if n := len(m.snap.Toasts); n > 0 {
		return m.snap.Toasts[n-1].ID
	}
	return ""
}

// moveFocus steps through the toasts in drawing order.
func (m Model) moveFocus(step int) string {
	rows := layout.Arrange(m.snap.Toasts, m.snap.Position.Vertical, m.opts.MaxVisible)
	if len(rows) == 0 {
		return ""
	}
	i := slices.IndexFunc(rows, func(t model.Toast) bool { return t.ID == m.focus })
	if i < 0 {
		return rows[len(rows)-1].ID
	}
	i = (i + step + len(rows)) % len(rows)
	return rows[i].ID
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.focus = m.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.focus = m.moveFocus(-1)
		return m, nil
	}

	if m.opts.Demo != nil {
		if cmd := m.opts.Demo.handleKey(msg); cmd != nil {
			return m, cmd
		}
	}

	t, ok := m.snap.Find(m.focus)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Action):
		if t.ActionButton == nil || t.ActionDisabled || t.Loading {
			return m, nil
		}
		return m, m.runAction(t.ID)

	case key.Matches(msg, m.keys.Dismiss):
		if t.HideDismissBtn || t.Loading {
			return m, nil
		}
		q := m.queue
		id := t.ID
		return m, func() tea.Msg {
			if _, err := q.Dismiss(id); err != nil {
				return statusMsg{text: "Dismiss failed: " + err.Error(), isErr: true}
			}
			return nil
		}

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyToClipboard(t.Message)
	}

	return m, nil
}

// runAction activates the action control without blocking the UI; the
// snapshot stream shows the control disabled while it runs.
func (m Model) runAction(id string) tea.Cmd {
	q := m.queue
	return func() tea.Msg {
		result, err := q.OnAction(context.Background(), id)
		return actionDoneMsg{id: id, result: result, err: err}
	}
}

func (m Model) open(link string) tea.Cmd {
	command := m.opts.OpenCommand
	return func() tea.Msg {
		if err := openLink(link, command); err != nil {
			return statusMsg{text: "Open failed: " + err.Error(), isErr: true}
		}
		return statusMsg{text: "Opened " + link}
	}
}

// copyToClipboard copies text to the system clipboard.
func (m Model) copyToClipboard(text string) tea.Cmd {
	command := m.opts.ClipboardCommand
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text, command)}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	footer := m.footer()
	area := m.height - lipgloss.Height(footer)
	stack := m.renderer.Stack(m.snap, m.focus, m.spinner.View(), m.opts.MaxVisible)
	return layout.Place(m.width, area, m.snap.Position, stack) + "\n" + footer
}

func (m Model) footer() string {
	if m.statusMsg != "" {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			style = style.Foreground(lipgloss.Color("9"))
		}
		return style.Render(m.statusMsg)
	}

	var bars []string
	if m.opts.Demo != nil {
		bars = append(bars, m.opts.Demo.helpView(m.width))
	}
	if m.showHelp {
		bars = append(bars, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		bars = append(bars, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, bars...)
}

// RunOptions configures Run.
type RunOptions struct {
	Options
	Queue Queue
}

// Run starts the TUI and blocks until the user quits.
func Run(opts RunOptions) error {
	updates, unsubscribe, err := opts.Queue.Subscribe()
	if err != nil {
		return err
	}
	defer unsubscribe()

	m := New(opts.Queue, updates, opts.Options)
	p := tea.NewProgram(m, tea.WithAltScreen())

	final, err := p.Run()
	m.resize.Stop()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
