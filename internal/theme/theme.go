package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Colors is one foreground/background pair. Empty fields inherit.
type Colors struct {
	Foreground string `toml:"foreground" json:"foreground,omitempty"`
	Background string `toml:"background" json:"background,omitempty"`
	Border     string `toml:"border" json:"border,omitempty"`
}

// TypeStyle is the per-type part of a theme.
type TypeStyle struct {
	Colors
	Icon string `toml:"icon" json:"icon,omitempty"`
}

// Theme represents a color theme with metadata.
type Theme struct {
	Name     string `toml:"name" json:"name"`
	Inherits string `toml:"inherits" json:"-"` // Theme this one overlays

	Base    Colors               `toml:"base" json:"base"`
	Action  Colors               `toml:"action" json:"action"`
	Dismiss Colors               `toml:"dismiss" json:"dismiss"`
	Muted   string               `toml:"muted" json:"muted,omitempty"`
	Types   map[string]TypeStyle `toml:"types" json:"types"`

	Path      string    `toml:"-" json:"-"` // Full path to the file (empty for bundled)
	ModTime   time.Time `toml:"-" json:"-"`
	IsDefault bool      `toml:"-" json:"-"`
}

// Parse decodes a theme file. Inheritance is not resolved.
func Parse(data []byte) (*Theme, error) {
	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse theme: %w", err)
	}
	types := make(map[string]TypeStyle, len(t.Types))
	for key, style := range t.Types {
		typ, err := model.ParseType(key)
		if err != nil {
			return nil, fmt.Errorf("theme type section %q: %w", key, err)
		}
		types[typ.Lower()] = style
	}
	t.Types = types
	return &t, nil
}

// NewTheme loads a theme file from disk.
func NewTheme(name, path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	t, err := Parse(data)
	if err != nil {
		return nil, err
	}
	t.Name = name
	t.Path = path
	t.ModTime = info.ModTime()
	return t, nil
}

// Overlay returns base with every field set in t replaced.
func (t *Theme) Overlay(base *Theme) *Theme {
	out := *base
	out.Name = t.Name
	out.Inherits = ""
	out.Path = t.Path
	out.ModTime = t.ModTime
	out.IsDefault = t.IsDefault

	out.Base = overlayColors(base.Base, t.Base)
	out.Action = overlayColors(base.Action, t.Action)
	out.Dismiss = overlayColors(base.Dismiss, t.Dismiss)
	if t.Muted != "" {
		out.Muted = t.Muted
	}

	out.Types = make(map[string]TypeStyle, len(model.Types))
	for k, v := range base.Types {
		out.Types[normalizeKey(k)] = v
	}
	for k, v := range t.Types {
		key := normalizeKey(k)
		prev := out.Types[key]
		prev.Colors = overlayColors(prev.Colors, v.Colors)
		if v.Icon != "" {
			prev.Icon = v.Icon
		}
		out.Types[key] = prev
	}
	return &out
}

func overlayColors(base, o Colors) Colors {
	if o.Foreground != "" {
		base.Foreground = o.Foreground
	}
	if o.Background != "" {
		base.Background = o.Background
	}
	if o.Border != "" {
		base.Border = o.Border
	}
	return base
}

func normalizeKey(k string) string {
	t, err := model.ParseType(k)
	if err != nil {
		return k
	}
	return t.Lower()
}

// For returns the effective colors and icon for a toast type.
func (t *Theme) For(typ model.Type) TypeStyle {
	s := TypeStyle{Colors: t.Base}
	if ts, ok := t.Types[typ.Lower()]; ok {
		s.Colors = overlayColors(s.Colors, ts.Colors)
		s.Icon = ts.Icon
	}
	return s
}

// Styles are the lipgloss styles a terminal renderer draws with.
type Styles struct {
	theme *Theme
}

// Styles returns terminal styles for the theme.
func (t *Theme) Styles() Styles {
	return Styles{theme: t}
}

// Toast is the container style for a toast of type typ.
func (s Styles) Toast(typ model.Type, width int) lipgloss.Style {
	c := s.theme.For(typ)
	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		Foreground(color(c.Foreground)).
		Background(color(c.Background)).
		BorderForeground(color(c.Border))
	if width > 0 {
		style = style.Width(width)
	}
	return style
}

// Icon renders the type icon.
func (s Styles) Icon(typ model.Type) string {
	c := s.theme.For(typ)
	if c.Icon == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(color(c.Foreground)).
		Background(color(c.Background)).
		Render(c.Icon)
}

// Action styles an action caption; disabled actions are muted.
func (s Styles) Action(typ model.Type, disabled bool) lipgloss.Style {
	c := s.theme.For(typ)
	fg := s.theme.Action.Foreground
	if disabled && s.theme.Muted != "" {
		fg = s.theme.Muted
	}
	return lipgloss.NewStyle().
		Bold(!disabled).
		Foreground(color(fg)).
		Background(color(c.Background))
}

// Dismiss styles the dismiss control.
func (s Styles) Dismiss(typ model.Type) lipgloss.Style {
	c := s.theme.For(typ)
	fg := s.theme.Dismiss.Foreground
	if fg == "" {
		fg = c.Foreground
	}
	return lipgloss.NewStyle().
		Foreground(color(fg)).
		Background(color(c.Background))
}

// Muted styles secondary text such as "+3 more".
func (s Styles) Muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(color(s.theme.Muted)).Italic(true)
}

func color(hex string) lipgloss.TerminalColor {
	if hex == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// NewDefaultTheme creates the embedded default theme.
func NewDefaultTheme() *Theme {
	data, _ := GetEmbeddedTheme(DefaultThemeName)
	t, err := Parse(data)
	if err != nil {
		t = &Theme{}
	}
	t.Name = DefaultThemeName
	t.IsDefault = true
	return t
}

// Reload reloads the theme from disk.
// Returns true if the file changed.
func (t *Theme) Reload() (bool, error) {
	if t.Path == "" {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, err
	}
	if !info.ModTime().After(t.ModTime) {
		return false, nil
	}

	fresh, err := NewTheme(t.Name, t.Path)
	if err != nil {
		return false, err
	}
	*t = *fresh
	return true, nil
}

// ThemeInfo provides basic theme information for listing.
type ThemeInfo struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool // True if this is a bundled/embedded theme
}

// ListAvailableThemes lists all available themes (bundled + user) in dir.
func ListAvailableThemes(dir string) ([]ThemeInfo, error) {
	seen := make(map[string]bool)
	var themes []ThemeInfo

	for _, name := range ListEmbeddedThemes() {
		if !seen[name] {
			seen[name] = true
			themes = append(themes, ThemeInfo{
				Name:      name,
				IsDefault: name == DefaultThemeName,
				IsBundled: true,
			})
		}
	}

	if dir == "" {
		return themes, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		themeName := entry.Name()[:len(entry.Name())-len(".toml")]
		if !seen[themeName] {
			seen[themeName] = true
			themes = append(themes, ThemeInfo{
				Name: themeName,
				Path: filepath.Join(dir, entry.Name()),
			})
		}
	}

	return themes, nil
}
