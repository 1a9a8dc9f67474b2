package theme

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Loader resolves themes by name and keeps the current one.
type Loader struct {
	mu          sync.RWMutex
	logger      *slog.Logger
	themesDir   string
	currentName string
	theme       *Theme
}

// NewLoader creates a new theme loader reading user themes from themesDir.
func NewLoader(themesDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{
		logger:    logger,
		themesDir: themesDir,
		theme:     NewDefaultTheme(),
	}
}

// ThemesDir returns the themes directory below a config directory.
func ThemesDir(configDir string) string {
	return filepath.Join(configDir, "themes")
}

// LoadTheme loads a theme by name.
// Theme resolution order:
//  1. User themes directory (~/.config/snackbar/themes/)
//  2. Embedded/bundled themes
//
// An unknown name falls back to the default theme and returns an error so
// the caller can tell the user.
func (l *Loader) LoadTheme(name string) error {
	if name == "" {
		name = DefaultThemeName
	}

	t, err := l.resolve(name, make(map[string]bool))
	if err != nil {
		l.logger.Warn("theme not usable, using default", "theme", name, "error", err)
		l.mu.Lock()
		l.theme = NewDefaultTheme()
		l.currentName = DefaultThemeName
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	l.theme = t
	l.currentName = name
	l.mu.Unlock()

	if t.Path != "" {
		l.logger.Info("loaded user theme", "name", name, "path", t.Path)
	} else {
		l.logger.Info("loaded bundled theme", "name", name)
	}
	return nil
}

// resolve loads name and overlays it on its parent chain. The seen map
// prevents inheritance cycles.
func (l *Loader) resolve(name string, seen map[string]bool) (*Theme, error) {
	if seen[name] {
		return nil, fmt.Errorf("theme inheritance cycle at %q", name)
	}
	seen[name] = true

	t, err := l.load(name)
	if err != nil {
		return nil, err
	}

	parent := t.Inherits
	if parent == "" && name != DefaultThemeName {
		parent = DefaultThemeName
	}
	if parent == "" {
		return t, nil
	}

	base, err := l.resolve(parent, seen)
	if err != nil {
		return nil, err
	}
	return t.Overlay(base), nil
}

// load reads a single theme without resolving inheritance.
func (l *Loader) load(name string) (*Theme, error) {
	if l.themesDir != "" {
		themePath := filepath.Join(l.themesDir, name+".toml")
		if _, err := os.Stat(themePath); err == nil {
			t, err := NewTheme(name, themePath)
			if err == nil {
				return t, nil
			}
			l.logger.Warn("failed to load user theme, trying bundled", "theme", name, "error", err)
		}
	}

	if data, found := GetEmbeddedTheme(name); found {
		t, err := Parse(data)
		if err != nil {
			return nil, err
		}
		t.Name = name
		t.IsDefault = name == DefaultThemeName
		return t, nil
	}

	return nil, fmt.Errorf("theme not found: %s", name)
}

// Current returns the currently loaded theme.
func (l *Loader) Current() *Theme {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.theme
}

// CurrentName returns the name of the currently loaded theme.
func (l *Loader) CurrentName() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentName
}

// Path returns the user file backing the current theme, if any.
func (l *Loader) Path() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.theme == nil {
		return ""
	}
	return l.theme.Path
}

// Reload reloads the current theme from disk.
func (l *Loader) Reload() error {
	return l.LoadTheme(l.CurrentName())
}

// ListThemes returns a list of available theme names.
func (l *Loader) ListThemes() []string {
	infos, err := ListAvailableThemes(l.themesDir)
	if err != nil {
		l.logger.Debug("failed to read themes directory", "error", err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names
}
