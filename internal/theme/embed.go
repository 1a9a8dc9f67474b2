package theme

import (
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
)

//go:embed themes/*.toml
var bundled embed.FS

// DefaultThemeName is the theme every other theme inherits from unless it
// names another parent.
const DefaultThemeName = "default"

// bundledNames is the sorted set of theme names shipped in the binary.
var bundledNames = sync.OnceValue(func() []string {
	matches, _ := fs.Glob(bundled, "themes/*.toml")
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".toml"))
	}
	slices.Sort(names)
	return names
})

// GetEmbeddedTheme returns the raw TOML of a bundled theme. Inheritance is
// resolved by Loader.LoadTheme, not here.
func GetEmbeddedTheme(name string) ([]byte, bool) {
	if !IsEmbeddedTheme(name) {
		return nil, false
	}
	data, err := bundled.ReadFile("themes/" + name + ".toml")
	return data, err == nil
}

// ListEmbeddedThemes returns the bundled theme names.
func ListEmbeddedThemes() []string {
	return slices.Clone(bundledNames())
}

// IsEmbeddedTheme reports whether name ships with the binary.
func IsEmbeddedTheme(name string) bool {
	_, found := slices.BinarySearch(bundledNames(), name)
	return found
}
