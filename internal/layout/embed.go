package layout

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"
)

//go:embed templates/*.xml
var bundled embed.FS

// bundledLayouts parses every bundled template once. A template that fails
// to parse is a packaging error and is reported by Load for its name.
var bundledLayouts = sync.OnceValue(func() map[string]bundledLayout {
	out := make(map[string]bundledLayout)
	_ = fs.WalkDir(bundled, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".xml" {
			return err
		}
		name := strings.TrimSuffix(path.Base(p), ".xml")
		data, err := bundled.ReadFile(p)
		if err != nil {
			out[name] = bundledLayout{err: err}
			return nil
		}
		cfg, err := ParseTemplateString(string(data))
		if err != nil {
			err = fmt.Errorf("bundled layout %s: %w", name, err)
		}
		out[name] = bundledLayout{cfg: cfg, err: err}
		return nil
	})
	return out
})

type bundledLayout struct {
	cfg *LayoutConfig
	err error
}

// GetEmbeddedTemplate returns a copy of a bundled layout. The name has no
// .xml extension.
func GetEmbeddedTemplate(name string) (*LayoutConfig, bool) {
	b, ok := bundledLayouts()[name]
	if !ok || b.err != nil {
		return nil, false
	}
	return b.cfg.clone(), true
}

// ListEmbeddedTemplates returns the sorted names of the bundled layouts.
func ListEmbeddedTemplates() []string {
	names := make([]string, 0, len(bundledLayouts()))
	for name, b := range bundledLayouts() {
		if b.err == nil {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func (c *LayoutConfig) clone() *LayoutConfig {
	out := *c
	out.Elements = cloneElements(c.Elements)
	return &out
}

func cloneElements(in []LayoutElement) []LayoutElement {
	if in == nil {
		return nil
	}
	out := make([]LayoutElement, len(in))
	for i, e := range in {
		out[i] = e
		out[i].Attributes = maps.Clone(e.Attributes)
		out[i].Children = cloneElements(e.Children)
	}
	return out
}
