// Package layout describes how a toast row is composed and where the stack
// is placed on screen.
package layout

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ElementType identifies the type of layout element.
type ElementType string

const (
	ElementTypeIcon    ElementType = "icon"
	ElementTypeMessage ElementType = "message"
	ElementTypeSpinner ElementType = "spinner"
	ElementTypeAction  ElementType = "action"
	ElementTypeDismiss ElementType = "dismiss"
	ElementTypeCounter ElementType = "counter"
	ElementTypeBox     ElementType = "box"
)

// ValidElements lists all recognized element types.
var ValidElements = map[string]ElementType{
	"icon":    ElementTypeIcon,
	"message": ElementTypeMessage,
	"spinner": ElementTypeSpinner,
	"action":  ElementTypeAction,
	"dismiss": ElementTypeDismiss,
	"counter": ElementTypeCounter,
	"box":     ElementTypeBox,
}

// LayoutConfig represents the parsed toast row structure.
type LayoutConfig struct {
	// Row width in columns (0 = use config default)
	MinWidth int
	MaxWidth int
	// Child elements
	Elements []LayoutElement
}

// LayoutElement represents a single element in the layout.
type LayoutElement struct {
	Type       ElementType
	Attributes map[string]string
	Children   []LayoutElement
}

// Has reports whether the layout contains an element of type t at any depth.
func (c *LayoutConfig) Has(t ElementType) bool {
	return hasElement(c.Elements, t)
}

func hasElement(elems []LayoutElement, t ElementType) bool {
	for _, e := range elems {
		if e.Type == t || hasElement(e.Children, t) {
			return true
		}
	}
	return false
}

// Width clamps w to the layout's width range.
func (c *LayoutConfig) Width(w int) int {
	if c.MinWidth > 0 && w < c.MinWidth {
		w = c.MinWidth
	}
	if c.MaxWidth > 0 && w > c.MaxWidth {
		w = c.MaxWidth
	}
	return w
}

// ParseTemplate parses an XML layout template from a reader.
func ParseTemplate(r io.Reader) (*LayoutConfig, error) {
	decoder := xml.NewDecoder(r)

	var config LayoutConfig
	found := false
	for !found {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "toast" {
			continue
		}
		found = true

		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "min-width":
				if v, err := parseColumnValue(attr.Value); err == nil {
					config.MinWidth = v
				}
			case "max-width":
				if v, err := parseColumnValue(attr.Value); err == nil {
					config.MaxWidth = v
				}
			}
		}

		elements, err := parseElements(decoder)
		if err != nil {
			return nil, err
		}
		config.Elements = elements
	}

	if !found {
		return nil, fmt.Errorf("template has no <toast> root element")
	}
	if !config.Has(ElementTypeMessage) {
		return nil, fmt.Errorf("template must contain a <message> element")
	}
	return &config, nil
}

// parseColumnValue parses a width such as "48" or "48ch".
func parseColumnValue(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "ch")
	var v int
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}

// parseElements recursively parses child elements.
func parseElements(decoder *xml.Decoder) ([]LayoutElement, error) {
	var elements []LayoutElement

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read element: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			elemName := strings.ToLower(t.Name.Local)
			elemType, ok := ValidElements[elemName]
			if !ok {
				return nil, fmt.Errorf("unknown element type: %s", elemName)
			}

			elem := LayoutElement{
				Type:       elemType,
				Attributes: make(map[string]string),
			}
			for _, attr := range t.Attr {
				elem.Attributes[attr.Name.Local] = attr.Value
			}

			children, err := parseElements(decoder)
			if err != nil {
				return nil, err
			}
			elem.Children = children

			elements = append(elements, elem)

		case xml.EndElement:
			return elements, nil
		}
	}

	return elements, nil
}

// ParseTemplateString parses a template from a string.
func ParseTemplateString(s string) (*LayoutConfig, error) {
	return ParseTemplate(strings.NewReader(s))
}

// LoadTemplate loads a template from file.
func LoadTemplate(path string) (*LayoutConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseTemplate(f)
}

// Loader handles loading layout templates from various sources.
type Loader struct {
	templatesDir string
}

// LayoutsDir returns the user layout directory below a config directory.
func LayoutsDir(configDir string) string {
	return filepath.Join(configDir, "layouts")
}

// NewLoader creates a new template loader.
func NewLoader(templatesDir string) *Loader {
	return &Loader{templatesDir: templatesDir}
}

// Load loads a layout template by name.
// Checks user directory first, then falls back to the embedded templates.
func (l *Loader) Load(name string) (*LayoutConfig, error) {
	if name == "" {
		name = "default"
	}

	if l.templatesDir != "" {
		templatePath := filepath.Join(l.templatesDir, name+".xml")
		if _, err := os.Stat(templatePath); err == nil {
			return LoadTemplate(templatePath)
		}
	}

	if cfg, ok := GetEmbeddedTemplate(name); ok {
		return cfg, nil
	}

	return nil, fmt.Errorf("layout template not found: %s", name)
}

// DefaultLayout returns the default toast row layout.
func DefaultLayout() *LayoutConfig {
	return &LayoutConfig{
		MinWidth: 24,
		MaxWidth: 80,
		Elements: []LayoutElement{
			{Type: ElementTypeIcon},
			{Type: ElementTypeSpinner},
			{Type: ElementTypeMessage},
			{
				Type:       ElementTypeBox,
				Attributes: map[string]string{"align": "right"},
				Children: []LayoutElement{
					{Type: ElementTypeAction},
					{Type: ElementTypeDismiss},
				},
			},
		},
	}
}
