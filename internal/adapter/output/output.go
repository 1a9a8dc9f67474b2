// Package output provides output formatters for toast history entries.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Formatter formats history entries for output.
type Formatter interface {
	// Format writes formatted entries to the writer.
	Format(w io.Writer, entries []model.Entry) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain FormatType = "plain"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatIDs   FormatType = "ids"
)

// Formats lists the supported formats.
var Formats = []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatIDs}

// ParseFormat parses a format name.
func ParseFormat(s string) (FormatType, error) {
	f := FormatType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want plain, json, yaml or ids)", s)
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter()
	case FormatIDs:
		return NewIDsFormatter()
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template       string // Custom template for plain format
	ShowIndex      bool   // Show 1-based index prefix
	ShowTime       bool   // Show relative close time
	ShowReason     bool   // Show why the toast closed and how long it lived
	MessageMaxLen  int    // Maximum message length (0 = unlimited)
	IncludeNewline bool   // Include newlines in messages (default: replace with space)
}

// DefaultFormatterOptions returns sensible defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:     true,
		ShowTime:      true,
		ShowReason:    true,
		MessageMaxLen: 100,
	}
}

// sanitizeMessage flattens and truncates a message for one-line output.
func sanitizeMessage(msg string, maxLen int, includeNewline bool) string {
	if !includeNewline {
		msg = strings.ReplaceAll(msg, "\n", " ")
		msg = strings.ReplaceAll(msg, "\r", "")
	}

	// Collapse multiple spaces
	for strings.Contains(msg, "  ") {
		msg = strings.ReplaceAll(msg, "  ", " ")
	}

	msg = strings.TrimSpace(msg)

	if maxLen > 0 && len([]rune(msg)) > maxLen {
		r := []rune(msg)
		if maxLen <= 3 {
			return string(r[:maxLen])
		}
		return string(r[:maxLen-3]) + "..."
	}

	return msg
}
