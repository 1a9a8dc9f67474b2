package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/snackbar/internal/model"
)

// PlainFormatter formats entries as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes entries as plain text.
func (f *PlainFormatter) Format(w io.Writer, entries []model.Entry) error {
	for i := range entries {
		if err := f.formatEntry(w, i+1, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// templateData provides data for custom templates.
type templateData struct {
	Index        int
	Entry        *model.Entry
	RelativeTime string
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			return sanitizeMessage(s, maxLen, true)
		},
		"reltime": func(ts int64) string {
			return relativeTime(ts)
		},
		"lower": strings.ToLower,
	}
}

// relativeTime returns a human-readable relative time string.
func relativeTime(timestamp int64) string {
	if timestamp == 0 {
		return "unknown"
	}
	return humanize.Time(time.Unix(timestamp, 0))
}

// formatEntry formats a single entry.
func (f *PlainFormatter) formatEntry(w io.Writer, index int, e *model.Entry) error {
	if f.template != nil {
		data := templateData{
			Index:        index,
			Entry:        e,
			RelativeTime: relativeTime(e.ClosedAt),
		}
		if err := f.template.Execute(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder

	if f.opts.ShowIndex {
		fmt.Fprintf(&sb, "[%d] ", index)
	}

	fmt.Fprintf(&sb, "%-7s ", e.Type)
	sb.WriteString(sanitizeMessage(e.Message, f.opts.MessageMaxLen, f.opts.IncludeNewline))

	if e.Action != "" {
		fmt.Fprintf(&sb, " [%s]", e.Action)
	}

	var meta []string
	if f.opts.ShowTime {
		meta = append(meta, relativeTime(e.ClosedAt))
	}
	if f.opts.ShowReason {
		meta = append(meta, fmt.Sprintf("%s after %s", e.Reason, e.Lifetime()))
	}
	if len(meta) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(meta, ", "))
	}

	sb.WriteString("\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatField outputs a specific field from an entry.
func FormatField(e *model.Entry, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return e.ID
	case "type":
		return string(e.Type)
	case "message":
		return e.Message
	case "action":
		return e.Action
	case "source":
		return e.Source
	case "reason":
		return string(e.Reason)
	case "shown", "shown_at":
		return time.Unix(e.ShownAt, 0).Format(time.RFC3339)
	case "closed", "closed_at":
		return time.Unix(e.ClosedAt, 0).Format(time.RFC3339)
	case "lifetime":
		return e.Lifetime().String()
	default:
		return e.Message
	}
}
