package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/snackbar/internal/model"
)

// IDsFormatter outputs just the toast ids, one per line.
// Useful for piping to other commands (e.g., snackbar close).
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes toast ids to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, entries []model.Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintln(w, e.ID); err != nil {
			return err
		}
	}
	return nil
}
