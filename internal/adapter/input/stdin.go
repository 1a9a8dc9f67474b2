package input

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmylchreest/snackbar/internal/model"
)

// maxInput bounds how much is read from the source.
const maxInput = 10 * 1024 * 1024

// StdinAdapter reads toast requests from standard input.
type StdinAdapter struct {
	reader io.Reader
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return &StdinAdapter{reader: os.Stdin}
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Read reads requests from standard input.
// Supports three formats:
//  1. A single JSON object
//  2. A JSON array of objects
//  3. One JSON object per line
//
// Every request is validated; the first invalid one fails the read.
func (a *StdinAdapter) Read(ctx context.Context) ([]model.Request, error) {
	data, err := io.ReadAll(io.LimitReader(a.reader, maxInput+1))
	if err != nil {
		return nil, &AdapterError{Source: a.Name(), Message: "failed to read stdin", Err: err}
	}
	if len(data) > maxInput {
		return nil, &AdapterError{Source: a.Name(), Message: "input too large"}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var requests []model.Request
	if data[0] == '[' {
		if err := json.Unmarshal(data, &requests); err != nil {
			return nil, &AdapterError{Source: a.Name(), Message: "failed to parse JSON input", Err: err}
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			var r model.Request
			err := dec.Decode(&r)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, &AdapterError{Source: a.Name(), Message: "failed to parse JSON input", Err: err}
			}
			requests = append(requests, r)
		}
	}

	for i := range requests {
		requests[i].Message = sanitizeString(requests[i].Message)
		if _, err := requests[i].Config(); err != nil {
			return nil, &AdapterError{
				Source:  a.Name(),
				Message: fmt.Sprintf("request %d is invalid", i+1),
				Err:     err,
			}
		}
	}
	return requests, nil
}

// sanitizeString replaces control characters other than newline and tab.
func sanitizeString(s string) string {
	var result strings.Builder
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' {
			result.WriteRune(' ')
		} else {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
