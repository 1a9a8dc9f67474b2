package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
)

// SharedState contains state that is shared between snackbar and snackbard.
// This is persisted to ~/.local/share/snackbar/state.json
type SharedState struct {
	// Position preference; nil means use the daemon configuration.
	Position      *model.Position `json:"position,omitempty"`
	PositionSetAt int64           `json:"position_set_at,omitempty"`
	PositionSetBy string          `json:"position_set_by,omitempty"` // "cli", "web", ...

	// Statistics (optional, for status bars)
	LastToastAt int64 `json:"last_toast_at,omitempty"`

	// Version for compatibility
	SchemaVersion int `json:"schema_version"`
}

const (
	// CurrentSchemaVersion is the current version of the state schema.
	CurrentSchemaVersion = 1
)

// stateFileMutex protects concurrent access to the state file.
var stateFileMutex sync.RWMutex

// DefaultSharedState returns a new SharedState with default values.
func DefaultSharedState() *SharedState {
	return &SharedState{
		SchemaVersion: CurrentSchemaVersion,
	}
}

// LoadSharedState loads the shared state from path.
// If the file doesn't exist, returns a default state.
func LoadSharedState(path string) (*SharedState, error) {
	stateFileMutex.RLock()
	defer stateFileMutex.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSharedState(), nil
		}
		return nil, err
	}

	var state SharedState
	if err := json.Unmarshal(data, &state); err != nil {
		// If the file is corrupted, return default state
		return DefaultSharedState(), nil
	}

	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}
	if state.Position != nil && state.Position.Validate() != nil {
		state.Position = nil
	}

	return &state, nil
}

// SaveSharedState saves the shared state to path.
func SaveSharedState(path string, state *SharedState) error {
	stateFileMutex.Lock()
	defer stateFileMutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// SetPosition records a position preference and who set it.
func (s *SharedState) SetPosition(p model.Position, source string) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.Position = &p
	s.PositionSetAt = time.Now().Unix()
	s.PositionSetBy = source
	return nil
}

// ClearPosition drops the position preference.
func (s *SharedState) ClearPosition() {
	s.Position = nil
	s.PositionSetAt = 0
	s.PositionSetBy = ""
}

// UpdateLastToast updates the last toast timestamp.
func (s *SharedState) UpdateLastToast() {
	s.LastToastAt = time.Now().Unix()
}
