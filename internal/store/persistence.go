package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
)

// SchemaVersion is the current journal schema version.
const SchemaVersion = 1

// Persistence defines the interface for journal storage.
type Persistence interface {
	// Load reads all entries from storage.
	Load() ([]model.Entry, error)

	// Append adds an entry to storage.
	Append(e model.Entry) error

	// AppendBatch adds multiple entries efficiently.
	AppendBatch(es []model.Entry) error

	// Rewrite replaces the entire storage file (used after prune).
	Rewrite(es []model.Entry) error

	// Clear removes all stored entries.
	Clear() error

	// Close releases file handles and resources.
	Close() error
}

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	SnackbarSchemaVersion int   `json:"snackbar_schema_version"`
	CreatedAt             int64 `json:"created_at"`
}

// ErrPersistenceClosed is returned when operations are attempted on a closed persistence.
var ErrPersistenceClosed = errors.New("persistence is closed")

// JSONLPersistence implements Persistence using JSONL files.
type JSONLPersistence struct {
	mu     sync.RWMutex
	path   string
	file   *os.File
	closed bool
}

// NewJSONLPersistence creates a new JSONLPersistence.
// Creates the file if it doesn't exist.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	p := &JSONLPersistence{path: path}
	if err := p.openLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

// openLocked opens (or creates) the journal for appending and writes the
// header into an empty file.
func (p *JSONLPersistence) openLocked() error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(p.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", p.path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	p.file = file

	if info.Size() == 0 {
		if err := p.writeHeader(); err != nil {
			file.Close()
			p.file = nil
			return err
		}
	}
	return nil
}

// reopenIfReplacedLocked reopens the journal when another process has
// rewritten it (prune and clear replace the file).
func (p *JSONLPersistence) reopenIfReplacedLocked() error {
	if p.file == nil {
		return p.openLocked()
	}

	onDisk, err := os.Stat(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			p.file.Close()
			p.file = nil
			return p.openLocked()
		}
		return err
	}
	open, err := p.file.Stat()
	if err != nil {
		return err
	}
	if os.SameFile(onDisk, open) {
		return nil
	}

	p.file.Close()
	p.file = nil
	return p.openLocked()
}

func (p *JSONLPersistence) writeHeader() error {
	header := schemaHeader{
		SnackbarSchemaVersion: SchemaVersion,
		CreatedAt:             time.Now().Unix(),
	}

	data, err := json.Marshal(header)
	if err != nil {
		return err
	}

	_, err = p.file.Write(append(data, '\n'))
	return err
}

// Load reads all entries from storage.
func (p *JSONLPersistence) Load() ([]model.Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPersistenceClosed
	}
	if err := p.reopenIfReplacedLocked(); err != nil {
		return nil, err
	}

	if _, err := p.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", p.path, err)
	}

	entries, err := readEntries(p.file)
	if err != nil {
		return entries, err
	}

	// Seek back to end for appending
	if _, err := p.file.Seek(0, io.SeekEnd); err != nil {
		return entries, err
	}

	return entries, nil
}

// readEntries parses a journal stream, skipping the header and malformed lines.
func readEntries(r io.Reader) ([]model.Entry, error) {
	var entries []model.Entry
	scanner := bufio.NewScanner(r)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.SnackbarSchemaVersion > 0 {
				if header.SnackbarSchemaVersion > SchemaVersion {
					return nil, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.SnackbarSchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var e model.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		if e.ID != "" {
			entries = append(entries, e)
		}
	}

	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("error reading file: %w", err)
	}
	return entries, nil
}

// Append adds an entry to storage.
func (p *JSONLPersistence) Append(e model.Entry) error {
	return p.AppendBatch([]model.Entry{e})
}

// AppendBatch adds multiple entries efficiently.
func (p *JSONLPersistence) AppendBatch(es []model.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}
	if err := p.reopenIfReplacedLocked(); err != nil {
		return err
	}

	for _, e := range es {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := p.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return p.file.Sync()
}

// Rewrite replaces the entire storage file (used after prune).
func (p *JSONLPersistence) Rewrite(es []model.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}

	if p.file != nil {
		if err := p.file.Close(); err != nil {
			return err
		}
		p.file = nil
	}

	// Write the replacement beside the journal, then swap it in.
	tmpPath := p.path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create new file: %w", err)
	}
	p.file = file

	if err := p.writeHeader(); err != nil {
		return err
	}
	for _, e := range es {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := p.file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	if err := p.file.Sync(); err != nil {
		return err
	}
	p.file.Close()
	p.file = nil

	if err := os.Rename(tmpPath, p.path); err != nil {
		return fmt.Errorf("failed to replace journal: %w", err)
	}
	return p.openLocked()
}

// Clear removes all stored entries.
func (p *JSONLPersistence) Clear() error {
	return p.Rewrite(nil)
}

// Close releases file handles and resources.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.file != nil {
		err := p.file.Close()
		p.file = nil
		return err
	}
	return nil
}

// RecoverFromCorruption rewrites a journal keeping only valid entries.
// The original is kept beside it with a timestamped suffix.
func RecoverFromCorruption(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}

	var valid []model.Entry
	scanner := bufio.NewScanner(file)
	const maxLineSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var header schemaHeader
		if json.Unmarshal(line, &header) == nil && header.SnackbarSchemaVersion > 0 {
			continue
		}

		var e model.Entry
		if err := json.Unmarshal(line, &e); err == nil && e.Validate() == nil {
			valid = append(valid, e)
		}
	}
	file.Close()

	backupPath := path + ".corrupted." + time.Now().Format("20060102-150405")
	if err := os.Rename(path, backupPath); err != nil {
		return fmt.Errorf("failed to backup corrupted file: %w", err)
	}

	p, err := NewJSONLPersistence(path)
	if err != nil {
		return err
	}
	defer p.Close()

	return p.AppendBatch(valid)
}
