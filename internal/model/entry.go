package model

import (
	"errors"
	"time"
)

// CloseReason records why a toast left the queue.
type CloseReason string

// Close reasons.
const (
	ReasonExpired   CloseReason = "expired"
	ReasonDismissed CloseReason = "dismissed"
	ReasonClosed    CloseReason = "closed"
	ReasonAction    CloseReason = "action"
)

// Reasons lists every close reason.
var Reasons = []CloseReason{ReasonExpired, ReasonDismissed, ReasonClosed, ReasonAction}

// Entry is one line of the history journal: a toast that has been closed.
type Entry struct {
	ID       string      `json:"id" yaml:"id"`
	Type     Type        `json:"type" yaml:"type"`
	Message  string      `json:"message" yaml:"message"`
	Counter  uint64      `json:"counter" yaml:"counter"`
	Action   string      `json:"action,omitempty" yaml:"action,omitempty"`
	Source   string      `json:"source,omitempty" yaml:"source,omitempty"`
	ShownAt  int64       `json:"shown_at" yaml:"shown_at"`
	ClosedAt int64       `json:"closed_at" yaml:"closed_at"`
	Reason   CloseReason `json:"reason" yaml:"reason"`
}

// Entry validation errors.
var (
	ErrEmptyEntryID     = errors.New("entry id cannot be empty")
	ErrInvalidClosedAt  = errors.New("closed_at must be greater than 0")
	ErrInvalidCloseKind = errors.New("unknown close reason")
)

// NewEntry builds a journal entry for a toast closed at closedAt.
func NewEntry(t Toast, reason CloseReason, closedAt time.Time) Entry {
	e := Entry{
		ID:       t.ID,
		Type:     t.Type,
		Message:  t.Message,
		Counter:  t.Counter,
		ShownAt:  t.CreatedAt.Unix(),
		ClosedAt: closedAt.Unix(),
		Reason:   reason,
	}
	if t.ActionButton != nil {
		e.Action = t.ActionButton.Caption
	}
	return e
}

// Validate checks the fields required for a journal line.
func (e *Entry) Validate() error {
	if e.ID == "" {
		return ErrEmptyEntryID
	}
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	if e.ClosedAt <= 0 {
		return ErrInvalidClosedAt
	}
	switch e.Reason {
	case ReasonExpired, ReasonDismissed, ReasonClosed, ReasonAction:
	default:
		return ErrInvalidCloseKind
	}
	return nil
}

// ClosedTime returns ClosedAt as a time.Time.
func (e *Entry) ClosedTime() time.Time {
	return time.Unix(e.ClosedAt, 0)
}

// Lifetime returns how long the toast was on screen.
func (e *Entry) Lifetime() time.Duration {
	if e.ShownAt <= 0 || e.ClosedAt < e.ShownAt {
		return 0
	}
	return time.Duration(e.ClosedAt-e.ShownAt) * time.Second
}
