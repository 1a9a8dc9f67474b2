package toast

import (
	"time"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Snapshot is an immutable view of the queue, published after every
// mutation. Toasts are in display order (ascending counter). Receivers
// share the slice and must not modify it.
type Snapshot struct {
	Version   uint64              `json:"version" yaml:"version"`
	Toasts    []model.Toast       `json:"toasts" yaml:"toasts"`
	Position  model.Position      `json:"position" yaml:"position"`
	Requested model.Position      `json:"requested" yaml:"requested"`
	Viewport  model.ViewportClass `json:"viewport" yaml:"viewport"`
	Timestamp time.Time           `json:"timestamp" yaml:"timestamp"`
}

// Find returns the toast with the given id.
func (s Snapshot) Find(id string) (model.Toast, bool) {
	for _, t := range s.Toasts {
		if t.ID == id {
			return t, true
		}
	}
	return model.Toast{}, false
}

// IDs returns the toast ids in display order.
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s.Toasts))
	for i, t := range s.Toasts {
		ids[i] = t.ID
	}
	return ids
}

// Snapshot returns the latest published snapshot.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Subscribe returns a channel that receives every published snapshot.
// Delivery is best effort: a subscriber that falls behind misses
// intermediate snapshots. The channel is closed by Unsubscribe or Stop.
func (m *Manager) Subscribe() <-chan Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Snapshot, 10)
	if m.closed {
		close(ch)
		return ch
	}
	m.subscribers = append(m.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *Manager) Unsubscribe(ch <-chan Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}
