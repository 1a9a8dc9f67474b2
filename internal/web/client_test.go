package web

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/toast"
)

func TestNewClient_Address(t *testing.T) {
	c, err := NewClient("127.0.0.1:7077")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:7077", c.base.String())

	c, err = NewClient("https://toasts.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://toasts.example.com", c.base.String())

	_, err = NewClient("http://")
	assert.Error(t, err)
}

func TestClient_RoundTrip(t *testing.T) {
	host, mgr := newTestHost(t)
	addr := startServer(t, NewServer(host, Options{}))

	c, err := NewClient(addr)
	require.NoError(t, err)

	id, err := c.Show(model.Request{Message: "uploaded", Type: "success", Action: &model.ActionButton{Caption: "View", Link: "https://example.com/f/1"}})
	require.NoError(t, err)
	_, ok := mgr.Get(id)
	require.True(t, ok)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []string{id}, snap.IDs())

	result, err := c.OnAction(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/f/1", result.Link)

	require.NoError(t, c.SetPosition(model.Position{Horizontal: model.HorizontalRight, Vertical: model.VerticalTop}))
	require.NoError(t, c.SetViewportClass(model.ViewportMobile))
	_, effective := mgr.Position()
	assert.Equal(t, model.HorizontalCenter, effective.Horizontal)

	removed, err := c.Dismiss(id)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = c.Hide(id)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestClient_APIError(t *testing.T) {
	host, _ := newTestHost(t)
	addr := startServer(t, NewServer(host, Options{}))

	c, err := NewClient(addr)
	require.NoError(t, err)

	_, err = c.Show(model.Request{Message: " "})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	_, err = c.OnAction(context.Background(), "missing")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_Subscribe(t *testing.T) {
	host, _ := newTestHost(t)
	addr := startServer(t, NewServer(host, Options{}))

	c, err := NewClient(addr)
	require.NoError(t, err)

	ch, cancel, err := c.Subscribe()
	require.NoError(t, err)

	id, err := host.Show(model.Config{Message: "remote"})
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	var snap toast.Snapshot
	for len(snap.Toasts) == 0 {
		select {
		case snap = <-ch:
		case <-deadline:
			t.Fatal("no snapshot with the new toast")
		}
	}
	assert.Equal(t, id, snap.Toasts[0].ID)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestNewerThan(t *testing.T) {
	var n newerThan
	assert.True(t, n.accept(0), "first snapshot is always taken")
	assert.False(t, n.accept(0))
	assert.True(t, n.accept(3))
	assert.False(t, n.accept(2))
	assert.False(t, n.accept(3))
	assert.True(t, n.accept(4))
}

func TestClient_SubscribeVersionsIncrease(t *testing.T) {
	host, _ := newTestHost(t)
	addr := startServer(t, NewServer(host, Options{}))

	c, err := NewClient(addr)
	require.NoError(t, err)
	ch, cancel, err := c.Subscribe()
	require.NoError(t, err)
	defer cancel()

	var last toast.Snapshot
	deadline := time.After(5 * time.Second)
	received := 0
	for i := 0; i < 5; i++ {
		_, err := host.Show(model.Config{Message: "burst"})
		require.NoError(t, err)
	}
	for len(last.Toasts) < 5 {
		select {
		case snap := <-ch:
			if received > 0 {
				assert.Greater(t, snap.Version, last.Version)
			}
			received++
			last = snap
		case <-deadline:
			t.Fatal("never saw all toasts")
		}
	}
	current, err := host.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, current.Version, last.Version)
}
