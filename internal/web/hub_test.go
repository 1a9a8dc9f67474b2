package web

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/model"
)

// startServer serves s on a loopback port and returns its address.
func startServer(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})
	return ln.Addr().String()
}

func dial(t *testing.T, addr string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads messages until match returns true.
func readUntil(t *testing.T, conn *websocket.Conn, match func(message) bool) message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg message
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func TestWebSocket_SnapshotStream(t *testing.T) {
	host, mgr := newTestHost(t)
	s := NewServer(host, Options{})
	addr := startServer(t, s)

	existing, err := mgr.Show(model.Config{Message: "before connect"})
	require.NoError(t, err)

	conn := dial(t, addr, nil)

	first := readUntil(t, conn, func(m message) bool { return m.Type == messageSnapshot })
	require.NotNil(t, first.Snapshot)
	_, ok := first.Snapshot.Find(existing)
	assert.True(t, ok)

	added, err := mgr.Show(model.Config{Message: "after connect", Type: model.TypeWarn})
	require.NoError(t, err)

	msg := readUntil(t, conn, func(m message) bool {
		return m.Type == messageSnapshot && len(m.Snapshot.Toasts) == 2
	})
	assert.Equal(t, []string{existing, added}, msg.Snapshot.IDs())

	// Dismiss from the page
	require.NoError(t, conn.WriteJSON(message{Type: messageDismiss, ID: existing}))
	msg = readUntil(t, conn, func(m message) bool {
		return m.Type == messageSnapshot && len(m.Snapshot.Toasts) == 1
	})
	assert.Equal(t, []string{added}, msg.Snapshot.IDs())

	// Viewport report
	require.NoError(t, conn.WriteJSON(message{Type: messageViewport, Width: 320}))
	msg = readUntil(t, conn, func(m message) bool {
		return m.Type == messageSnapshot && m.Snapshot.Viewport == model.ViewportMobile
	})
	assert.Equal(t, model.HorizontalCenter, msg.Snapshot.Position.Horizontal)

	assert.Equal(t, 1, s.Clients())
}

func TestWebSocket_Action(t *testing.T) {
	host, _ := newTestHost(t)
	s := NewServer(host, Options{})
	addr := startServer(t, s)

	conn := dial(t, addr, nil)
	readUntil(t, conn, func(m message) bool { return m.Type == messageSnapshot })

	id, err := s.show(model.Request{Message: "undo?", Action: &model.ActionButton{Caption: "Undo"}})
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(message{Type: messageAction, ID: id}))

	invoked := readUntil(t, conn, func(m message) bool { return m.Type == messageActionInvoked })
	assert.Equal(t, id, invoked.ID)

	result := readUntil(t, conn, func(m message) bool { return m.Type == messageActionResult })
	assert.Equal(t, id, result.ID)
	require.NotNil(t, result.Result)
	assert.Empty(t, result.Result.Link)

	require.NoError(t, conn.WriteJSON(message{Type: messageAction, ID: "missing"}))
	failed := readUntil(t, conn, func(m message) bool { return m.Type == messageError })
	assert.Equal(t, "missing", failed.ID)
	assert.True(t, strings.Contains(failed.Error, "not found"))

	require.NoError(t, conn.WriteJSON(message{Type: "shout"}))
	failed = readUntil(t, conn, func(m message) bool { return m.Type == messageError })
	assert.Contains(t, failed.Error, "unknown message type")
}

func TestWebSocket_RejectsForeignOrigin(t *testing.T) {
	host, _ := newTestHost(t)
	s := NewServer(host, Options{})
	addr := startServer(t, s)

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
}
