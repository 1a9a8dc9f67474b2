package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/snackbar/internal/toast"
)

// messageType identifies a WebSocket message.
type messageType string

// Server to client.
const (
	messageSnapshot      messageType = "snapshot"
	messageActionInvoked messageType = "action_invoked"
	messageActionResult  messageType = "action_result"
	messageError         messageType = "error"
)

// Client to server.
const (
	messageDismiss  messageType = "dismiss"
	messageHide     messageType = "hide"
	messageAction   messageType = "action"
	messageViewport messageType = "viewport"
)

// message is the single envelope used in both directions.
type message struct {
	Type     messageType         `json:"type"`
	ID       string              `json:"id,omitempty"`
	Snapshot *toast.Snapshot     `json:"snapshot,omitempty"`
	Result   *toast.ActionResult `json:"result,omitempty"`
	Class    string              `json:"class,omitempty"`
	Width    int                 `json:"width,omitempty"`
	Error    string              `json:"error,omitempty"`
}

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
	sendBuffer   = 16
	readLimit    = 16 << 10
)

// client is one WebSocket connection. Only writeLoop writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// hub tracks connected clients and fans messages out to them.
type hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func newHub(logger *slog.Logger, checkOrigin func(*http.Request) bool) *hub {
	return &hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.close()
	}
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast queues msg for every client. Clients whose buffer is full are
// dropped; a browser renderer reconnects and receives a fresh snapshot.
func (h *hub) broadcast(msg message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("failed to encode websocket message", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Debug("dropping slow websocket client")
		h.remove(c)
	}
}

// closeAll disconnects every client.
func (h *hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

// sendTo queues msg for a single client.
func (h *hub) sendTo(c *client, msg message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWebSocket upgrades the connection, sends the current snapshot and
// then serves client messages until the connection closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if _, err := s.queue.Snapshot(); err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.hub.add(c)
	go s.hub.writeLoop(c)

	// The first snapshot is taken after add so no mutation falls between
	// it and the broadcasts. Broadcasts may still overtake it; receivers
	// order by Snapshot.Version.
	snap, err := s.queue.Snapshot()
	if err != nil {
		s.hub.remove(c)
		return
	}
	s.hub.sendTo(c, message{Type: messageSnapshot, Snapshot: &snap})
	s.logger.Debug("websocket client connected", "remote", r.RemoteAddr, "clients", s.hub.count())

	defer func() {
		s.hub.remove(c)
		s.logger.Debug("websocket client disconnected", "remote", r.RemoteAddr)
	}()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.handleClientMessage(r.Context(), c, msg)
	}
}

func (s *Server) handleClientMessage(ctx context.Context, c *client, msg message) {
	var err error
	switch msg.Type {
	case messageDismiss:
		_, err = s.queue.Dismiss(msg.ID)
	case messageHide:
		_, err = s.queue.Hide(msg.ID)
	case messageAction:
		// Actions may run for a while; the read loop keeps serving.
		go func() {
			result, err := s.queue.OnAction(context.WithoutCancel(ctx), msg.ID)
			if err != nil {
				s.hub.sendTo(c, message{Type: messageError, ID: msg.ID, Error: err.Error()})
				return
			}
			s.hub.sendTo(c, message{Type: messageActionResult, ID: msg.ID, Result: &result})
		}()
		return
	case messageViewport:
		_, err = s.setViewport(viewportRequest{Class: msg.Class, Width: msg.Width})
	default:
		s.hub.sendTo(c, message{Type: messageError, Error: "unknown message type: " + string(msg.Type)})
		return
	}
	if err != nil {
		s.hub.sendTo(c, message{Type: messageError, ID: msg.ID, Error: err.Error()})
	}
}
