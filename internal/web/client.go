package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/toast"
)

// DefaultClientTimeout bounds every request except OnAction, which waits
// for the action callback.
const DefaultClientTimeout = 5 * time.Second

// APIError is a non-2xx reply from the bridge.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("snackbard: %s (%d)", e.Message, e.Status)
}

// Client talks to the web bridge of a running snackbard. It satisfies the
// same queue surface as toast.Host so renderers can attach remotely.
type Client struct {
	base    *url.URL
	http    *http.Client
	dialer  *websocket.Dialer
	timeout time.Duration
}

// NewClient creates a client for address, either host:port or a full
// http(s) URL.
func NewClient(address string) (*Client, error) {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	base, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon address %q: %w", address, err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid daemon address %q: missing host", address)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	return &Client{
		base:    base,
		http:    &http.Client{},
		dialer:  &websocket.Dialer{HandshakeTimeout: DefaultClientTimeout},
		timeout: DefaultClientTimeout,
	}, nil
}

// Show creates or replaces a toast and returns its id.
func (c *Client) Show(req model.Request) (string, error) {
	var resp showResponse
	if err := c.call(http.MethodPost, "/api/toasts", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Hide removes a toast.
func (c *Client) Hide(id string) (bool, error) {
	var resp hideResponse
	if err := c.call(http.MethodDelete, "/api/toasts/"+url.PathEscape(id), nil, &resp); err != nil {
		return false, err
	}
	return resp.Removed, nil
}

// Dismiss activates the dismiss control of a toast.
func (c *Client) Dismiss(id string) (bool, error) {
	var resp hideResponse
	if err := c.call(http.MethodPost, "/api/toasts/"+url.PathEscape(id)+"/dismiss", nil, &resp); err != nil {
		return false, err
	}
	return resp.Removed, nil
}

// OnAction activates the action control of a toast and waits for the
// callback to finish.
func (c *Client) OnAction(ctx context.Context, id string) (toast.ActionResult, error) {
	var result toast.ActionResult
	err := c.do(ctx, http.MethodPost, "/api/toasts/"+url.PathEscape(id)+"/action", nil, &result)
	return result, err
}

// SetPosition changes the requested stack position.
func (c *Client) SetPosition(p model.Position) error {
	return c.call(http.MethodPut, "/api/position", p, nil)
}

// SetViewportClass reports the renderer's viewport class.
func (c *Client) SetViewportClass(v model.ViewportClass) error {
	return c.call(http.MethodPut, "/api/viewport", viewportRequest{Class: string(v)}, nil)
}

// Snapshot fetches the current queue.
func (c *Client) Snapshot() (toast.Snapshot, error) {
	var snap toast.Snapshot
	err := c.call(http.MethodGet, "/api/toasts", nil, &snap)
	return snap, err
}

// Subscribe streams snapshots over a WebSocket. Only the newest undelivered
// snapshot is kept, and snapshots no newer than the last one received are
// dropped. The channel closes when the connection drops or the returned
// cancel func is called.
func (c *Client) Subscribe() (<-chan toast.Snapshot, func(), error) {
	ws := *c.base
	if ws.Scheme == "https" {
		ws.Scheme = "wss"
	} else {
		ws.Scheme = "ws"
	}
	ws.Path += "/ws"

	header := http.Header{}
	header.Set("Origin", c.base.Scheme+"://"+c.base.Host)

	conn, resp, err := c.dialer.Dial(ws.String(), header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", ws.String(), err)
	}

	ch := make(chan toast.Snapshot, 1)
	go func() {
		defer close(ch)
		var seen newerThan
		for {
			var msg message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type != messageSnapshot || msg.Snapshot == nil {
				continue
			}
			if !seen.accept(msg.Snapshot.Version) {
				continue
			}
			select {
			case <-ch:
			default:
			}
			ch <- *msg.Snapshot
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		})
	}
	return ch, cancel, nil
}

// newerThan tracks the highest snapshot version received.
type newerThan struct {
	version uint64
	any     bool
}

func (n *newerThan) accept(version uint64) bool {
	if n.any && version <= n.version {
		return false
	}
	n.version = version
	n.any = true
	return true
}

func (c *Client) call(method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.do(ctx, method, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach snackbard: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		var e errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
