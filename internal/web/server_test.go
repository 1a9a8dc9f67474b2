package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/theme"
	"github.com/jmylchreest/snackbar/internal/toast"
)

func newTestHost(t *testing.T) (*toast.Host, *toast.Manager) {
	t.Helper()
	host := toast.NewHost()
	mgr, err := host.Create(toast.WithDefaults(model.Defaults{Timeout: model.Ptr(time.Duration(0))}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = host.Destroy() })
	return host, mgr
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_ShowAndList(t *testing.T) {
	host, _ := newTestHost(t)
	s := NewServer(host, Options{})

	rec := do(t, s.Handler(), http.MethodPost, "/api/toasts", model.Request{Message: "saved", Type: "success"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created showResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	rec = do(t, s.Handler(), http.MethodGet, "/api/toasts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap toast.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Len(t, snap.Toasts, 1)
	assert.Equal(t, created.ID, snap.Toasts[0].ID)
	assert.Equal(t, model.TypeSuccess, snap.Toasts[0].Type)

	rec = do(t, s.Handler(), http.MethodGet, "/api/toasts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var one model.Toast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, "saved", one.Message)

	rec = do(t, s.Handler(), http.MethodGet, "/api/toasts/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ShowValidation(t *testing.T) {
	host, _ := newTestHost(t)
	s := NewServer(host, Options{})

	tests := []struct {
		name string
		body any
	}{
		{"empty message", model.Request{Message: " "}},
		{"bad type", model.Request{Message: "x", Type: "fatal"}},
		{"negative timeout", model.Request{Message: "x", TimeoutMS: model.Ptr(int64(-1))}},
		{"empty caption", model.Request{Message: "x", Action: &model.ActionButton{}}},
		{"unknown field", map[string]any{"message": "x", "colour": "red"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, "/api/toasts", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_NotReady(t *testing.T) {
	s := NewServer(toast.NewHost(), Options{})

	for _, path := range []string{"/api/toasts", "/healthz"} {
		rec := do(t, s.Handler(), http.MethodGet, path, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
	rec := do(t, s.Handler(), http.MethodPost, "/api/toasts", model.Request{Message: "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_HideAndDismiss(t *testing.T) {
	host, mgr := newTestHost(t)
	s := NewServer(host, Options{})

	var dismissed []string
	id, err := mgr.Show(model.Config{Message: "a", DismissText: "OK", DismissCallback: func(id string) { dismissed = append(dismissed, id) }})
	require.NoError(t, err)
	other, err := mgr.Show(model.Config{Message: "b"})
	require.NoError(t, err)

	rec := do(t, s.Handler(), http.MethodPost, "/api/toasts/"+id+"/dismiss", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp hideResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Removed)
	assert.Equal(t, []string{id}, dismissed)

	rec = do(t, s.Handler(), http.MethodDelete, "/api/toasts/"+other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, mgr.Len())

	// Hiding an unknown id is not an error
	rec = do(t, s.Handler(), http.MethodDelete, "/api/toasts/"+other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Removed)
}

func TestServer_Action(t *testing.T) {
	host, mgr := newTestHost(t)
	s := NewServer(host, Options{})

	plain, err := mgr.Show(model.Config{Message: "no action"})
	require.NoError(t, err)
	rec := do(t, s.Handler(), http.MethodPost, "/api/toasts/"+plain+"/action", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s.Handler(), http.MethodPost, "/api/toasts/missing/action", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s.Handler(), http.MethodPost, "/api/toasts", model.Request{
		Message: "new version",
		Action:  &model.ActionButton{Caption: "Open", Link: "https://example.com", LinkTarget: "_blank"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created showResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(t, s.Handler(), http.MethodPost, "/api/toasts/"+created.ID+"/action", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result toast.ActionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "https://example.com", result.Link)
	assert.Equal(t, "_blank", result.LinkTarget)
}

func TestServer_PositionAndViewport(t *testing.T) {
	host, mgr := newTestHost(t)
	s := NewServer(host, Options{Breakpoint: 600})

	rec := do(t, s.Handler(), http.MethodPut, "/api/position", model.Position{Horizontal: model.HorizontalRight, Vertical: model.VerticalTop})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	req, eff := mgr.Position()
	assert.Equal(t, model.VerticalTop, req.Vertical)
	assert.Equal(t, model.VerticalTop, eff.Vertical)

	rec = do(t, s.Handler(), http.MethodPut, "/api/position", map[string]string{"horizontal": "middle", "vertical": "top"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 700px is desktop with a 600px breakpoint
	rec = do(t, s.Handler(), http.MethodPut, "/api/viewport", viewportRequest{Width: 700})
	require.Equal(t, http.StatusOK, rec.Code)
	var vp viewportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vp))
	assert.Equal(t, model.ViewportDesktop, vp.Class)

	rec = do(t, s.Handler(), http.MethodPut, "/api/viewport", viewportRequest{Width: 400})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vp))
	assert.Equal(t, model.ViewportMobile, vp.Class)
	_, eff = mgr.Position()
	assert.Equal(t, model.HorizontalCenter, eff.Horizontal)

	rec = do(t, s.Handler(), http.MethodPut, "/api/viewport", viewportRequest{Class: "desktop"})
	require.Equal(t, http.StatusOK, rec.Code)
	_, eff = mgr.Position()
	assert.Equal(t, model.HorizontalRight, eff.Horizontal)

	rec = do(t, s.Handler(), http.MethodPut, "/api/viewport", viewportRequest{Class: "watch"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s.Handler(), http.MethodPut, "/api/viewport", viewportRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ThemeAndMetrics(t *testing.T) {
	host, _ := newTestHost(t)

	s := NewServer(host, Options{})
	rec := do(t, s.Handler(), http.MethodGet, "/api/theme", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, s.Handler(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("snackbar_active_toasts 0\n"))
	})
	s = NewServer(host, Options{Theme: theme.NewDefaultTheme, Metrics: metrics})

	rec = do(t, s.Handler(), http.MethodGet, "/api/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var th map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &th))
	assert.Equal(t, theme.DefaultThemeName, th["name"])

	rec = do(t, s.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "snackbar_active_toasts")
}

func TestServer_CheckOrigin(t *testing.T) {
	s := NewServer(toast.NewHost(), Options{AllowedOrigins: []string{"http://app.local:3000"}})

	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "http://127.0.0.1:7077/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, s.checkOrigin(req("")))
	assert.True(t, s.checkOrigin(req("http://127.0.0.1:7077")))
	assert.True(t, s.checkOrigin(req("http://app.local:3000")))
	assert.False(t, s.checkOrigin(req("http://evil.example")))
	assert.False(t, s.checkOrigin(req("://bad")))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(toast.ErrNotReady))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(toast.ErrClosed))
	assert.Equal(t, http.StatusConflict, statusFor(toast.ErrActionInProgress))
	assert.Equal(t, http.StatusBadRequest, statusFor(model.ErrInvalidPosition))
	assert.Equal(t, http.StatusInternalServerError, statusFor(context.Canceled))
}
