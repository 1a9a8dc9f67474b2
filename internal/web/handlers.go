package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/snackbar/internal/layout"
	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/toast"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

type showResponse struct {
	ID string `json:"id"`
}

type hideResponse struct {
	ID      string `json:"id"`
	Removed bool   `json:"removed"`
}

// viewportRequest carries either a class or a pixel width.
type viewportRequest struct {
	Class string `json:"class,omitempty"`
	Width int    `json:"width,omitempty"`
}

type viewportResponse struct {
	Class model.ViewportClass `json:"class"`
}

// statusFor maps queue errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, toast.ErrNotReady), errors.Is(err, toast.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, toast.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, toast.ErrNoAction), errors.Is(err, toast.ErrActionInProgress):
		return http.StatusConflict
	case errors.Is(err, model.ErrEmptyMessage),
		errors.Is(err, model.ErrInvalidType),
		errors.Is(err, model.ErrInvalidTimeout),
		errors.Is(err, model.ErrEmptyCaption),
		errors.Is(err, model.ErrInvalidPosition),
		errors.Is(err, model.ErrInvalidViewport),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Warn("web request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if _, err := s.queue.Snapshot(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": s.hub.count()})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.queue.Snapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.queue.Snapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	t, ok := snap.Find(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, toast.ErrNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	var req model.Request
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id, err := s.show(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, showResponse{ID: id})
}

// show converts a wire request and attaches the bridge action callback.
func (s *Server) show(req model.Request) (string, error) {
	cfg, err := req.Config()
	if err != nil {
		return "", err
	}
	if cfg.ActionButton != nil {
		cfg.ActionButton.Callback = s.actionCallback
	}
	return s.queue.Show(cfg)
}

func (s *Server) handleHide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := s.queue.Hide(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, hideResponse{ID: id, Removed: removed})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := s.queue.Dismiss(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, hideResponse{ID: id, Removed: removed})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	result, err := s.queue.OnAction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	var p model.Position
	if err := decode(w, r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.queue.SetPosition(p); err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := s.queue.Snapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]model.Position{
		"requested": snap.Requested,
		"position":  snap.Position,
	})
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	class, err := s.setViewport(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, viewportResponse{Class: class})
}

// setViewport applies an explicit class, or classifies a reported width.
func (s *Server) setViewport(req viewportRequest) (model.ViewportClass, error) {
	var class model.ViewportClass
	switch {
	case req.Class != "":
		c, err := model.ParseViewportClass(req.Class)
		if err != nil {
			return "", err
		}
		class = c
	case req.Width > 0:
		class = layout.ClassifyPixels(req.Width, s.opts.Breakpoint)
	default:
		return "", fmt.Errorf("%w: class or width is required", model.ErrInvalidViewport)
	}
	return class, s.queue.SetViewportClass(class)
}

func (s *Server) handleTheme(w http.ResponseWriter, _ *http.Request) {
	if s.opts.Theme == nil {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no theme configured"})
		return
	}
	s.writeJSON(w, http.StatusOK, s.opts.Theme())
}
