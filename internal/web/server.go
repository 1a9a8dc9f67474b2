package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/theme"
	"github.com/jmylchreest/snackbar/internal/toast"
)

// Queue is the part of toast.Host the bridge drives.
type Queue interface {
	Show(cfg model.Config) (string, error)
	Hide(id string) (bool, error)
	Dismiss(id string) (bool, error)
	OnAction(ctx context.Context, id string) (toast.ActionResult, error)
	SetPosition(p model.Position) error
	SetViewportClass(v model.ViewportClass) error
	Snapshot() (toast.Snapshot, error)
	Subscribe() (<-chan toast.Snapshot, func(), error)
}

// Options configures a Server.
type Options struct {
	Listen         string
	AllowedOrigins []string // Empty = same origin only
	Breakpoint     int      // Pixel width below which a page is mobile

	// Metrics is mounted at /metrics when set.
	Metrics http.Handler

	// Theme returns the current theme for /api/theme.
	Theme func() *theme.Theme

	Logger *slog.Logger
}

// Server is the HTTP and WebSocket bridge.
type Server struct {
	queue  Queue
	opts   Options
	logger *slog.Logger
	hub    *hub
	router chi.Router
	http   *http.Server
}

// NewServer creates a bridge for queue.
func NewServer(queue Queue, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		queue:  queue,
		opts:   opts,
		logger: logger,
	}
	s.hub = newHub(logger, s.checkOrigin)
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/toasts", func(tr chi.Router) {
			tr.Get("/", s.handleList)
			tr.Post("/", s.handleShow)
			tr.Route("/{id}", func(one chi.Router) {
				one.Get("/", s.handleGet)
				one.Delete("/", s.handleHide)
				one.Post("/dismiss", s.handleDismiss)
				one.Post("/action", s.handleAction)
			})
		})
		api.Put("/position", s.handlePosition)
		api.Put("/viewport", s.handleViewport)
		api.Get("/theme", s.handleTheme)
	})
	return r
}

// requestLogger logs each request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// checkOrigin accepts same-origin requests and the configured origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(s.opts.AllowedOrigins, origin) || slices.Contains(s.opts.AllowedOrigins, "*") {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && u.Host == r.Host
}

// Run serves until ctx is cancelled. Snapshots are streamed to WebSocket
// clients for as long as the queue stays mounted.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ch, unsubscribe, err := s.queue.Subscribe()
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("failed to subscribe to toast queue: %w", err)
	}
	go s.pump(ctx, ch, unsubscribe)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web bridge listening", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.closeAll()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down web bridge: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// pump forwards queue snapshots to the hub until ctx ends or the queue
// is unmounted.
func (s *Server) pump(ctx context.Context, ch <-chan toast.Snapshot, unsubscribe func()) {
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				s.logger.Debug("toast queue subscription closed")
				return
			}
			s.hub.broadcast(message{Type: messageSnapshot, Snapshot: &snap})
		}
	}
}

// Clients returns the number of connected WebSocket clients.
func (s *Server) Clients() int {
	return s.hub.count()
}

// actionCallback is attached to toasts created over the bridge. Browsers
// learn about the activation through an action_invoked message.
func (s *Server) actionCallback(_ context.Context, id string) error {
	s.hub.broadcast(message{Type: messageActionInvoked, ID: id})
	return nil
}
