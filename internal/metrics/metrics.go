// Package metrics exposes toast queue activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/snackbar/internal/model"
)

// Config configures the recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "snackbar").
	Namespace string

	// Buckets are the histogram buckets for action duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use. When nil a private
	// registry is created so tests and multiple daemons never collide.
	Registry *prometheus.Registry
}

// Recorder implements toast.Recorder with Prometheus collectors.
type Recorder struct {
	registry *prometheus.Registry

	shown          *prometheus.CounterVec
	closed         *prometheus.CounterVec
	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	lifetime       *prometheus.HistogramVec
	active         prometheus.Gauge
}

// New creates a Recorder and registers its collectors.
func New(cfg Config) *Recorder {
	if cfg.Namespace == "" {
		cfg.Namespace = "snackbar"
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = prometheus.DefBuckets
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(cfg.Registry)

	return &Recorder{
		registry: cfg.Registry,

		shown: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "toasts_shown_total",
			Help:      "Total number of toasts shown",
		}, []string{"type"}),

		closed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "toasts_closed_total",
			Help:      "Total number of toasts removed, by close reason",
		}, []string{"type", "reason"}),

		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "actions_total",
			Help:      "Total number of action button activations",
		}, []string{"type", "status"}),

		actionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "action_duration_seconds",
			Help:      "Action callback duration in seconds",
			Buckets:   cfg.Buckets,
		}, []string{"type"}),

		lifetime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "toast_lifetime_seconds",
			Help:      "Time a toast spent on screen",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 300, 900},
		}, []string{"reason"}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "active_toasts",
			Help:      "Number of toasts currently in the queue",
		}),
	}
}

// ToastShown counts a shown toast.
func (r *Recorder) ToastShown(t model.Toast) {
	r.shown.WithLabelValues(t.Type.Lower()).Inc()
}

// ToastClosed counts a removed toast and observes its lifetime.
func (r *Recorder) ToastClosed(t model.Toast, reason model.CloseReason) {
	r.closed.WithLabelValues(t.Type.Lower(), string(reason)).Inc()
	if !t.CreatedAt.IsZero() {
		r.lifetime.WithLabelValues(string(reason)).Observe(time.Since(t.CreatedAt).Seconds())
	}
}

// ActionInvoked counts an action activation and observes its duration.
func (r *Recorder) ActionInvoked(t model.Toast, took time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.actions.WithLabelValues(t.Type.Lower(), status).Inc()
	r.actionDuration.WithLabelValues(t.Type.Lower()).Observe(took.Seconds())
}

// QueueLength sets the active toast gauge.
func (r *Recorder) QueueLength(n int) {
	r.active.Set(float64(n))
}

// Registry returns the registry the collectors are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
