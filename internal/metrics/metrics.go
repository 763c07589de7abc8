// Package metrics exposes tour activity as Prometheus metrics. A Collector
// subscribes to the event bus and turns tour events into counters and
// histograms served over HTTP.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Iron-Ham/tourguide/internal/event"
	"github.com/Iron-Ham/tourguide/internal/logging"
)

// Namespace prefixes every metric name.
const Namespace = "tourguide"

// shutdownTimeout bounds how long Serve waits for in-flight scrapes.
const shutdownTimeout = 5 * time.Second

// Collector records tour events into its own Prometheus registry.
type Collector struct {
	logger   *logging.Logger
	registry *prometheus.Registry

	toursStarted    *prometheus.CounterVec
	toursCompleted  *prometheus.CounterVec
	stepTransitions *prometheus.CounterVec
	hookFailures    *prometheus.CounterVec
	hookDuration    *prometheus.HistogramVec
	catalogReloads  *prometheus.CounterVec

	bus   *event.Bus
	subID string
}

// NewCollector creates a collector with all metrics registered.
func NewCollector(logger *logging.Logger) *Collector {
	if logger == nil {
		logger = logging.NopLogger()
	}

	c := &Collector{
		logger:   logger.With("component", "metrics"),
		registry: prometheus.NewRegistry(),

		toursStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "tours_started_total",
				Help:      "Number of tour runs that showed their first step",
			},
			[]string{"tour"},
		),
		toursCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "tours_completed_total",
				Help:      "Number of tour runs that were closed or finished",
			},
			[]string{"tour"},
		),
		stepTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "step_transitions_total",
				Help:      "Number of step changes within running tours",
			},
			[]string{"tour", "direction"},
		),
		hookFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "hook_failures_total",
				Help:      "Number of step hooks that failed and aborted a transition",
			},
			[]string{"tour", "phase"},
		),
		hookDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "hook_duration_seconds",
				Help:      "Duration of step hooks in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"phase"},
		),
		catalogReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "catalog_reloads_total",
				Help:      "Number of tour definition reloads",
			},
			[]string{"result"},
		),
	}

	c.registry.MustRegister(
		c.toursStarted,
		c.toursCompleted,
		c.stepTransitions,
		c.hookFailures,
		c.hookDuration,
		c.catalogReloads,
	)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Attach subscribes the collector to every event on bus. Attaching again
// moves the subscription.
func (c *Collector) Attach(bus *event.Bus) {
	c.Detach()
	c.bus = bus
	c.subID = bus.SubscribeAll(c.Record)
}

// Detach removes the bus subscription, if any.
func (c *Collector) Detach() {
	if c.bus != nil {
		c.bus.Unsubscribe(c.subID)
		c.bus, c.subID = nil, ""
	}
}

// Record updates the metrics for one event. Events without a metric are
// ignored.
func (c *Collector) Record(e event.Event) {
	switch ev := e.(type) {
	case event.TourStartedEvent:
		c.toursStarted.WithLabelValues(ev.TourID).Inc()
	case event.TourClosedEvent:
		c.toursCompleted.WithLabelValues(ev.TourID).Inc()
	case event.StepChangedEvent:
		c.stepTransitions.WithLabelValues(ev.TourID, string(ev.Direction)).Inc()
	case event.HookFinishedEvent:
		c.hookDuration.WithLabelValues(ev.Phase).Observe(ev.Duration.Seconds())
	case event.HookFailedEvent:
		c.hookFailures.WithLabelValues(ev.TourID, ev.Phase).Inc()
	case event.CatalogReloadedEvent:
		result := "ok"
		if ev.Err != nil {
			result = "error"
		}
		c.catalogReloads.WithLabelValues(result).Inc()
	}
}

// Handler returns the HTTP handler serving the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Serve exposes /metrics on addr and blocks until ctx is done or the
// server fails.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return c.serve(ctx, ln)
}

func (c *Collector) serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	c.logger.Info("metrics endpoint listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
