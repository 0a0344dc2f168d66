// Package metrics exposes Prometheus collectors for the synthesis pipeline.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/careermemory/internal/common"
)

// Collectors holds every custom metric. It satisfies the observer
// interfaces of the synthesis, services and flow packages.
type Collectors struct {
	registry *prometheus.Registry

	SynthesisLatency  *prometheus.HistogramVec
	SynthesisOutcomes *prometheus.CounterVec
	FlowTransitions   *prometheus.CounterVec
	Rollups           *prometheus.CounterVec
	StoreRetries      *prometheus.CounterVec
}

// New registers the collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Collectors{
		registry: reg,

		SynthesisLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careermemory_synthesis_duration_seconds",
			Help:    "Latency of language model calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"kind"}),

		SynthesisOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "careermemory_synthesis_total",
			Help: "Language model calls by kind and outcome",
		}, []string{"kind", "outcome"}),

		FlowTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "careermemory_flow_transitions_total",
			Help: "Flow state transitions",
		}, []string{"from", "to"}),

		Rollups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "careermemory_rollups_total",
			Help: "Summary rollups by kind and outcome",
		}, []string{"kind", "outcome"}),

		StoreRetries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "careermemory_store_write_retries_total",
			Help: "Store writes attempted again after an ambiguous failure",
		}, []string{"op"}),
	}
}

func (c *Collectors) ObserveSynthesis(kind string, elapsed time.Duration, err error) {
	c.SynthesisLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
	c.SynthesisOutcomes.WithLabelValues(kind, synthesisOutcome(err)).Inc()
}

func synthesisOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrSynthesisTimeout):
		return "timeout"
	case errors.Is(err, common.ErrMalformedSynthesis):
		return "malformed"
	default:
		return "failed"
	}
}

func (c *Collectors) ObserveTransition(from, to string) {
	c.FlowTransitions.WithLabelValues(from, to).Inc()
}

func (c *Collectors) ObserveRollup(kind, outcome string) {
	c.Rollups.WithLabelValues(kind, outcome).Inc()
}

func (c *Collectors) ObserveStoreRetry(op string) {
	c.StoreRetries.WithLabelValues(op).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// NewServer returns an HTTP server exposing Handler on /metrics.
func (c *Collectors) NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
