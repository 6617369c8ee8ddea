// Package metrics exposes Prometheus instrumentation for the normalizer, the
// HTTP streams and the transcript pool.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/papercomputeco/agentui/pkg/event"
	"github.com/papercomputeco/agentui/pkg/normalizer"
)

// Collector owns a registry and every agentui metric registered on it.
// It is safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	eventsEmitted    *prometheus.CounterVec
	linesResolved    *prometheus.CounterVec
	upstreamFailures prometheus.Counter
	activeStreams    prometheus.Gauge
	streamDuration   *prometheus.HistogramVec
	transcripts      *prometheus.CounterVec
}

// New creates a Collector with a fresh registry, including the Go runtime
// and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		eventsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentui_events_emitted_total",
				Help: "Total number of protocol events emitted",
			},
			[]string{"type"},
		),

		linesResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentui_lines_resolved_total",
				Help: "Total number of model output lines resolved, by resolver tier",
			},
			[]string{"tier"},
		),

		upstreamFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "agentui_upstream_failures_total",
				Help: "Total number of backend streams that failed",
			},
		),

		activeStreams: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentui_active_streams",
				Help: "Number of /agent streams currently open",
			},
		),

		streamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentui_stream_duration_seconds",
				Help:    "Duration of /agent streams in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"outcome"},
		),

		transcripts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentui_transcripts_total",
				Help: "Total number of transcript records by persistence outcome",
			},
			[]string{"outcome"},
		),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.eventsEmitted,
		c.linesResolved,
		c.upstreamFailures,
		c.activeStreams,
		c.streamDuration,
		c.transcripts,
	)

	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Observer returns a normalizer.Observer feeding this collector.
func (c *Collector) Observer() normalizer.Observer {
	return observer{c}
}

// StreamStarted marks a stream as open. The returned func marks it closed
// and records its duration under outcome.
func (c *Collector) StreamStarted() func(outcome string) {
	start := time.Now()
	c.activeStreams.Inc()
	return func(outcome string) {
		c.activeStreams.Dec()
		c.streamDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}

func (c *Collector) TranscriptStored()  { c.transcripts.WithLabelValues("stored").Inc() }
func (c *Collector) TranscriptDropped() { c.transcripts.WithLabelValues("dropped").Inc() }
func (c *Collector) TranscriptFailed()  { c.transcripts.WithLabelValues("failed").Inc() }

type observer struct {
	c *Collector
}

func (o observer) LineResolved(res normalizer.Resolution) {
	o.c.linesResolved.WithLabelValues(res.Tier.String()).Inc()
}

func (o observer) Emitted(e event.Event) {
	o.c.eventsEmitted.WithLabelValues(string(e.Type())).Inc()
}

func (o observer) UpstreamFailed(error) {
	o.c.upstreamFailures.Inc()
}
