// Package metrics exposes Prometheus collectors describing sync runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pfrederiksen/fixture-sync/internal/storage"
)

const namespace = "fixture_sync"

// Source fetch outcomes.
const (
	SourceOK           = "ok"
	SourceNotPublished = "not_published"
	SourceFailed       = "failed"
)

// Recorder holds the collectors for one registry.
type Recorder struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	sources       *prometheus.CounterVec
	fixtures      prometheus.Gauge
	writes        *prometheus.CounterVec
	duration      prometheus.Histogram
	lastSuccessTS prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry, including Go runtime and process
// collectors.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Sync runs by final status",
	}, []string{"status"})
	r.sources = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_fetches_total",
		Help:      "Source page fetches by outcome",
	}, []string{"outcome"})
	r.fixtures = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fixtures_found",
		Help:      "Upcoming fixtures found by the last run",
	})
	r.writes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calendar_writes_total",
		Help:      "Calendar event writes by outcome",
	}, []string{"outcome"})
	r.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of sync runs",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
	r.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful run",
	})

	r.registry.MustRegister(
		r.runs, r.sources, r.fixtures, r.writes, r.duration, r.lastSuccessTS,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveSource counts one source fetch.
func (r *Recorder) ObserveSource(outcome string) {
	if r == nil {
		return
	}
	r.sources.WithLabelValues(outcome).Inc()
}

// ObserveRun records a finished run.
func (r *Recorder) ObserveRun(run *storage.Run) {
	if r == nil || run == nil {
		return
	}

	r.runs.WithLabelValues(string(run.Status)).Inc()
	r.fixtures.Set(float64(run.Found))
	r.writes.WithLabelValues("created").Add(float64(run.Created))
	r.writes.WithLabelValues("updated").Add(float64(run.Updated))
	r.writes.WithLabelValues("skipped").Add(float64(run.Skipped))
	r.duration.Observe(run.Elapsed().Seconds())

	if run.Status == storage.StatusSuccess && run.EndTime != nil {
		r.lastSuccessTS.Set(float64(run.EndTime.Unix()))
	}
}

// Registry returns the registry the collectors are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
