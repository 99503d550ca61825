package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records pipeline metrics using Prometheus.
// A nil *Recorder is valid and records nothing.
// ⭐ SSOT: 메트릭 정의는 여기서만
type Recorder struct {
	registry     *prometheus.Registry
	runsTotal    *prometheus.CounterVec
	flowFetches  *prometheus.CounterVec
	candidates   prometheus.Gauge
	hits         prometheus.Gauge
	lastRun      prometheus.Gauge
	stageLatency *prometheus.HistogramVec
}

// New creates a Recorder backed by its own registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flipwatch_runs_total",
				Help: "Screening runs by final report status",
			},
			[]string{"status"},
		),
		flowFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flipwatch_flow_fetches_total",
				Help: "Per-candidate broker-flow fetches by outcome",
			},
			[]string{"outcome"},
		),
		candidates: factory.NewGauge(prometheus.GaugeOpts{
			Name: "flipwatch_last_run_candidates",
			Help: "Limit-up candidates found by the last run",
		}),
		hits: factory.NewGauge(prometheus.GaugeOpts{
			Name: "flipwatch_last_run_hits",
			Help: "Watch-listed broker hits emitted by the last run",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "flipwatch_last_run_timestamp_seconds",
			Help: "Unix time the last report was generated",
		}),
		stageLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flipwatch_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// RecordRun records a finished run
func (r *Recorder) RecordRun(status string, candidates, hits int, at time.Time) {
	if r == nil {
		return
	}
	r.runsTotal.WithLabelValues(status).Inc()
	r.candidates.Set(float64(candidates))
	r.hits.Set(float64(hits))
	r.lastRun.Set(float64(at.Unix()))
}

// RecordFlowFetch records one per-candidate fetch outcome
func (r *Recorder) RecordFlowFetch(outcome string) {
	if r == nil {
		return
	}
	r.flowFetches.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a pipeline stage took
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

// Registry exposes the underlying registry (tests, custom exporters)
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
