// Package metrics exposes build metrics of the dev server to Prometheus.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Recorder records build metrics. A nil Recorder is a no-op.
type Recorder struct {
	reg           *prom.Registry
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	pages         prom.Gauge
	outputs       *prom.GaugeVec
	omitted       prom.Gauge
}

// NewRecorder constructs the build metrics and registers them on reg. A nil
// reg gets a fresh registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		reg: reg,
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "raido",
			Name:      "build_duration_seconds",
			Help:      "Duration of full build passes",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "raido",
			Name:      "build_outcomes_total",
			Help:      "Build passes by outcome",
		}, []string{"outcome"}),
		pages: prom.NewGauge(prom.GaugeOpts{
			Namespace: "raido",
			Name:      "pages",
			Help:      "Pages in the last successful build",
		}),
		outputs: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "raido",
			Name:      "output_files",
			Help:      "Files produced by the last successful build by kind",
		}, []string{"kind"}),
		omitted: prom.NewGauge(prom.GaugeOpts{
			Namespace: "raido",
			Name:      "omitted_documents",
			Help:      "Documents left out of the last successful build because their view rendered nothing",
		}),
	}
	reg.MustRegister(r.buildDuration, r.buildOutcome, r.pages, r.outputs, r.omitted)
	return r
}

// BuildStats is what a finished build reports to the recorder.
type BuildStats struct {
	Pages    int
	Written  int
	Copied   int
	Omitted  int
	Duration time.Duration
}

// ObserveBuild records a successful build.
func (r *Recorder) ObserveBuild(s BuildStats) {
	if r == nil {
		return
	}
	r.buildDuration.Observe(s.Duration.Seconds())
	r.buildOutcome.WithLabelValues(OutcomeSuccess).Inc()
	r.pages.Set(float64(s.Pages))
	r.outputs.WithLabelValues("written").Set(float64(s.Written))
	r.outputs.WithLabelValues("copied").Set(float64(s.Copied))
	r.omitted.Set(float64(s.Omitted))
}

// ObserveFailure records a failed build.
func (r *Recorder) ObserveFailure(d time.Duration) {
	if r == nil {
		return
	}
	r.buildDuration.Observe(d.Seconds())
	r.buildOutcome.WithLabelValues(OutcomeFailed).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
