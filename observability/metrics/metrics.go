// Package metrics exposes the engine's prometheus instrumentation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records pipeline activity.
type PipelineMetrics struct {
	Processed *prometheus.CounterVec
	Failures  *prometheus.CounterVec
	QueueLen  prometheus.Gauge
	Latency   prometheus.Histogram
}

var (
	pipelineOnce sync.Once
	pipelineReg  *PipelineMetrics
)

// Pipeline returns the lazily-initialised pipeline metrics registry.
func Pipeline() *PipelineMetrics {
	pipelineOnce.Do(func() {
		pipelineReg = &PipelineMetrics{
			Processed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "exchcore",
				Subsystem: "pipeline",
				Name:      "events_total",
				Help:      "Total envelopes processed segmented by event kind and outcome.",
			}, []string{"kind", "outcome"}),
			Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "exchcore",
				Subsystem: "pipeline",
				Name:      "failures_total",
				Help:      "Total failed envelopes segmented by event kind.",
			}, []string{"kind"}),
			QueueLen: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "exchcore",
				Subsystem: "pipeline",
				Name:      "queue_length",
				Help:      "Current number of envelopes waiting in the inbox.",
			}),
			Latency: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "exchcore",
				Subsystem: "pipeline",
				Name:      "event_duration_seconds",
				Help:      "Latency distribution for one envelope pass.",
				Buckets:   prometheus.DefBuckets,
			}),
		}
	})
	return pipelineReg
}

// Register attaches the pipeline collectors to the supplied registry.
func Register(reg prometheus.Registerer) {
	m := Pipeline()
	reg.MustRegister(m.Processed, m.Failures, m.QueueLen, m.Latency)
}
