package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type pipelineMetrics struct {
	cyclesTotal prometheus.Counter
	stagesTotal *prometheus.CounterVec
	lockBusy    prometheus.Counter

	stageLatency *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *pipelineMetrics {
	return &pipelineMetrics{
		cyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "trrcms",
			Subsystem: "pipeline",
			Name:      "worker_cycles_total",
			Help:      "Total number of worker poll cycles.",
		}),
		stagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trrcms",
			Subsystem: "pipeline",
			Name:      "worker_stages_total",
			Help:      "Total number of pipeline stages the worker advanced.",
		}, []string{"stage", "result"}),
		lockBusy: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "trrcms",
			Subsystem: "pipeline",
			Name:      "worker_lock_busy_total",
			Help:      "Total number of packages skipped because another worker held the lock.",
		}),
		stageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trrcms",
			Subsystem: "pipeline",
			Name:      "worker_stage_seconds",
			Help:      "Latency distribution of worker-driven pipeline stages.",
			Buckets: []float64{
				0.05, 0.1, 0.2, 0.5,
				1, 2, 5, 10,
				30, 60, 120, 300,
			},
		}, []string{"stage", "result"}),
	}
})

func getMetrics() *pipelineMetrics {
	return metricsSingleton()
}
