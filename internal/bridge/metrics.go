package bridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fmbridge",
			Subsystem: "bridge",
			Name:      "operations_total",
			Help:      "Operations by call mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	chunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fmbridge",
			Subsystem: "bridge",
			Name:      "chunks_total",
			Help:      "Delta chunks delivered to callers",
		},
		[]string{"mode"},
	)

	inflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fmbridge",
			Subsystem: "bridge",
			Name:      "inflight",
			Help:      "Background operations still running",
		},
		[]string{"mode"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fmbridge",
			Subsystem: "bridge",
			Name:      "operation_duration_seconds",
			Help:      "Duration of background operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(operationsTotal, chunksTotal, inflight, operationDuration)
}

func observeFinish(op *Operation, o Outcome) {
	mode := op.mode.String()
	operationsTotal.WithLabelValues(mode, string(o)).Inc()
	inflight.WithLabelValues(mode).Dec()
	operationDuration.WithLabelValues(mode, string(o)).Observe(time.Since(op.started).Seconds())
}
