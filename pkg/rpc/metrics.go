package rpc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeAbsent  = "absent"
	outcomeError   = "error"
)

// Metrics counts calls made to the validator.
type Metrics struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
}

// NewMetrics registers the RPC metrics with reg. A nil reg uses the default
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		callsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "surfpatch_rpc_calls_total",
				Help: "Total number of JSON-RPC calls to the validator",
			},
			[]string{"method", "outcome"},
		),
		callDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "surfpatch_rpc_call_duration_seconds",
				Help:    "JSON-RPC call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

func (m *Metrics) record(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(method, outcome).Inc()
	m.callDuration.WithLabelValues(method).Observe(d.Seconds())
}
