// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blockkeeper"

// Metrics groups the collectors updated by the gRPC layer.
type Metrics struct {
	Calls         *prometheus.CounterVec
	CallDuration  *prometheus.HistogramVec
	BlocksCreated prometheus.Counter
	BlocksDeleted prometheus.Counter
	Logins        *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "calls_total",
			Help:      "gRPC calls by method and status code.",
		}, []string{"method", "code"}),
		CallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "call_duration_seconds",
			Help:      "gRPC call latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		BlocksCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_created_total",
			Help:      "Blocks created.",
		}),
		BlocksDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_deleted_total",
			Help:      "Blocks removed by group deletion.",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by kind and result.",
		}, []string{"kind", "result"}),
	}
}

// ObserveCall records one finished gRPC call.
func (m *Metrics) ObserveCall(method, code string, seconds float64) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(method, code).Inc()
	m.CallDuration.WithLabelValues(method).Observe(seconds)
}

// ObserveLogin records a login attempt. kind is "local" or "external".
func (m *Metrics) ObserveLogin(kind string, ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.Logins.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) AddBlocksCreated(n int) {
	if m == nil {
		return
	}
	m.BlocksCreated.Add(float64(n))
}

func (m *Metrics) AddBlocksDeleted(n int64) {
	if m == nil {
		return
	}
	m.BlocksDeleted.Add(float64(n))
}
