// Package metrics exposes the adapter's Prometheus instruments.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jmauzyk/commerce-omnipay/internal/diag"
)

// Operation outcome labels.
const (
	StatusSuccess     = "success"
	StatusFailure     = "failure"
	StatusUnsupported = "unsupported"
	StatusCancelled   = "cancelled"
	StatusError       = "error"
)

var (
	// OperationsTotal counts gateway operations by operation name and outcome.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_operations_total",
		Help: "Gateway operations by operation and outcome.",
	}, []string{"operation", "status"})

	// DispatchDuration observes provider dispatch latency per operation.
	DispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_dispatch_duration_seconds",
		Help:    "Provider dispatch latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// DiagnosticsTotal counts emitted diagnostics by kind.
	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_diagnostics_total",
		Help: "Non-fatal diagnostics by kind.",
	}, []string{"kind"})
)

type countingSink struct {
	next diag.Sink
}

// CountingSink decorates a diagnostic sink with the DiagnosticsTotal counter.
func CountingSink(next diag.Sink) diag.Sink {
	if next == nil {
		next = diag.Discard{}
	}
	return &countingSink{next: next}
}

func (s *countingSink) Report(ctx context.Context, d diag.Diagnostic) {
	DiagnosticsTotal.WithLabelValues(string(d.Kind)).Inc()
	s.next.Report(ctx, d)
}
