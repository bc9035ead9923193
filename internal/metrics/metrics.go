package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Order placement outcomes.
const (
	OutcomeOK                = "ok"
	OutcomeValidation        = "validation"
	OutcomeUnavailable       = "unavailable"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeConflict          = "conflict"
	OutcomeError             = "error"
)

// OrderMetrics tracks order placement. A nil *OrderMetrics records nothing.
type OrderMetrics struct {
	placed    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	conflicts prometheus.Counter
}

// NewRegistry returns a registry with the Go and process collectors registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return reg
}

// NewOrderMetrics creates and registers the order placement collectors.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	m := &OrderMetrics{
		placed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: "orders",
			Name:      "placements_total",
			Help:      "Order placement attempts by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shop",
			Subsystem: "orders",
			Name:      "placement_duration_seconds",
			Help:      "Order placement latency including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shop",
			Subsystem: "orders",
			Name:      "transaction_conflicts_total",
			Help:      "Order transactions aborted by the store, including retried ones.",
		}),
	}

	reg.MustRegister(m.placed, m.duration, m.conflicts)

	return m
}

func (m *OrderMetrics) ObservePlacement(outcome string, d time.Duration) {
	if m == nil {
		return
	}

	m.placed.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *OrderMetrics) IncConflict() {
	if m == nil {
		return
	}

	m.conflicts.Inc()
}
