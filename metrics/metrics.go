// Package metrics holds the prometheus collectors exported by the storefront.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

type Metrics struct {
	catalogRequests  *prometheus.CounterVec
	catalogLatency   *prometheus.HistogramVec
	cartMutations    *prometheus.CounterVec
	cartSyncFailures prometheus.Counter
	cartItems        prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		catalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "Requests issued to the remote catalog, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		catalogLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Latency of remote catalog requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart mutations, by operation.",
		}, []string{"op"}),
		cartSyncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "sync_failures_total",
			Help:      "Failed writes of the cart to the persistent store.",
		}),
		cartItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "items",
			Help:      "Total quantity of items currently in the cart.",
		}),
	}
	reg.MustRegister(m.catalogRequests, m.catalogLatency, m.cartMutations, m.cartSyncFailures, m.cartItems)
	return m
}

// ObserveCatalogRequest records one catalog call.
func (m *Metrics) ObserveCatalogRequest(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.catalogRequests.WithLabelValues(endpoint, outcome).Inc()
	m.catalogLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

// CartMutated records a cart mutation and the resulting total item count.
func (m *Metrics) CartMutated(op string, totalItems int) {
	if m == nil {
		return
	}
	m.cartMutations.WithLabelValues(op).Inc()
	m.cartItems.Set(float64(totalItems))
}

func (m *Metrics) CartSyncFailed() {
	if m == nil {
		return
	}
	m.cartSyncFailures.Inc()
}
