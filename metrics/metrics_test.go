package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCatalogRequest("products", "ok", 20*time.Millisecond)
	m.ObserveCatalogRequest("products", "ok", 30*time.Millisecond)
	m.ObserveCatalogRequest("product", "status_error", time.Millisecond)
	m.CartMutated("add", 3)
	m.CartMutated("remove", 1)
	m.CartSyncFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.catalogRequests.WithLabelValues("products", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalogRequests.WithLabelValues("product", "status_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartItems))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartSyncFailures))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCatalogRequest("products", "ok", time.Second)
		m.CartMutated("clear", 0)
		m.CartSyncFailed()
	})
}
