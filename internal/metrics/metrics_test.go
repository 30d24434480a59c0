package metrics_test

import (
	"testing"

	"pharmacy/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.IncOrdersCreated()
	m.IncOrdersCreated()
	m.IncCartMutation("add")
	m.IncOrderTransition("delivered")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartMutations.WithLabelValues("add")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CartMutations.WithLabelValues("remove")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderTransitions.WithLabelValues("delivered")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.IncOrdersCreated()
		m.IncCartMutation("clear")
		m.IncPrescriptionVerified("approved")
		m.IncStockAdjustment("restock")
		m.IncOrderTransition("processing")
	})
}
