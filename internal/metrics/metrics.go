package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the storefront.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	OrdersCreated         prometheus.Counter
	OrderTransitions      *prometheus.CounterVec
	CartMutations         *prometheus.CounterVec
	PrescriptionsVerified *prometheus.CounterVec
	StockAdjustments      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OrdersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "pharmacy_orders_created_total",
			Help: "Total number of orders placed",
		}),
		OrderTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmacy_order_status_transitions_total",
			Help: "Order status transitions by target status",
		}, []string{"to"}),
		CartMutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmacy_cart_mutations_total",
			Help: "Cart mutations by operation",
		}, []string{"op"}),
		PrescriptionsVerified: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmacy_prescriptions_verified_total",
			Help: "Prescription verifications by resulting status",
		}, []string{"status"}),
		StockAdjustments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pharmacy_stock_adjustments_total",
			Help: "Stock adjustments by kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) IncOrdersCreated() {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
}

func (m *Metrics) IncOrderTransition(to string) {
	if m == nil {
		return
	}
	m.OrderTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) IncCartMutation(op string) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) IncPrescriptionVerified(status string) {
	if m == nil {
		return
	}
	m.PrescriptionsVerified.WithLabelValues(status).Inc()
}

func (m *Metrics) IncStockAdjustment(kind string) {
	if m == nil {
		return
	}
	m.StockAdjustments.WithLabelValues(kind).Inc()
}
