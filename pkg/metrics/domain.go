package metrics

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics counts business outcomes that are not visible from HTTP status codes.
type DomainMetrics struct {
	ordersCreated    *prometheus.CounterVec
	checkoutOutcomes *prometheus.CounterVec
}

func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders created by order type.",
	}, []string{"type"})
	checkoutOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_outcomes_total",
		Help:      "Checkout session and reconciliation outcomes by payment status.",
	}, []string{"payment_status"})
	reg.MustRegister(ordersCreated, checkoutOutcomes)
	return &DomainMetrics{ordersCreated: ordersCreated, checkoutOutcomes: checkoutOutcomes}
}

// OrderCreated increments the per-type order counter.
func (m *DomainMetrics) OrderCreated(orderType string) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(orderType)).Inc()
}

// CheckoutOutcome increments the per-status checkout counter.
func (m *DomainMetrics) CheckoutOutcome(paymentStatus string) {
	if m == nil || m.checkoutOutcomes == nil {
		return
	}
	m.checkoutOutcomes.WithLabelValues(normalizeLabel(paymentStatus)).Inc()
}
