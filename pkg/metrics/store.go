package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records storefront business events.
type StoreMetrics struct {
	ordersPlaced   *prometheus.CounterVec
	orderStatus    *prometheus.CounterVec
	cartMigrations *prometheus.CounterVec
	comments       *prometheus.CounterVec
}

// NewStoreMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op instance.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tienda_orders_placed_total",
		Help: "Orders created at checkout.",
	}, []string{"payment_method"})
	orderStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tienda_order_status_changes_total",
		Help: "Order status updates applied by administrators.",
	}, []string{"status"})
	cartMigrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tienda_cart_migrated_items_total",
		Help: "Guest cart items moved to an account at login.",
	}, []string{"outcome"})
	comments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tienda_comments_total",
		Help: "Product comments submitted.",
	}, []string{"state"})
	reg.MustRegister(ordersPlaced, orderStatus, cartMigrations, comments)
	return &StoreMetrics{
		ordersPlaced:   ordersPlaced,
		orderStatus:    orderStatus,
		cartMigrations: cartMigrations,
		comments:       comments,
	}
}

// IncOrderPlaced counts a completed checkout.
func (m *StoreMetrics) IncOrderPlaced(paymentMethod string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncOrderStatus counts n orders moved to status.
func (m *StoreMetrics) IncOrderStatus(status string, n int) {
	if m == nil || m.orderStatus == nil || n <= 0 {
		return
	}
	m.orderStatus.WithLabelValues(normalizeLabel(status)).Add(float64(n))
}

// ObserveCartMigration records how guest lines were folded into an account.
func (m *StoreMetrics) ObserveCartMigration(merged, reassigned int) {
	if m == nil || m.cartMigrations == nil {
		return
	}
	if merged > 0 {
		m.cartMigrations.WithLabelValues("merged").Add(float64(merged))
	}
	if reassigned > 0 {
		m.cartMigrations.WithLabelValues("reassigned").Add(float64(reassigned))
	}
}

// IncComment counts a submitted comment by its initial moderation state.
func (m *StoreMetrics) IncComment(approved bool) {
	if m == nil || m.comments == nil {
		return
	}
	state := "pending"
	if approved {
		state = "approved"
	}
	m.comments.WithLabelValues(state).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
