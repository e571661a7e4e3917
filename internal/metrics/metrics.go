package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// TransitionDuration tracks order status transitions by kind, target status and outcome.
	TransitionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ledger_order_transition_duration_seconds",
			Help: "Duration of order status transitions in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
			},
		},
		[]string{"kind", "to", "result"},
	)

	LedgerEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_balance_transactions_total",
			Help: "Balance transactions written, by direction and reference type",
		},
		[]string{"direction", "reference"},
	)

	OutboxDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_outbox_deliveries_total",
			Help: "Outbox delivery attempts by channel and result",
		},
		[]string{"channel", "result"},
	)

	CouponRedemptions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_coupon_redemptions_total",
			Help: "Coupon redemption attempts by result",
		},
		[]string{"result"},
	)
)

// RecordTransition records the duration of an order status transition.
func RecordTransition(kind, to, result string, duration float64) {
	TransitionDuration.WithLabelValues(kind, to, result).Observe(duration)
}

func RecordLedgerEntry(direction, reference string) {
	LedgerEntries.WithLabelValues(direction, reference).Inc()
}

func RecordOutboxDelivery(channel, result string) {
	OutboxDeliveries.WithLabelValues(channel, result).Inc()
}

func RecordCouponRedemption(result string) {
	CouponRedemptions.WithLabelValues(result).Inc()
}
