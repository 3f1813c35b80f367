package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder emits fire-and-forget business events as prometheus counters.
// Nothing here can block or fail a purchase flow.
type Recorder struct {
	checkoutInitiated    *prometheus.CounterVec
	purchasesRecorded    *prometheus.CounterVec
	confirmationFailures *prometheus.CounterVec
	guestReconciled      prometheus.Counter
}

func NewRecorder() *Recorder {
	return &Recorder{
		checkoutInitiated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalpath_checkout_initiated_total",
			Help: "Checkout sessions initiated, by product type and purchaser kind.",
		}, []string{"product_type", "purchaser"}),
		purchasesRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalpath_purchases_recorded_total",
			Help: "Durable purchase records created, by type and source flow.",
		}, []string{"type", "source"}),
		confirmationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vitalpath_confirmation_failures_total",
			Help: "Payment confirmations that ended in an error state.",
		}, []string{"reason"}),
		guestReconciled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vitalpath_guest_sessions_reconciled_total",
			Help: "Completed guest sessions transferred to a durable owner.",
		}),
	}
}

func (r *Recorder) CheckoutInitiated(productType string, guest bool) {
	if r == nil {
		return
	}
	purchaser := "user"
	if guest {
		purchaser = "guest"
	}
	r.checkoutInitiated.WithLabelValues(productType, purchaser).Inc()
}

func (r *Recorder) PurchaseRecorded(purchaseType, source string) {
	if r == nil {
		return
	}
	r.purchasesRecorded.WithLabelValues(purchaseType, source).Inc()
}

func (r *Recorder) ConfirmationFailed(reason string) {
	if r == nil {
		return
	}
	r.confirmationFailures.WithLabelValues(reason).Inc()
}

func (r *Recorder) GuestReconciled() {
	if r == nil {
		return
	}
	r.guestReconciled.Inc()
}
