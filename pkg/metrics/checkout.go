package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeConfirmed = "confirmed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	OutcomeBusy      = "busy"
)

// CheckoutMetrics records checkout attempts, bookings and cart snapshot writes.
type CheckoutMetrics struct {
	attempts       *prometheus.CounterVec
	bookings       prometheus.Counter
	duration       prometheus.Histogram
	snapshotWrites *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts partitioned by outcome.",
	}, []string{"outcome"})
	bookings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Bookings persisted by checkout, including ones from failed batches.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_submit_duration_seconds",
		Help:    "Duration of the booking submission phase.",
		Buckets: prometheus.DefBuckets,
	})
	snapshotWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_snapshot_writes_total",
		Help: "Cart snapshot writes partitioned by result.",
	}, []string{"result"})
	reg.MustRegister(attempts, bookings, duration, snapshotWrites)
	return &CheckoutMetrics{
		attempts:       attempts,
		bookings:       bookings,
		duration:       duration,
		snapshotWrites: snapshotWrites,
	}
}

// IncAttempt counts a checkout attempt with the given outcome.
func (c *CheckoutMetrics) IncAttempt(outcome string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddBookings counts bookings persisted during a submission.
func (c *CheckoutMetrics) AddBookings(n int) {
	if c == nil || c.bookings == nil || n <= 0 {
		return
	}
	c.bookings.Add(float64(n))
}

// ObserveSubmit records how long the booking fan-out took.
func (c *CheckoutMetrics) ObserveSubmit(duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.Observe(duration.Seconds())
}

// IncSnapshotWrite counts a cart snapshot write result ("ok" or "error").
func (c *CheckoutMetrics) IncSnapshotWrite(result string) {
	if c == nil || c.snapshotWrites == nil {
		return
	}
	c.snapshotWrites.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
