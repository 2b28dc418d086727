// Package metrics exposes Prometheus instrumentation for the
// settlement service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "expense_tracker_"

// Result labels for operation outcomes.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	eventCreateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "event_create_duration_seconds",
			Help:    "Event creation duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
	paymentAddDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "payment_add_duration_seconds",
			Help:    "Payment recording duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
	eventCloseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "event_close_duration_seconds",
			Help:    "Event close duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
	fundBalanceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "fund_balance_duration_seconds",
			Help:    "Fund balance read duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"},
	)
	exportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "event_export_duration_seconds",
			Help:    "Event statement export duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		eventCreateDuration,
		paymentAddDuration,
		eventCloseDuration,
		fundBalanceDuration,
		exportDuration,
	)
}

// ObserveEventCreate records an event creation.
func ObserveEventCreate(result string, d time.Duration) {
	eventCreateDuration.WithLabelValues(result).Observe(d.Seconds())
}

// ObservePaymentAdd records a payment insertion.
func ObservePaymentAdd(result string, d time.Duration) {
	paymentAddDuration.WithLabelValues(result).Observe(d.Seconds())
}

// ObserveEventClose records a close attempt.
func ObserveEventClose(result string, d time.Duration) {
	eventCloseDuration.WithLabelValues(result).Observe(d.Seconds())
}

// ObserveFundBalance records a balance read.
func ObserveFundBalance(result string, d time.Duration) {
	fundBalanceDuration.WithLabelValues(result).Observe(d.Seconds())
}

// ObserveEventExport records a statement export.
func ObserveEventExport(format, result string, d time.Duration) {
	exportDuration.WithLabelValues(format, result).Observe(d.Seconds())
}
