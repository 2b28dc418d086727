package metrics

import (
	"database/sql"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterDBMetrics exposes gauges derived from storage counts.
func RegisterDBMetrics(db *sql.DB) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "open_events",
			Help: "Events still open",
		},
		func() float64 {
			return queryCount(db, "SELECT COUNT(*) FROM events WHERE status = 'open'")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "fund_transactions",
			Help: "Rows in the fund ledger",
		},
		func() float64 {
			return queryCount(db, "SELECT COUNT(*) FROM fund_transactions")
		},
	))
}

func queryCount(db *sql.DB, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		slog.Warn("metrics query failed", "error", err)
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
