// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsRegistered counts successful product registrations.
	ProductsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_products_registered_total",
		Help: "The total number of products registered on the ledger",
	})

	// OwnershipTransfers counts successful custody transfers.
	OwnershipTransfers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_ownership_transfers_total",
		Help: "The total number of successful ownership transfers",
	})

	// CounterfeitReports counts accepted counterfeit reports.
	CounterfeitReports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_counterfeit_reports_total",
		Help: "The total number of counterfeit reports recorded",
	})

	// Verifications counts verification lookups by outcome
	// (authentic, flagged, unregistered).
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_verifications_total",
		Help: "The total number of verification lookups by outcome",
	}, []string{"outcome"})
)
