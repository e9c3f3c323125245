package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_purchases_total",
			Help: "Begin-purchase attempts by outcome",
		},
		[]string{"outcome"},
	)

	compensations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_reservation_compensations_total",
			Help: "Compensating reservation releases by result",
		},
		[]string{"result"},
	)

	settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_settlement_callbacks_total",
			Help: "Provider callbacks by outcome",
		},
		[]string{"outcome"},
	)

	deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_invoice_deliveries_total",
			Help: "Invoice delivery hand-offs by result",
		},
		[]string{"result"},
	)

	invoicesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_invoice_emails_total",
			Help: "Invoice e-mails by result, after retries",
		},
		[]string{"result"},
	)

	providerLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticketing_provider_request_duration_seconds",
			Help:    "Latency of payment provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)
)

// Purchase outcomes
const (
	PurchaseOK            = "ok"
	PurchaseNotFound      = "not_found"
	PurchaseConflict      = "conflict"
	PurchaseProviderError = "provider_error"
	PurchaseStoreError    = "store_error"
)

// Settlement outcomes
const (
	SettlementSettled          = "settled"
	SettlementRepaired         = "repaired" // SOLD earlier, finalized by a redelivery
	SettlementDuplicate        = "duplicate"
	SettlementIgnored          = "ignored"
	SettlementMalformed        = "malformed"
	SettlementUnknownReference = "unknown_reference"
	SettlementInconsistent     = "inconsistent"
	SettlementUnauthenticated  = "unauthenticated"
	SettlementStoreError       = "store_error"
)

func TrackPurchase(outcome string) {
	purchases.WithLabelValues(outcome).Inc()
}

func TrackCompensation(ok bool) {
	compensations.WithLabelValues(result(ok)).Inc()
}

func TrackSettlement(outcome string) {
	settlements.WithLabelValues(outcome).Inc()
}

func TrackDelivery(ok bool) {
	deliveries.WithLabelValues(result(ok)).Inc()
}

func TrackInvoice(ok bool) {
	invoicesSent.WithLabelValues(result(ok)).Inc()
}

func TrackProviderCall(operation string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	providerLatency.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
