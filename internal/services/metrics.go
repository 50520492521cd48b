package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// generationsTotal counts finished generation streams by outcome
	// (ok, provider_error, persist_error).
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generations_total",
			Help: "Generation streams by outcome.",
		},
		[]string{"outcome"},
	)

	// scansRequestedTotal counts plagiarism scan requests by outcome
	// (submitted, replayed, rejected).
	scansRequestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scans_requested_total",
			Help: "Plagiarism scan requests by outcome.",
		},
		[]string{"outcome"},
	)

	// webhooksReceivedTotal counts provider callbacks by kind and status.
	webhooksReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Provider webhooks received, by kind and status.",
		},
		[]string{"kind", "status"},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, scansRequestedTotal, webhooksReceivedTotal)
}
