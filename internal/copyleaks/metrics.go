package copyleaks

import "github.com/prometheus/client_golang/prometheus"

var (
	// loginsTotal counts successful provider logins.
	loginsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "copyleaks_logins_total",
		Help: "Total number of successful Copyleaks logins.",
	})

	// callsTotal counts outbound provider calls by operation and outcome.
	callsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyleaks_calls_total",
			Help: "Total number of Copyleaks API calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(loginsTotal, callsTotal)
}
