package reconcile

import "github.com/prometheus/client_golang/prometheus"

var (
	watchesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reconcile_watches_active",
		Help: "Scan watches currently open.",
	})
	watchesEnded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_watches_ended_total",
		Help: "Scan watches ended, by reason.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(watchesActive, watchesEnded)
}
