package manager

import "github.com/prometheus/client_golang/prometheus"

var clicksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "loradex",
		Subsystem: "clicks",
		Name:      "recorded_total",
		Help:      "Recorded model selections by bucket",
	},
	[]string{"bucket"},
)

func init() {
	prometheus.MustRegister(clicksTotal)
}
