package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	scanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "loradex",
			Subsystem: "catalog",
			Name:      "scan_duration_seconds",
			Help:      "Duration of catalog scans in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	metadataErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loradex",
			Subsystem: "catalog",
			Name:      "metadata_errors_total",
			Help:      "Model files whose embedded metadata could not be read",
		},
	)

	dirScanErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loradex",
			Subsystem: "catalog",
			Name:      "directory_errors_total",
			Help:      "Sub-directories skipped during tree scans",
		},
	)

	watchEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loradex",
			Subsystem: "catalog",
			Name:      "watch_events_total",
			Help:      "Filesystem changes observed under the base path",
		},
	)
)

func init() {
	prometheus.MustRegister(scanDuration, metadataErrors, dirScanErrors, watchEvents)
}
