package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	archiveOperations  *prometheus.CounterVec
	archiveBytes       *prometheus.CounterVec
	archiveOpenRetries prometheus.Counter
	archiveDuration    *prometheus.HistogramVec
	rangeParses        *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registry: reg,

		archiveOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docutil_archive_operations_total",
				Help: "Total number of archive operations",
			},
			[]string{"operation", "status"},
		),

		archiveBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docutil_archive_bytes_total",
				Help: "Total bytes read and written by archive operations",
			},
			[]string{"operation", "direction"},
		),

		archiveOpenRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docutil_archive_open_retries_total",
				Help: "Total number of archive open attempts retried after a sharing violation",
			},
		),

		archiveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docutil_archive_duration_seconds",
				Help:    "Archive operation duration in seconds",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 30, 120},
			},
			[]string{"operation"},
		),

		rangeParses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docutil_range_parses_total",
				Help: "Total number of range specifications expanded",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(r.archiveOperations)
	reg.MustRegister(r.archiveBytes)
	reg.MustRegister(r.archiveOpenRetries)
	reg.MustRegister(r.archiveDuration)
	reg.MustRegister(r.rangeParses)

	return r
}

// RecordArchive records a finished compress or decompress call.
func (r *Registry) RecordArchive(operation string, err error, bytesIn, bytesOut int64, duration float64) {
	r.archiveOperations.WithLabelValues(operation, statusOf(err)).Inc()
	r.archiveDuration.WithLabelValues(operation).Observe(duration)
	if bytesIn > 0 {
		r.archiveBytes.WithLabelValues(operation, "in").Add(float64(bytesIn))
	}
	if bytesOut > 0 {
		r.archiveBytes.WithLabelValues(operation, "out").Add(float64(bytesOut))
	}
}

// RecordOpenRetry records one retried archive open.
func (r *Registry) RecordOpenRetry() {
	r.archiveOpenRetries.Inc()
}

// RecordRangeParse records a range expansion.
func (r *Registry) RecordRangeParse(err error) {
	r.rangeParses.WithLabelValues(statusOf(err)).Inc()
}

// WriteTextfile writes the current metric values in the text exposition
// format, for pickup by a node exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
