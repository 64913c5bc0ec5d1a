package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestMetrics holds the Prometheus metrics exposed in watch mode.
type IngestMetrics struct {
	FilesTotal     *prometheus.CounterVec
	RowsUpserted   prometheus.Counter
	RowsDropped    prometheus.Counter
	MissingLoggers prometheus.Gauge
	RunDuration    prometheus.Histogram
	RunsTotal      *prometheus.CounterVec
}

// New initializes and registers the ingest metrics.
func New() *IngestMetrics {
	return &IngestMetrics{
		FilesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tms_ingest",
			Name:      "files_total",
			Help:      "Processed data files by outcome.",
		}, []string{"result"}), // result: ok, malformed_filename, empty_file, structural_error, timestamp_error, all_rows_dropped
		RowsUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "tms_ingest",
			Name:      "rows_upserted_total",
			Help:      "Measurement rows written to the database.",
		}),
		RowsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "tms_ingest",
			Name:      "rows_dropped_total",
			Help:      "Rows lost to field-level decode errors.",
		}),
		MissingLoggers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "tms_ingest",
			Name:      "missing_loggers",
			Help:      "Expected loggers that contributed zero rows in the last run.",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tms_ingest",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one discovery+parse+merge+upsert run.",
			Buckets:   prometheus.DefBuckets,
		}),
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tms_ingest",
			Name:      "runs_total",
			Help:      "Completed ingest runs by status.",
		}, []string{"status"}), // status: success, error
	}
}
