// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	KPIComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpi_computations_total",
			Help: "Total number of KPI computations by domain and outcome",
		},
		[]string{"domain", "status"},
	)

	KPIComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kpi_compute_duration_seconds",
			Help:    "Duration of a KPI request including record fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"domain"},
	)

	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_source_fetches_total",
			Help: "Total number of table fetches from the record store",
		},
		[]string{"table", "status"},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "record_source_fetch_duration_seconds",
			Help:    "Duration of paginated table fetches",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"table"},
	)

	SourceRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "record_source_records",
			Help: "Number of records in the last fetched snapshot",
		},
		[]string{"table"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_cache_lookups_total",
			Help: "Record snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	TaskOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_operations_total",
			Help: "Task workspace operations by kind and outcome",
		},
		[]string{"operation", "status"},
	)
)
