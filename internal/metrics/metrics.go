package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// SnapshotFilename is the metrics dump the process stage leaves in the
// temp directory. The preview server serves live values on /metrics;
// the snapshot is how the short-lived process run makes its counters
// inspectable after it exits.
const SnapshotFilename = "metrics.prom"

// WriteSnapshot renders the default registry in the Prometheus text
// exposition format.
func WriteSnapshot(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}

// Pipeline job metrics
var (
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "darkroom_jobs_total",
			Help: "Total number of image jobs by terminal outcome",
		},
		[]string{"outcome"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "darkroom_job_duration_seconds",
			Help:    "Wall-clock duration of image jobs by outcome",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"},
	)

	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "darkroom_jobs_in_flight",
			Help: "Number of image jobs currently running",
		},
	)

	EncodeWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "darkroom_encode_workers",
			Help: "Size of the encode worker pool for the current build",
		},
	)
)

// Cache index metrics
var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "darkroom_cache_lookups_total",
			Help: "Total number of cache index lookups by result",
		},
		[]string{"result"},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "darkroom_cache_entries",
			Help: "Number of entries in the cache index",
		},
	)
)

// Outcome label values for JobsTotal and JobDuration.
const (
	OutcomeEncoded = "encoded"
	OutcomeReused  = "reused"
	OutcomeCopied  = "copied"
	OutcomeFailed  = "failed"
)

// Cache lookup result label values.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupStale = "stale"
)
