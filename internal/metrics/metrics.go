package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Crawl metrics
	PagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_pages_total",
			Help: "Listing pages attempted, labeled by outcome.",
		},
		[]string{"status"},
	)

	RecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_records_total",
			Help: "Listing records retained across all runs.",
		},
	)

	DuplicatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobscout_duplicate_urls_total",
			Help: "Listing elements skipped because their URL was already seen in the run.",
		},
	)

	DetailFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_detail_fetch_total",
			Help: "Detail page enrichments, labeled by result (ok, empty, error).",
		},
		[]string{"result"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobscout_fetch_duration_seconds",
			Help:    "Duration of page fetches in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// Run metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobscout_runs_total",
			Help: "Finished runs, labeled by final status.",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobscout_run_duration_seconds",
			Help:    "Wall-clock duration of a crawl run.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	ActiveRuns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobscout_active_runs",
			Help: "Runs currently executing.",
		},
	)

	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
