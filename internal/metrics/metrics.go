package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "uphill"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Live view metrics
var (
	LiveSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions_active",
			Help:      "Live view sessions currently held in memory",
		},
	)

	LiveSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_sessions_total",
			Help:      "Live view sessions opened, by page",
		},
		[]string{"page"},
	)

	LiveSessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_sessions_expired_total",
			Help:      "Live view sessions dropped after going idle",
		},
	)

	LiveEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_events_total",
			Help:      "DOM events received from browsers, by kind",
		},
		[]string{"kind"},
	)
)

// Filter and render metrics
var (
	FilterRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_recomputes_total",
			Help:      "Filter passes that re-rendered a view",
		},
		[]string{"dataset"},
	)

	FilterRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filter_render_duration_seconds",
			Help:      "Time to filter a dataset and render the primary view",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		},
		[]string{"dataset"},
	)

	FilterMatches = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filter_matches",
			Help:      "Records left after filtering",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"dataset"},
	)

	SuggestionsShown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autocomplete_suggestions_total",
			Help:      "Autocomplete lists shown, by outcome (results or empty)",
		},
		[]string{"dataset", "outcome"},
	)

	SuggestionsSelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autocomplete_selections_total",
			Help:      "Autocomplete suggestions committed",
		},
		[]string{"dataset"},
	)
)

// Site generator metrics
var (
	SiteBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "site_builds_total",
			Help:      "Static site builds, by status",
		},
		[]string{"status"},
	)

	ThumbnailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnails_total",
			Help:      "Trail-map thumbnails processed, by status",
		},
		[]string{"status"},
	)
)
