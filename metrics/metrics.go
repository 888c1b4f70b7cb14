package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmgen_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webmgen_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webmgen_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Domain metrics
var (
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmgen_probes_total",
			Help: "Total number of media probes by outcome",
		},
		[]string{"outcome"},
	)

	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "webmgen_probe_duration_seconds",
			Help:    "Media probe duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	ScriptsRenderedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmgen_scripts_rendered_total",
			Help: "Total number of rendered encode scripts",
		},
		[]string{"surface", "kind"},
	)

	ClipboardCopiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webmgen_clipboard_copies_total",
			Help: "Total number of clipboard copies by result",
		},
		[]string{"result"},
	)
)

// Surfaces label where a script was rendered.
const (
	SurfaceCLI  = "cli"
	SurfaceTUI  = "tui"
	SurfaceHTTP = "http"
)

// RecordScript counts one rendered script.
func RecordScript(surface string, sample bool) {
	kind := "full"
	if sample {
		kind = "sample"
	}
	ScriptsRenderedTotal.WithLabelValues(surface, kind).Inc()
}

// RecordCopy counts one clipboard write.
func RecordCopy(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ClipboardCopiesTotal.WithLabelValues(result).Inc()
}
