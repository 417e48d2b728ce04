// internal/common/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SuggestionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_suggestion_requests_total",
			Help: "Total number of AI suggestion calls per provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	SuggestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "wizard_suggestion_duration_seconds",
			Help: "Duration of AI suggestion calls in seconds",
		},
		[]string{"provider"},
	)

	SuggestionFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wizard_suggestion_fallbacks_total",
			Help: "Number of times the secondary provider was tried after the primary failed",
		},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_submissions_total",
			Help: "Total number of application submissions per backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "wizard_submission_duration_seconds",
			Help: "Duration of application submissions in seconds",
		},
		[]string{"backend"},
	)

	SubmissionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wizard_submissions_active",
			Help: "Number of submissions in flight",
		},
	)

	DraftOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_draft_operations_total",
			Help: "Draft persistence operations per backend, operation and outcome",
		},
		[]string{"backend", "op", "outcome"},
	)

	HookFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_hook_failures_total",
			Help: "After-submit hook failures",
		},
		[]string{"hook"},
	)
)

// Serve exposes the default registry on addr under /metrics. The caller owns shutdown.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
