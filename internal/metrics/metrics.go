// Package metrics exposes Prometheus metrics for the bridge.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "casebridge"

var (
	webhooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhooks_total",
		Help:      "Webhook deliveries processed, by outcome",
	}, []string{"outcome"})

	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clio_submissions_total",
		Help:      "Clio submission attempts, by resource, strategy and status",
	}, []string{"resource", "strategy", "status"})

	submissionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "clio_submission_duration_seconds",
		Help:      "Latency of Clio submission attempts",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"resource"})

	practiceAreasTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "practice_areas_total",
		Help:      "Classified practice areas of accepted cases",
	}, []string{"area"})
)

// RecordWebhook counts a processed webhook delivery. Outcomes: created,
// rejected, failed, auth_expired, error.
func RecordWebhook(outcome string) {
	webhooksTotal.WithLabelValues(outcome).Inc()
}

// RecordSubmission counts one Clio submission attempt.
func RecordSubmission(resource, strategy, status string) {
	submissionsTotal.WithLabelValues(resource, strategy, status).Inc()
}

// ObserveSubmissionDuration records the latency of one submission attempt.
func ObserveSubmissionDuration(resource string, d time.Duration) {
	submissionDuration.WithLabelValues(resource).Observe(d.Seconds())
}

// RecordPracticeArea counts the classification outcome of an accepted case.
func RecordPracticeArea(area string) {
	practiceAreasTotal.WithLabelValues(area).Inc()
}
