package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of calls to the replacement service, by endpoint
	ReplacementRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "replacement_api_request_latency_seconds",
		Help:    "Latency of calls to the replacement service",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// Calls to the replacement service by endpoint and result (ok, error)
	ReplacementRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "replacement_api_requests_total",
		Help: "Total number of calls to the replacement service",
	}, []string{"endpoint", "result"})

	// Per-item submission outcomes (scored, skipped_no_selection, skipped_unresolved, failed)
	ScoreOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "game_score_outcomes_total",
		Help: "Per-item outcomes of round submissions",
	}, []string{"status"})

	// Feedback dispatch results (sent, failed, dropped)
	FeedbackDispatch = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "game_feedback_dispatch_total",
		Help: "Feedback log entries handled by the detached dispatcher",
	}, []string{"result"})
)

func Init() {
	prometheus.MustRegister(
		ReplacementRequestLatency,
		ReplacementRequests,
		ScoreOutcomes,
		FeedbackDispatch,
	)
}
