package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SubmitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_submit_latency_seconds",
		Help:    "Latency of the round submission endpoints",
		Buckets: prometheus.DefBuckets,
	})

	RoundsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "game_rounds_started_total",
		Help: "Game sessions started, by whether the round loaded",
	}, []string{"loaded"})

	SubmissionScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_submission_score",
		Help:    "Aggregate score shown to players",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)

func Init() {
	prometheus.MustRegister(SubmitDuration, RoundsStarted, SubmissionScore)
}
