package dailyquiz

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailyquiz_generation_total",
		Help: "Remote generation attempts by result",
	}, []string{"result"})

	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dailyquiz_generation_duration_seconds",
		Help:    "Time spent waiting for the chat completion endpoint",
		Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 90},
	})

	questionsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dailyquiz_questions_dropped_total",
		Help: "Questions rejected by the validator",
	})

	batchesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailyquiz_batches_total",
		Help: "Daily batches served by source (cache, remote, fallback)",
	}, []string{"source"})

	answersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dailyquiz_answers_total",
		Help: "Recorded answers by correctness",
	}, []string{"correct"})
)

// generationResult maps a generation error onto a metric label
func generationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingAPIKey):
		return "missing_api_key"
	case errors.Is(err, ErrTransport):
		return "transport_error"
	case errors.Is(err, ErrNoContent), errors.Is(err, ErrNoJSONArray), errors.Is(err, ErrMalformedOutput):
		return "malformed_output"
	default:
		return "error"
	}
}
