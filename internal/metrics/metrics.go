package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	extractRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calendar",
		Name:      "extract_requests_total",
		Help:      "Extraction requests by outcome",
	}, []string{"outcome"})

	extractedEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "calendar",
		Name:      "extracted_events_total",
		Help:      "Events returned by the model across all requests",
	})

	modelLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "calendar",
		Name:      "model_request_duration_seconds",
		Help:      "Time spent waiting on the generative model",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	})

	eventWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calendar",
		Name:      "event_writes_total",
		Help:      "Persisted event mutations by operation",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(extractRequests, extractedEvents, modelLatency, eventWrites)
}

// Extract outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeQuota      = "quota_exceeded"
	OutcomeBadInput   = "bad_input"
	OutcomeModelLimit = "model_rate_limited"
	OutcomeModelError = "model_error"
	OutcomeParseError = "parse_error"
)

func ObserveExtract(outcome string, events int) {
	extractRequests.WithLabelValues(outcome).Inc()
	if events > 0 {
		extractedEvents.Add(float64(events))
	}
}

func ObserveModel(d time.Duration) {
	modelLatency.Observe(d.Seconds())
}

func ObserveEventWrite(op string) {
	eventWrites.WithLabelValues(op).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
