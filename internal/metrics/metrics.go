// README: Prometheus collectors for chat, actions, payments and outbound calls.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yourhelpa_chat_intents_total",
		Help: "Chat messages by the dispatcher rule that answered them.",
	}, []string{"intent"})

	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yourhelpa_chat_actions_total",
		Help: "Processed action tags by type and outcome.",
	}, []string{"type", "outcome"})

	ExternalCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yourhelpa_external_call_duration_seconds",
		Help:    "Latency of calls to external services.",
		Buckets: prometheus.DefBuckets,
	}, []string{"target", "outcome"})

	PaymentTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yourhelpa_payment_transitions_total",
		Help: "Escrow state transitions.",
	}, []string{"from", "to"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yourhelpa_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Outcome maps an error to the label used by the outcome dimensions.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
