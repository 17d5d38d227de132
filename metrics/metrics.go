// Package metrics provides Prometheus instrumentation for matchmaking and chat.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path", "status"},
	)

	// MatchRequestsTotal counts match requests by outcome.
	MatchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Total matchmaking requests",
		},
		[]string{"outcome"},
	)

	// MatchCandidates tracks how many candidates survive scoring per request.
	MatchCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_candidates",
			Help:    "Number of ranked candidates returned per match request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// SocketConnectionsActive tracks live chat sockets.
	SocketConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_socket_connections_active",
			Help: "Number of authenticated chat socket connections",
		},
	)

	// ChatEventsTotal counts chat events by name and outcome.
	ChatEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_events_total",
			Help: "Chat socket events processed",
		},
		[]string{"event", "outcome"},
	)

	// MessagesStoredTotal counts persisted chat messages by type.
	MessagesStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_stored_total",
			Help: "Chat messages appended to the conversation log",
		},
		[]string{"type"},
	)

	// ConversationRolloversTotal counts new documents started because the active one was full.
	ConversationRolloversTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_conversation_rollovers_total",
			Help: "Conversation documents started after the previous one filled",
		},
	)

	// EncryptionFallbacksTotal counts payloads sent or read as plaintext after a crypto failure.
	EncryptionFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_encryption_fallbacks_total",
			Help: "Content transforms that fell back to plaintext",
		},
		[]string{"direction"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
}

// RecordChatEvent records the outcome of one socket event.
func RecordChatEvent(event, outcome string) {
	ChatEventsTotal.WithLabelValues(event, outcome).Inc()
}
