package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(chatSendsTotal, sessionTransitionsTotal, voiceEventsTotal, contentRequestsTotal)
}

var (
	chatSendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textbook_chat_sends_total",
			Help: "Assistant sends by outcome (answered/fallback/debounced/discarded).",
		},
		[]string{"outcome"},
	)

	sessionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textbook_session_transitions_total",
			Help: "Session manager transitions by target phase and cause.",
		},
		[]string{"phase", "cause"},
	)

	voiceEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textbook_voice_events_total",
			Help: "Voice adapter events (start/result/error/end/stop/speak/unsupported).",
		},
		[]string{"event"},
	)

	contentRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textbook_content_requests_total",
			Help: "Personalize/translate requests by success.",
		},
		[]string{"op", "result"},
	)
)

func IncChatSend(outcome string) {
	chatSendsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncSessionTransition(phase, cause string) {
	sessionTransitionsTotal.WithLabelValues(norm(phase), norm(cause)).Inc()
}

func IncVoiceEvent(event string) {
	voiceEventsTotal.WithLabelValues(norm(event)).Inc()
}

func IncContentRequest(op, result string) {
	contentRequestsTotal.WithLabelValues(norm(op), norm(result)).Inc()
}
