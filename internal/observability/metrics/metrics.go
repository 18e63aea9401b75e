package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the chat widget flows.
type ChatMetrics struct {
	messagesTotal *prometheus.CounterVec
	dialogueTotal *prometheus.CounterVec
	leadsTotal    *prometheus.CounterVec
	replyLatency  prometheus.Histogram
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kas",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total classified chat messages by intent",
		}, []string{"intent"}),
		dialogueTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kas",
			Subsystem: "chat",
			Name:      "dialogue_steps_total",
			Help:      "Total quote dialogue turns by step",
		}, []string{"step"}),
		leadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kas",
			Subsystem: "chat",
			Name:      "leads_total",
			Help:      "Quote dialogues reaching the persistence step",
		}, []string{"status"}),
		replyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "kas",
			Subsystem: "chat",
			Name:      "reply_latency_seconds",
			Help:      "Latency of producing a chat reply",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.dialogueTotal, m.leadsTotal, m.replyLatency)
	return m
}

func (m *ChatMetrics) ObserveMessage(intent string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(intent).Inc()
}

func (m *ChatMetrics) ObserveDialogueStep(step string) {
	if m == nil {
		return
	}
	m.dialogueTotal.WithLabelValues(step).Inc()
}

func (m *ChatMetrics) ObserveLead(status string) {
	if m == nil {
		return
	}
	m.leadsTotal.WithLabelValues(status).Inc()
}

func (m *ChatMetrics) ObserveReplyLatency(seconds float64) {
	if m == nil {
		return
	}
	m.replyLatency.Observe(seconds)
}
