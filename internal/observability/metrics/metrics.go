package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConversationMetrics exposes counters/histograms for the chat loop.
type ConversationMetrics struct {
	turnsTotal     *prometheus.CounterVec
	qualifiedTotal prometheus.Counter
	notifyFailures prometheus.Counter
	turnLatency    *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "showroom",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Total conversation turns processed",
		}, []string{"status"}),
		qualifiedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "showroom",
			Subsystem: "conversation",
			Name:      "qualified_leads_total",
			Help:      "Total sessions that crossed the qualification threshold",
		}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "showroom",
			Subsystem: "conversation",
			Name:      "notify_failures_total",
			Help:      "Total failed qualified-lead notifications",
		}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "showroom",
			Subsystem: "conversation",
			Name:      "turn_latency_seconds",
			Help:      "End-to-end latency of one conversation turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.qualifiedTotal, m.notifyFailures, m.turnLatency)
	return m
}

func (m *ConversationMetrics) ObserveTurn(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(status).Inc()
	m.turnLatency.WithLabelValues(status).Observe(d.Seconds())
}

func (m *ConversationMetrics) IncQualified() {
	if m == nil {
		return
	}
	m.qualifiedTotal.Inc()
}

func (m *ConversationMetrics) IncNotifyFailure() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}
