package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payment_intents"

// Metrics owns a private registry so that several servers (tests) can live
// in one process.
type Metrics struct {
	registry *prometheus.Registry

	IntentsCreated   *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	WebhookEvents    *prometheus.CounterVec
	ProviderRequests *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	TokensIssued     *prometheus.CounterVec
}

func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		IntentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_created_total",
			Help:      "Payment intents created, by registration mode.",
		}, []string{"mode"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_transitions_total",
			Help:      "Applied payment intent status transitions.",
		}, []string{"from", "to"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Provider webhook events received, by event type and outcome.",
		}, []string{"event", "result"}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Calls to the payment provider, by operation and outcome.",
		}, []string{"op", "result"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of calls to the payment provider.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		TokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Signed assertions issued, by role and outcome.",
		}, []string{"role", "result"}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.IntentsCreated,
		m.Transitions,
		m.WebhookEvents,
		m.ProviderRequests,
		m.ProviderDuration,
		m.TokensIssued,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// The helpers below are nil-safe so components can be built without metrics.

func (m *Metrics) IntentCreated(mode string) {
	if m == nil {
		return
	}
	m.IntentsCreated.WithLabelValues(mode).Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) WebhookEvent(event, result string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(event, result).Inc()
}

func (m *Metrics) ProviderRequest(op, result string, seconds float64) {
	if m == nil {
		return
	}
	m.ProviderRequests.WithLabelValues(op, result).Inc()
	m.ProviderDuration.WithLabelValues(op).Observe(seconds)
}

func (m *Metrics) TokenIssued(role, result string) {
	if m == nil {
		return
	}
	m.TokensIssued.WithLabelValues(role, result).Inc()
}
