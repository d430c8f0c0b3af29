package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hamed0406/ruok/internal/domain"
)

const namespace = "ruok"

// Metrics holds the collectors for probes, transitions and notifications.
// A nil *Metrics records nothing.
type Metrics struct {
	Probes        *prometheus.CounterVec
	ProbeLatency  *prometheus.HistogramVec
	Transitions   *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	Dropped       *prometheus.CounterVec
	ServiceUp     *prometheus.GaugeVec
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in
// tests to avoid clashing with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Probes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Completed probes by observed state.",
		}, []string{"service", "state"}),
		ProbeLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_latency_seconds",
			Help:      "Probe round trip time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Status changes by new state.",
		}, []string{"service", "state"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Channel sends by outcome.",
		}, []string{"channel", "outcome"}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_dropped_total",
			Help:      "Scheduled checks dropped because the checker queue was full.",
		}, []string{"service"}),
		ServiceUp: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_up",
			Help:      "1 when the last stored state is up, 0 when down.",
		}, []string{"service"}),
	}
}

// ObserveProbe records one completed probe.
func (m *Metrics) ObserveProbe(service string, state domain.State, latencyMS float64) {
	if m == nil {
		return
	}
	m.Probes.WithLabelValues(service, string(state)).Inc()
	m.ProbeLatency.WithLabelValues(service).Observe(latencyMS / 1000)
}

// ObserveTransition records a status change and updates the up gauge.
func (m *Metrics) ObserveTransition(service string, state domain.State) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(service, string(state)).Inc()
	m.SetState(service, state)
}

func (m *Metrics) SetState(service string, state domain.State) {
	if m == nil {
		return
	}
	v := 0.0
	if state == domain.Up {
		v = 1
	}
	m.ServiceUp.WithLabelValues(service).Set(v)
}

func (m *Metrics) ObserveSend(channel string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Notifications.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) ObserveDrop(service string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(service).Inc()
}
