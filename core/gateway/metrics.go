package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// read outcomes
const (
	outcomeHit    = "hit"
	outcomeMiss   = "miss"
	outcomeShared = "shared"
	outcomeError  = "error"
	outcomeSkip   = "skip"
)

// Metrics holds the gateway collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	inflight      prometheus.Gauge
}

// NewMetrics creates the gateway collectors and registers them with reg (skipped when reg is nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "masomo",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Gateway operations by kind and outcome.",
		}, []string{"op", "outcome"}),
		invalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "masomo",
			Subsystem: "gateway",
			Name:      "invalidations_total",
			Help:      "Tag invalidations triggered by mutations.",
		}, []string{"tag"}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "masomo",
			Subsystem: "gateway",
			Name:      "inflight",
			Help:      "Backend fetches currently in flight.",
		}),
	}
}

func (m *Metrics) request(op, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) invalidated(tag Tag) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(string(tag)).Inc()
}

func (m *Metrics) fetchStarted() {
	if m != nil {
		m.inflight.Inc()
	}
}

func (m *Metrics) fetchDone() {
	if m != nil {
		m.inflight.Dec()
	}
}
