package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Turns           *prometheus.CounterVec
	FormatRetries   prometheus.Counter
	MemoryUsers     prometheus.Gauge
	UpstreamLatency prometheus.Histogram
}

// NewMetrics registers the instruments on reg. A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Handled turns by mode and outcome.",
		}, []string{"mode", "outcome"}),
		FormatRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "format_retries_total",
			Help:      "Corrective re-dispatches after malformed upstream output.",
		}),
		MemoryUsers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_users",
			Help:      "Number of user identifiers held in short-term memory.",
		}),
		UpstreamLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_ms",
			Help:      "Completion service round trip in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		}),
	}
}

func (m *Metrics) ObserveTurn(mode, outcome string) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) ObserveUpstreamLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamLatency.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) IncFormatRetry() {
	if m == nil {
		return
	}
	m.FormatRetries.Inc()
}

func (m *Metrics) SetMemoryUsers(n int) {
	if m == nil {
		return
	}
	m.MemoryUsers.Set(float64(n))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
