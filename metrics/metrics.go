package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Checkouts       *prometheus.CounterVec
	Reconciliations *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
	Swept           prometheus.Counter
	SideEffectFails *prometheus.CounterVec
	ManualReview    prometheus.Counter
}

// New registers the checkout metrics on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amexan",
			Subsystem: "checkout",
			Name:      "orders_total",
			Help:      "Checkouts by payment path and result.",
		}, []string{"path", "result"}),
		Reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amexan",
			Subsystem: "reconcile",
			Name:      "outcomes_total",
			Help:      "Reconciliation outcomes by provider.",
		}, []string{"provider", "outcome"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "amexan",
			Subsystem: "payments",
			Name:      "provider_request_duration_ms",
			Help:      "Payment provider status lookup latency in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 15000},
		}, []string{"provider"}),
		Swept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "amexan",
			Subsystem: "sweeper",
			Name:      "orders_deleted_total",
			Help:      "Provisional orders deleted after their window lapsed.",
		}),
		SideEffectFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amexan",
			Subsystem: "confirm",
			Name:      "side_effect_failures_total",
			Help:      "Confirmation side effects that failed and were only logged.",
		}, []string{"effect"}),
		ManualReview: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "amexan",
			Subsystem: "reconcile",
			Name:      "manual_review_total",
			Help:      "Paid orders claimed but left incomplete by a failure.",
		}),
	}
	reg.MustRegister(m.Checkouts, m.Reconciliations, m.ProviderLatency, m.Swept, m.SideEffectFails, m.ManualReview)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
