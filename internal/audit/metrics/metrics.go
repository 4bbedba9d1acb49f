package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the audit ledger.
type Metrics struct {
	Appends   *prometheus.CounterVec
	Evictions prometheus.Counter
	Size      prometheus.Gauge
	Queries   prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Appends: f.NewCounterVec(prometheus.CounterOpts{
			Name: "admintrail_audit_appends_total",
			Help: "Audit entries appended, by severity",
		}, []string{"severity"}),
		Evictions: f.NewCounter(prometheus.CounterOpts{
			Name: "admintrail_audit_evictions_total",
			Help: "Audit entries evicted from the head of the ledger at capacity",
		}),
		Size: f.NewGauge(prometheus.GaugeOpts{
			Name: "admintrail_audit_ledger_size",
			Help: "Current number of entries held by the audit ledger",
		}),
		Queries: f.NewCounter(prometheus.CounterOpts{
			Name: "admintrail_audit_queries_total",
			Help: "Audit ledger queries served",
		}),
	}
}

func (m *Metrics) ObserveAppend(severity string, evicted bool, size int) {
	if m == nil {
		return
	}
	m.Appends.WithLabelValues(severity).Inc()
	if evicted {
		m.Evictions.Inc()
	}
	m.Size.Set(float64(size))
}

func (m *Metrics) IncQuery() {
	if m == nil {
		return
	}
	m.Queries.Inc()
}
