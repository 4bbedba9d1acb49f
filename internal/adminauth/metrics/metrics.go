package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels. Failure reasons are internal detail and never reach clients.
const (
	OutcomeOK                = "ok"
	OutcomeMissingCookie     = "missing_cookie"
	OutcomeMalformedToken    = "malformed_token"
	OutcomeMalformedIdentity = "malformed_identity"
	OutcomeExpired           = "expired"
	OutcomeMismatch          = "mismatch"
	OutcomeForbidden         = "forbidden"
)

// Metrics holds Prometheus collectors for admin session verification.
type Metrics struct {
	Verifications *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Verifications: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "admintrail_session_verifications_total",
			Help: "Admin session verifications by operation and outcome",
		}, []string{"operation", "outcome"}),
	}
}

func (m *Metrics) IncVerification(operation, outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(operation, outcome).Inc()
}
