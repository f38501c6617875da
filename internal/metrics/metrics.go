package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	TokensIssued           prometheus.Counter
	TokenVerifications     *prometheus.CounterVec
	RegistrationsCompleted prometheus.Counter
	RegistrationsRejected  *prometheus.CounterVec
	DirectoryRequests      prometheus.Histogram
}

// New creates all metrics and registers them with reg. Tests pass a fresh
// registry so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "eventsignup_login_tokens_issued_total",
			Help: "Total number of one-time login codes issued",
		}),
		TokenVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventsignup_login_token_verifications_total",
			Help: "Login token verification attempts by outcome",
		}, []string{"outcome"}),
		RegistrationsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "eventsignup_registrations_completed_total",
			Help: "Total number of completed registrations",
		}),
		RegistrationsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventsignup_registrations_rejected_total",
			Help: "Rejected registration attempts by reason",
		}, []string{"reason"}),
		DirectoryRequests: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventsignup_directory_request_seconds",
			Help:    "Latency of directory service calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
