package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordergw_auth_attempts_total",
			Help: "Authentication attempts by result and failure reason",
		},
		[]string{"result", "reason"}, // success|failure , ""|missing_header|invalid_key|ip_blocked
	)

	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordergw_rate_limit_rejected_total",
			Help: "Requests rejected by a rate limiter, by scope",
		},
		[]string{"scope"}, // global|write
	)

	EntitiesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ordergw_entities_created_total",
			Help: "Entities created by type",
		},
		[]string{"entity"}, // customer|product|order
	)
)

var registerOnce sync.Once

func MustRegister(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(
			AuthAttemptsTotal,
			RateLimitRejectedTotal,
			EntitiesCreatedTotal,
		)
	})
}
