package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Hostlink metrics collectors
var (
	// Claim lifecycle

	ClaimsIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostlink_claims_issued_total",
			Help: "Total number of claim codes issued",
		},
		[]string{"status"},
	)

	ClaimRedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostlink_claim_redemptions_total",
			Help: "Total number of claim redemption attempts",
		},
		[]string{"outcome"},
	)

	ClaimGenerationRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostlink_claim_generation_retries_total",
			Help: "Total number of code regenerations due to collision",
		},
	)

	// Host fleet

	HostsRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostlink_hosts_registered_total",
			Help: "Total number of hosts registered via claim redemption",
		},
	)

	HeartbeatsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostlink_heartbeats_total",
			Help: "Total number of host heartbeat calls",
		},
		[]string{"status"},
	)

	// HTTP

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostlink_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hostlink_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)
)

// Redemption outcome labels
const (
	OutcomeSuccess         = "success"
	OutcomeNotFound        = "not_found"
	OutcomeExpired         = "expired"
	OutcomeAlreadyRedeemed = "already_redeemed"
	OutcomeError           = "error"
)
