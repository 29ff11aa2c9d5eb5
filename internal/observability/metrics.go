package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "edu_verify_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// CodesIssued counts issue attempts by outcome
	// (issued, invalid_domain, bad_request, persistence_error, config_error).
	CodesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_verify_codes_issued_total",
			Help: "Number of verification code issue attempts",
		},
		[]string{"outcome"},
	)

	// CodesValidated counts validate attempts by outcome
	// (verified, rejected, missing_fields, persistence_error, config_error).
	CodesValidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_verify_codes_validated_total",
			Help: "Number of verification code validate attempts",
		},
		[]string{"outcome"},
	)

	// Deliveries counts email delivery attempts by channel and status
	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_verify_deliveries_total",
			Help: "Number of verification email delivery attempts",
		},
		[]string{"channel", "status"},
	)
)
