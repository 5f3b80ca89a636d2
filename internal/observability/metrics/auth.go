package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AccessTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "access_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)

	RefreshTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_issued_total",
			Help: "Total number of refresh tokens issued",
		},
	)

	RefreshTokensRotated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_rotated_total",
			Help: "Total number of refresh tokens exchanged for a new pair",
		},
	)

	RefreshTokensRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_revoked_total",
			Help: "Total number of refresh tokens revoked on logout",
		},
	)

	RefreshTokensSuperseded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refresh_tokens_superseded_total",
			Help: "Total number of refresh attempts rejected because the token was already rotated",
		},
	)

	AuthGateRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_gate_rejections_total",
			Help: "Total number of requests rejected by the auth middleware",
		},
	)
)
