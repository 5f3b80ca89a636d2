package http

import (
	"net/http"

	"github.com/clipstream/clipstream-backend/internal/common/constants"
	"github.com/clipstream/clipstream-backend/internal/common/httpmetrics"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
)

// BuildBaseHandler wraps the application mux with the shared middleware
// chain: security headers, panic recovery, trace IDs, body limits and
// Prometheus request metrics. Upload routes keep their multipart limits.
func BuildBaseHandler(log *logger.Logger, cors CORSPolicy, handler http.Handler) http.Handler {
	metricsCollector := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(
		constants.DefaultMaxRequestSize,
		"/api/v1/videos",
		"/api/v1/users/register",
		"/api/v1/users/avatar",
		"/api/v1/users/cover-image",
	)
	corsMiddleware := CORSMiddleware(cors, log)

	return SecurityHeadersMiddleware(
		corsMiddleware(
			recovery(
				TraceIDMiddleware(
					maxRequestSize(
						metricsCollector.Wrap(handler),
					),
				),
			),
		),
	)
}
