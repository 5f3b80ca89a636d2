package http

import (
	"net/http"
	"strings"

	"github.com/clipstream/clipstream-backend/internal/common/constants"
)

// MaxRequestSizeMiddleware caps JSON request bodies. Multipart upload routes
// carry their own, much larger limit and are skipped here.
func MaxRequestSizeMiddleware(maxBytes int64, skipPrefixes ...string) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = constants.DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range skipPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			if r.ContentLength > maxBytes {
				WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
