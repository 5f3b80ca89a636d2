package http

import (
	"net/http"
	"runtime/debug"

	"github.com/clipstream/clipstream-backend/internal/common/logger"
)

// RecoveryMiddleware turns a handler panic into a 500 so one bad
// request cannot take the process down. http.ErrAbortHandler is
// re-raised untouched: media handlers use it when the client walks
// away mid-stream and the connection is already dead.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Criticalf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				WriteError(w, http.StatusInternalServerError, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
