package http

import "net/http"

// HealthHandler answers liveness checks. It deliberately checks no
// downstream dependency: a degraded bucket or cache surfaces through
// metrics and the circuit breaker, not by restarting the whole pod.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "clipstream-api"})
	}
}
