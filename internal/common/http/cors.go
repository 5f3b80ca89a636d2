package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/clipstream/clipstream-backend/internal/common/logger"
)

// CORSPolicy holds the set of origins allowed to call the API with
// credentials. An empty allow-list permits same-origin requests only.
type CORSPolicy struct {
	allowed map[string]struct{}
}

func NewCORSPolicy(origins []string) (CORSPolicy, error) {
	policy := CORSPolicy{allowed: make(map[string]struct{})}
	for _, origin := range origins {
		normalized, err := normalizeOrigin(origin)
		if err != nil {
			return CORSPolicy{}, fmt.Errorf("parse origin %q: %w", origin, err)
		}
		if normalized != "" {
			policy.allowed[normalized] = struct{}{}
		}
	}
	return policy, nil
}

func normalizeOrigin(origin string) (string, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return "", nil
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("origin must include scheme and host")
	}
	return fmt.Sprintf("%s://%s", strings.ToLower(parsed.Scheme), strings.ToLower(parsed.Host)), nil
}

// Allows reports whether origin is on the allow-list. The websocket upgrade
// uses it for its origin check.
func (p CORSPolicy) Allows(origin string) bool {
	return p.allows(origin)
}

func (p CORSPolicy) allows(origin string) bool {
	normalized, err := normalizeOrigin(origin)
	if err != nil || normalized == "" {
		return false
	}
	_, ok := p.allowed[normalized]
	return ok
}

// CORSMiddleware answers preflights and stamps credentialed CORS headers for
// allowed origins; cross-origin requests from anywhere else get a 403.
func CORSMiddleware(policy CORSPolicy, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !policy.allows(origin) {
				log.Warnf("blocked CORS origin=%s path=%s", origin, r.URL.Path)
				WriteError(w, http.StatusForbidden, "origin not allowed")
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Trace-ID")
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
