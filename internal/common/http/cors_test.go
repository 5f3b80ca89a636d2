package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipstream/clipstream-backend/internal/common/logger"
)

func newTestPolicy(t *testing.T, origins ...string) CORSPolicy {
	t.Helper()

	policy, err := NewCORSPolicy(origins)
	if err != nil {
		t.Fatalf("NewCORSPolicy: %v", err)
	}
	return policy
}

func TestCORSPolicy_Allows(t *testing.T) {
	policy := newTestPolicy(t, "https://App.Example.com", " http://localhost:3000 ")

	cases := []struct {
		origin string
		want   bool
	}{
		{"https://app.example.com", true},
		{"HTTPS://APP.EXAMPLE.COM", true},
		{"http://localhost:3000", true},
		{"https://other.example.com", false},
		{"http://app.example.com", false},
		{"", false},
		{"not a url", false},
	}
	for _, tc := range cases {
		if got := policy.Allows(tc.origin); got != tc.want {
			t.Errorf("Allows(%q) = %v, want %v", tc.origin, got, tc.want)
		}
	}
}

func TestNewCORSPolicy_RejectsBareHost(t *testing.T) {
	if _, err := NewCORSPolicy([]string{"app.example.com"}); err == nil {
		t.Error("an origin without a scheme must be rejected")
	}
}

func TestCORSMiddleware(t *testing.T) {
	policy := newTestPolicy(t, "https://app.example.com")
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORSMiddleware(policy, logger.NewNop())(next)

	t.Run("allowed origin gets credentialed headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("Allow-Origin = %q", got)
		}
		if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("credentials header missing")
		}
	})

	t.Run("preflight is answered without hitting the handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/videos", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Error("preflight missing allowed methods")
		}
	})

	t.Run("unknown origin is blocked", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("same-origin request passes untouched", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("no CORS headers expected without an Origin")
		}
	})
}
