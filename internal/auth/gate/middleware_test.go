package gate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipstream/clipstream-backend/internal/auth/service"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/user/domain"
	"github.com/clipstream/clipstream-backend/internal/user/repository"
)

type mockVerifier struct {
	verifyFunc func(token string) (*service.AccessClaims, error)
}

func (m *mockVerifier) VerifyAccess(token string) (*service.AccessClaims, error) {
	return m.verifyFunc(token)
}

func validClaims() *service.AccessClaims {
	return &service.AccessClaims{
		UserID:   "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Example",
	}
}

// seededUsers returns a store holding the account behind validClaims.
func seededUsers(t *testing.T) *repository.MemoryUserRepository {
	t.Helper()

	users := repository.NewMemoryUserRepository()
	err := users.Create(context.Background(), &domain.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Example",
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return users
}

func protectedEcho(t *testing.T) (http.HandlerFunc, *Principal) {
	t.Helper()

	captured := &Principal{}
	handler := func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			t.Error("principal missing from context")
		}
		*captured = p
		w.WriteHeader(http.StatusOK)
	}
	return handler, captured
}

func TestGate_CookieFirst(t *testing.T) {
	verifier := &mockVerifier{verifyFunc: func(token string) (*service.AccessClaims, error) {
		if token != "cookie-token" {
			t.Errorf("expected cookie token to win, got %q", token)
		}
		return validClaims(), nil
	}}
	handler, captured := protectedEcho(t)
	g := New(verifier, seededUsers(t), logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")

	rec := httptest.NewRecorder()
	g.Protect(handler)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.UserID != "user-1" || captured.Username != "alice" {
		t.Errorf("principal not populated: %+v", captured)
	}
}

func TestGate_BearerFallback(t *testing.T) {
	verifier := &mockVerifier{verifyFunc: func(token string) (*service.AccessClaims, error) {
		if token != "header-token" {
			t.Errorf("expected header token, got %q", token)
		}
		return validClaims(), nil
	}}
	handler, _ := protectedEcho(t)
	g := New(verifier, seededUsers(t), logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer header-token")

	rec := httptest.NewRecorder()
	g.Protect(handler)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGate_AllFailuresLookTheSame(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(r *http.Request)
		verify  func(token string) (*service.AccessClaims, error)
	}{
		{
			name:    "no token at all",
			prepare: func(r *http.Request) {},
			verify: func(string) (*service.AccessClaims, error) {
				t.Error("verifier must not be called without a token")
				return nil, nil
			},
		},
		{
			name: "expired token",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "expired"})
			},
			verify: func(string) (*service.AccessClaims, error) {
				return nil, service.ErrTokenExpired
			},
		},
		{
			name: "malformed token",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer garbage")
			},
			verify: func(string) (*service.AccessClaims, error) {
				return nil, service.ErrTokenMalformed
			},
		},
		{
			name: "bad signature",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer forged")
			},
			verify: func(string) (*service.AccessClaims, error) {
				return nil, errors.New("signature is invalid")
			},
		},
		{
			name: "valid token for a deleted user",
			prepare: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "orphaned"})
			},
			verify: func(string) (*service.AccessClaims, error) {
				claims := validClaims()
				claims.UserID = "no-such-user"
				return claims, nil
			},
		},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := New(&mockVerifier{verifyFunc: tc.verify}, seededUsers(t), logger.NewNop())

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tc.prepare(req)

			rec := httptest.NewRecorder()
			g.Protect(func(http.ResponseWriter, *http.Request) {
				t.Error("handler must not run")
			})(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}

			var body struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			bodies = append(bodies, body.Message)
		})
	}

	for _, msg := range bodies {
		if msg != bodies[0] {
			t.Fatalf("rejection messages differ: %v", bodies)
		}
	}
}

func TestGate_PrincipalComesFromStorage(t *testing.T) {
	// The token carries stale identity fields; the principal must reflect
	// the stored account, not the claims.
	verifier := &mockVerifier{verifyFunc: func(string) (*service.AccessClaims, error) {
		claims := validClaims()
		claims.Username = "old-handle"
		claims.Email = "old@example.com"
		return claims, nil
	}}
	handler, captured := protectedEcho(t)
	g := New(verifier, seededUsers(t), logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "stale-claims"})

	rec := httptest.NewRecorder()
	g.Protect(handler)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Username != "alice" || captured.Email != "alice@example.com" {
		t.Errorf("principal carries token claims instead of the stored account: %+v", captured)
	}
}

func TestGate_OptionalPassesThrough(t *testing.T) {
	g := New(&mockVerifier{verifyFunc: func(string) (*service.AccessClaims, error) {
		return nil, service.ErrTokenInvalid
	}}, seededUsers(t), logger.NewNop())

	called := false
	handler := func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := PrincipalFromContext(r.Context()); ok {
			t.Error("invalid token must not attach a principal")
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer bad")

	g.Optional(handler)(httptest.NewRecorder(), req)
	if !called {
		t.Error("optional gate must not block the request")
	}
}

func TestGate_OptionalSkipsDeletedUser(t *testing.T) {
	g := New(&mockVerifier{verifyFunc: func(string) (*service.AccessClaims, error) {
		claims := validClaims()
		claims.UserID = "no-such-user"
		return claims, nil
	}}, seededUsers(t), logger.NewNop())

	called := false
	handler := func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := PrincipalFromContext(r.Context()); ok {
			t.Error("a token for a deleted user must not attach a principal")
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "orphaned"})

	g.Optional(handler)(httptest.NewRecorder(), req)
	if !called {
		t.Error("optional gate must not block the request")
	}
}

func TestGate_OptionalAttachesPrincipal(t *testing.T) {
	g := New(&mockVerifier{verifyFunc: func(string) (*service.AccessClaims, error) {
		return validClaims(), nil
	}}, seededUsers(t), logger.NewNop())

	handler := func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok || p.UserID != "user-1" {
			t.Errorf("expected principal, got %+v ok=%v", p, ok)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good"})

	g.Optional(handler)(httptest.NewRecorder(), req)
}
