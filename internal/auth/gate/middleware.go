package gate

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/clipstream/clipstream-backend/internal/auth/service"
	commonhttp "github.com/clipstream/clipstream-backend/internal/common/http"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/observability/metrics"
	"github.com/clipstream/clipstream-backend/internal/user/domain"
	"github.com/clipstream/clipstream-backend/internal/user/repository"
)

const AccessTokenCookie = "accessToken"

// Principal is the verified identity attached to a request that passed the
// gate: the account resolved from storage, minus its credentials. A token
// outliving its account does not get through.
type Principal struct {
	UserID   domain.ID
	Username string
	Email    string
	FullName string
}

type principalKey struct{}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

type TokenVerifier interface {
	VerifyAccess(tokenString string) (*service.AccessClaims, error)
}

// UserResolver looks up the account behind a verified token subject.
type UserResolver interface {
	FindByID(ctx context.Context, id domain.ID) (*domain.User, error)
}

// Gate guards protected routes. It reads the access token cookie first and
// falls back to the Authorization bearer header, verifies the token, and
// resolves the subject against storage. Every failure mode collapses into the
// same 401 so a probing client learns nothing from the response.
type Gate struct {
	verifier TokenVerifier
	users    UserResolver
	log      *logger.Logger
}

func New(verifier TokenVerifier, users UserResolver, log *logger.Logger) *Gate {
	return &Gate{verifier: verifier, users: users, log: log}
}

func (g *Gate) Protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			g.reject(w, r, "missing token")
			return
		}

		claims, err := g.verifier.VerifyAccess(token)
		if err != nil {
			g.reject(w, r, err.Error())
			return
		}

		principal, err := g.resolve(r.Context(), claims)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				g.reject(w, r, "token subject no longer exists")
				return
			}
			g.log.Errorf("auth gate: failed to resolve user %s: %v", claims.UserID, err)
			commonhttp.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		next(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	}
}

// Optional attaches a principal when a valid token resolves to a live
// account, but lets the request through either way. Public listings use it so
// an owner browsing their own channel still sees drafts.
func (g *Gate) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			next(w, r)
			return
		}

		claims, err := g.verifier.VerifyAccess(token)
		if err != nil {
			next(w, r)
			return
		}

		principal, err := g.resolve(r.Context(), claims)
		if err != nil {
			next(w, r)
			return
		}
		next(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	}
}

// resolve maps verified claims to the stored account. The principal carries
// only public fields; the password hash and refresh token slot stay behind.
func (g *Gate) resolve(ctx context.Context, claims *service.AccessClaims) (Principal, error) {
	user, err := g.users.FindByID(ctx, domain.ID(claims.UserID))
	if err != nil {
		return Principal{}, err
	}
	return Principal{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	}, nil
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, reason string) {
	metrics.AuthGateRejections.Inc()

	if g.log.ShouldLog(logger.DEBUG) {
		g.log.WithFields(r.Context(), logger.Fields{
			"action": "auth_gate_reject",
			"path":   r.URL.Path,
		}).Debugf("request rejected: %s", reason)
	}

	commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized request")
}

func extractToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
