package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clipstream/clipstream-backend/internal/common/clock"
	"github.com/clipstream/clipstream-backend/internal/observability/metrics"
	"github.com/clipstream/clipstream-backend/internal/user/domain"
)

// AccessClaims carries enough identity for a request to be served without a
// database lookup. The refresh token deliberately carries only the subject:
// anything else would go stale over its ten-day lifetime.
type AccessClaims struct {
	UserID   string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the two token kinds with HS256. Access and
// refresh tokens use separate secrets, so one kind can never pass verification
// as the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         clock.Clock
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, clk clock.Clock) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		clock:         clk,
	}
}

func (ti *TokenIssuer) IssueAccessToken(user *domain.User) (string, error) {
	now := ti.clock.Now()
	claims := AccessClaims{
		UserID:   string(user.ID),
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.accessSecret)
	if err != nil {
		return "", err
	}

	metrics.AccessTokensIssued.Inc()
	return signed, nil
}

func (ti *TokenIssuer) IssueRefreshToken(userID domain.ID) (string, error) {
	now := ti.clock.Now()
	claims := RefreshClaims{
		UserID: string(userID),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.refreshTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.refreshSecret)
	if err != nil {
		return "", err
	}

	metrics.RefreshTokensIssued.Inc()
	return signed, nil
}

func (ti *TokenIssuer) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := ti.verify(tokenString, claims, ti.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (ti *TokenIssuer) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := ti.verify(tokenString, claims, ti.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (ti *TokenIssuer) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ti.clock.Now),
	)
	if err != nil {
		return mapTokenError(err)
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired.WithCause(err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed.WithCause(err)
	default:
		return ErrTokenInvalid.WithCause(err)
	}
}
