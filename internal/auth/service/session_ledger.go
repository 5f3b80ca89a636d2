package service

import (
	"context"
	"errors"

	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
	"github.com/clipstream/clipstream-backend/internal/observability/metrics"
	"github.com/clipstream/clipstream-backend/internal/user/domain"
	"github.com/clipstream/clipstream-backend/internal/user/repository"
)

// SessionLedger manages the single refresh-token slot each account has. A
// login overwrites the slot, a rotation swaps it only if it still holds the
// presented token, and a logout empties it. One slot means one live session
// per account; a new login anywhere invalidates the previous device's refresh
// token.
type SessionLedger struct {
	users repository.UserRepository
}

func NewSessionLedger(users repository.UserRepository) *SessionLedger {
	return &SessionLedger{users: users}
}

func (sl *SessionLedger) Persist(ctx context.Context, id domain.ID, token string) error {
	err := sl.users.SetRefreshToken(ctx, id, token)
	if errors.Is(err, repository.ErrNotFound) {
		return commonerrors.ErrUserNotFound
	}
	if err != nil {
		return commonerrors.ErrDatabaseError.WithCause(err)
	}
	return nil
}

// Rotate swaps current for replacement atomically. Of two concurrent refresh
// calls presenting the same token, exactly one wins; the loser gets
// ErrRefreshTokenSuperseded.
func (sl *SessionLedger) Rotate(ctx context.Context, id domain.ID, current, replacement string) error {
	err := sl.users.SwapRefreshToken(ctx, id, current, replacement)
	switch {
	case errors.Is(err, repository.ErrTokenMismatch):
		metrics.RefreshTokensSuperseded.Inc()
		return ErrRefreshTokenSuperseded
	case errors.Is(err, repository.ErrNotFound):
		return commonerrors.ErrUserNotFound
	case err != nil:
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.RefreshTokensRotated.Inc()
	return nil
}

func (sl *SessionLedger) Revoke(ctx context.Context, id domain.ID) error {
	err := sl.users.ClearRefreshToken(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return commonerrors.ErrUserNotFound
	}
	if err != nil {
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	metrics.RefreshTokensRevoked.Inc()
	return nil
}

func (sl *SessionLedger) Current(ctx context.Context, id domain.ID) (string, error) {
	user, err := sl.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return "", commonerrors.ErrUserNotFound
	}
	if err != nil {
		return "", commonerrors.ErrDatabaseError.WithCause(err)
	}
	return user.RefreshToken, nil
}
