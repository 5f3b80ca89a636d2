package repository

import (
	"context"
	"errors"

	"github.com/clipstream/clipstream-backend/internal/user/domain"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")

	// ErrTokenMismatch is returned by SwapRefreshToken when the stored slot
	// no longer holds the expected token.
	ErrTokenMismatch = errors.New("refresh token mismatch")
)

// AccountPatch carries the mutable profile fields. Nil pointers mean
// "leave unchanged"; the repository writes only the fields that are set.
type AccountPatch struct {
	FullName      *string
	Email         *string
	AvatarURL     *string
	CoverImageURL *string
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id domain.ID) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	UpdateAccount(ctx context.Context, id domain.ID, patch AccountPatch) error
	UpdatePassword(ctx context.Context, id domain.ID, passwordHash string) error

	// SetRefreshToken overwrites the single refresh-token slot unconditionally
	// (login). SwapRefreshToken replaces it only if it still holds expected
	// (rotation); ClearRefreshToken empties it (logout).
	SetRefreshToken(ctx context.Context, id domain.ID, token string) error
	SwapRefreshToken(ctx context.Context, id domain.ID, expected, replacement string) error
	ClearRefreshToken(ctx context.Context, id domain.ID) error

	// RecordWatch moves videoID to the front of the user's watch history,
	// removing any earlier occurrence.
	RecordWatch(ctx context.Context, id domain.ID, videoID string) error
	WatchHistory(ctx context.Context, id domain.ID) ([]string, error)
}
