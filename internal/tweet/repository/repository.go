package repository

import (
	"context"
	"errors"

	"github.com/clipstream/clipstream-backend/internal/tweet/domain"
)

var ErrNotFound = errors.New("tweet not found")

type TweetRepository interface {
	Create(ctx context.Context, tweet *domain.Tweet) error
	FindByID(ctx context.Context, id string) (*domain.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}
