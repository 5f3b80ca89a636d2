package repository

import (
	"context"
	"errors"

	"github.com/clipstream/clipstream-backend/internal/subscription/domain"
)

var (
	ErrNotFound      = errors.New("subscription not found")
	ErrAlreadyExists = errors.New("subscription already exists")
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID string) error
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)

	CountSubscribers(ctx context.Context, channelID string) (int, error)
	CountSubscribedTo(ctx context.Context, subscriberID string) (int, error)

	// ListSubscribers returns subscriber account ids for a channel;
	// ListSubscribedTo returns channel account ids a subscriber follows.
	ListSubscribers(ctx context.Context, channelID string) ([]string, error)
	ListSubscribedTo(ctx context.Context, subscriberID string) ([]string, error)
}
