package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/clipstream/clipstream-backend/internal/common/clock"
	"github.com/clipstream/clipstream-backend/internal/common/crypto"
	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/subscription/domain"
	"github.com/clipstream/clipstream-backend/internal/subscription/repository"
	userdomain "github.com/clipstream/clipstream-backend/internal/user/domain"
	userrepo "github.com/clipstream/clipstream-backend/internal/user/repository"
)

var ErrSelfSubscription = commonerrors.NewDomainError(
	"SELF_SUBSCRIPTION",
	commonerrors.CategoryValidation,
	http.StatusBadRequest,
	"cannot subscribe to your own channel",
)

type SubscriptionService struct {
	subs  repository.SubscriptionRepository
	users userrepo.UserRepository
	idGen crypto.IDGenerator
	clock clock.Clock
	log   *logger.Logger
}

func NewSubscriptionService(
	subs repository.SubscriptionRepository,
	users userrepo.UserRepository,
	idGen crypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *SubscriptionService {
	return &SubscriptionService{subs: subs, users: users, idGen: idGen, clock: clk, log: log}
}

// Toggle subscribes the caller to the channel, or unsubscribes if a
// subscription already exists. Returns the resulting state.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, ErrSelfSubscription
	}

	if _, err := s.users.FindByID(ctx, userdomain.ID(channelID)); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return false, commonerrors.ErrUserNotFound
		}
		return false, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.subs.Delete(ctx, subscriberID, channelID); err == nil {
		s.log.WithFields(ctx, logger.Fields{
			"action":     "unsubscribe",
			"channel_id": channelID,
		}).Debug("subscription removed")
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, commonerrors.ErrDatabaseError.WithCause(err)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return false, commonerrors.ErrInternalError.WithCause(err)
	}

	err = s.subs.Create(ctx, &domain.Subscription{
		ID:           id,
		SubscriberID: subscriberID,
		ChannelID:    channelID,
		CreatedAt:    s.clock.Now().UTC(),
	})
	// A concurrent toggle that created the row first leaves us subscribed,
	// which is the state the caller asked for.
	if err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
		return false, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"action":     "subscribe",
		"channel_id": channelID,
	}).Debug("subscription created")
	return true, nil
}

func (s *SubscriptionService) Subscribers(ctx context.Context, channelID string) ([]userdomain.PublicUser, error) {
	ids, err := s.subs.ListSubscribers(ctx, channelID)
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return s.resolve(ctx, ids)
}

func (s *SubscriptionService) SubscribedChannels(ctx context.Context, subscriberID string) ([]userdomain.PublicUser, error) {
	ids, err := s.subs.ListSubscribedTo(ctx, subscriberID)
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return s.resolve(ctx, ids)
}

func (s *SubscriptionService) resolve(ctx context.Context, ids []string) ([]userdomain.PublicUser, error) {
	out := make([]userdomain.PublicUser, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.FindByID(ctx, userdomain.ID(id))
		if errors.Is(err, userrepo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, commonerrors.ErrDatabaseError.WithCause(err)
		}
		out = append(out, u.Public())
	}
	return out, nil
}
