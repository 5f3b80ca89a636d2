package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/clipstream/clipstream-backend/internal/common/clock"
	"github.com/clipstream/clipstream-backend/internal/common/constants"
	"github.com/clipstream/clipstream-backend/internal/common/crypto"
	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/realtime"
	"github.com/clipstream/clipstream-backend/internal/tweet/domain"
	"github.com/clipstream/clipstream-backend/internal/tweet/repository"
)

var errValidation = commonerrors.NewDomainError(
	"VALIDATION_FAILED",
	commonerrors.CategoryValidation,
	http.StatusBadRequest,
	"request validation failed",
)

type TweetService struct {
	tweets repository.TweetRepository
	hub    *realtime.Hub
	idGen  crypto.IDGenerator
	clock  clock.Clock
	log    *logger.Logger
}

func NewTweetService(
	tweets repository.TweetRepository,
	hub *realtime.Hub,
	idGen crypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *TweetService {
	return &TweetService{tweets: tweets, hub: hub, idGen: idGen, clock: clk, log: log}
}

func (s *TweetService) Create(ctx context.Context, ownerID, content string) (*domain.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, commonerrors.WithDetails(errValidation, "content is required")
	}
	if utf8.RuneCountInString(content) > constants.TweetMaxLength {
		return nil, commonerrors.WithDetails(errValidation, "content must be at most 280 characters")
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}

	now := s.clock.Now().UTC()
	tweet := &domain.Tweet{
		ID:        id,
		OwnerID:   ownerID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tweets.Create(ctx, tweet); err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.hub.Publish(realtime.Event{Type: "tweet.created", Payload: tweet})

	s.log.WithFields(ctx, logger.Fields{
		"action":   "create_tweet",
		"tweet_id": tweet.ID,
	}).Debug("tweet created")

	return tweet, nil
}

func (s *TweetService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Tweet, error) {
	tweets, err := s.tweets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	if tweets == nil {
		tweets = []domain.Tweet{}
	}
	return tweets, nil
}

func (s *TweetService) Update(ctx context.Context, id, callerID, content string) (*domain.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, commonerrors.WithDetails(errValidation, "content is required")
	}
	if utf8.RuneCountInString(content) > constants.TweetMaxLength {
		return nil, commonerrors.WithDetails(errValidation, "content must be at most 280 characters")
	}

	if _, err := s.requireOwned(ctx, id, callerID); err != nil {
		return nil, err
	}

	if err := s.tweets.UpdateContent(ctx, id, content); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, commonerrors.ErrTweetNotFound
		}
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	tweet, err := s.tweets.FindByID(ctx, id)
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return tweet, nil
}

func (s *TweetService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.requireOwned(ctx, id, callerID); err != nil {
		return err
	}

	if err := s.tweets.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return commonerrors.ErrTweetNotFound
		}
		return commonerrors.ErrDatabaseError.WithCause(err)
	}
	return nil
}

func (s *TweetService) requireOwned(ctx context.Context, id, callerID string) (*domain.Tweet, error) {
	tweet, err := s.tweets.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, commonerrors.ErrTweetNotFound
	}
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	if tweet.OwnerID != callerID {
		return nil, commonerrors.ErrNotOwner
	}
	return tweet, nil
}
