package service

import (
	"context"
	"errors"
	"strings"

	"github.com/clipstream/clipstream-backend/internal/common/constants"
	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/media"
	subsrepo "github.com/clipstream/clipstream-backend/internal/subscription/repository"
	"github.com/clipstream/clipstream-backend/internal/user/domain"
	"github.com/clipstream/clipstream-backend/internal/user/repository"
	videodomain "github.com/clipstream/clipstream-backend/internal/video/domain"
	videorepo "github.com/clipstream/clipstream-backend/internal/video/repository"
)

type UpdateAccountParams struct {
	FullName *string
	Email    *string
}

type UserService struct {
	users    repository.UserRepository
	subs     subsrepo.SubscriptionRepository
	videos   videorepo.VideoRepository
	uploader media.Uploader
	log      *logger.Logger
}

func NewUserService(
	users repository.UserRepository,
	subs subsrepo.SubscriptionRepository,
	videos videorepo.VideoRepository,
	uploader media.Uploader,
	log *logger.Logger,
) *UserService {
	return &UserService{
		users:    users,
		subs:     subs,
		videos:   videos,
		uploader: uploader,
		log:      log,
	}
}

func (s *UserService) Get(ctx context.Context, id domain.ID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, commonerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return user, nil
}

func (s *UserService) UpdateAccount(ctx context.Context, id domain.ID, params UpdateAccountParams) (*domain.User, error) {
	patch := repository.AccountPatch{}

	if params.FullName != nil {
		name := strings.TrimSpace(*params.FullName)
		if name == "" || len(name) > constants.FullnameMaxLength {
			return nil, commonerrors.WithDetails(errValidation, "fullname must be between 1 and 100 characters")
		}
		patch.FullName = &name
	}
	if params.Email != nil {
		email := domain.NormalizeHandle(*params.Email)
		if !strings.Contains(email, "@") {
			return nil, commonerrors.WithDetails(errValidation, "email must be a valid email address")
		}
		patch.Email = &email
	}
	if patch.FullName == nil && patch.Email == nil {
		return nil, commonerrors.WithDetails(errValidation, "nothing to update")
	}

	err := s.users.UpdateAccount(ctx, id, patch)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, commonerrors.ErrUserNotFound
	case errors.Is(err, repository.ErrEmailTaken):
		return nil, errEmailTaken
	case err != nil:
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	return s.Get(ctx, id)
}

// UpdateAvatar uploads the new image, points the account at it, and then
// removes the previous asset best-effort.
func (s *UserService) UpdateAvatar(ctx context.Context, id domain.ID, staged *media.StagedFile) (*domain.User, error) {
	return s.updateImage(ctx, id, staged, media.KindAvatar)
}

func (s *UserService) UpdateCoverImage(ctx context.Context, id domain.ID, staged *media.StagedFile) (*domain.User, error) {
	return s.updateImage(ctx, id, staged, media.KindCover)
}

func (s *UserService) updateImage(ctx context.Context, id domain.ID, staged *media.StagedFile, kind string) (*domain.User, error) {
	if staged == nil || staged.Size == 0 {
		return nil, commonerrors.WithDetails(errValidation, "image file is required")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	f, err := staged.Open()
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}
	defer f.Close()

	obj, err := s.uploader.Upload(ctx, kind, f, staged.Size, staged.ContentType)
	if err != nil {
		return nil, err
	}

	patch := repository.AccountPatch{}
	var oldURL string
	if kind == media.KindAvatar {
		patch.AvatarURL = &obj.URL
		oldURL = user.AvatarURL
	} else {
		patch.CoverImageURL = &obj.URL
		oldURL = user.CoverImageURL
	}

	if err := s.users.UpdateAccount(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, commonerrors.ErrUserNotFound
		}
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.removeByURL(ctx, oldURL, obj)

	s.log.WithFields(ctx, logger.Fields{
		"action":  "update_" + kind,
		"user_id": id,
	}).Info("profile image updated")

	return s.Get(ctx, id)
}

// removeByURL recovers the host key from a stored URL by stripping the public
// base the new object was served under, then deletes the old asset.
func (s *UserService) removeByURL(ctx context.Context, oldURL string, current media.Object) {
	if oldURL == "" {
		return
	}
	base := strings.TrimSuffix(current.URL, current.Key)
	key := strings.TrimPrefix(oldURL, base)
	if key == oldURL {
		return
	}
	if err := s.uploader.Remove(ctx, key); err != nil {
		s.log.Warnf("failed to remove old media asset %s: %v", key, err)
	}
}

// ChannelProfile aggregates the public account with its subscription counts
// and whether the viewer follows it.
func (s *UserService) ChannelProfile(ctx context.Context, username string, viewerID domain.ID) (*domain.ChannelProfile, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, commonerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	subscribers, err := s.subs.CountSubscribers(ctx, string(user.ID))
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	subscribedTo, err := s.subs.CountSubscribedTo(ctx, string(user.ID))
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	isSubscribed := false
	if viewerID != "" && viewerID != user.ID {
		isSubscribed, err = s.subs.Exists(ctx, string(viewerID), string(user.ID))
		if err != nil {
			return nil, commonerrors.ErrDatabaseError.WithCause(err)
		}
	}

	return &domain.ChannelProfile{
		PublicUser:        user.Public(),
		SubscriberCount:   subscribers,
		SubscribedToCount: subscribedTo,
		IsSubscribed:      isSubscribed,
	}, nil
}

// WatchHistory resolves the stored video ids into video records, most recent
// first. Videos deleted since they were watched drop out silently.
func (s *UserService) WatchHistory(ctx context.Context, id domain.ID) ([]videodomain.Video, error) {
	ids, err := s.users.WatchHistory(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, commonerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	if len(ids) == 0 {
		return []videodomain.Video{}, nil
	}

	videos, err := s.videos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	if videos == nil {
		videos = []videodomain.Video{}
	}
	return videos, nil
}
