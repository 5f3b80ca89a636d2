package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/clipstream/clipstream-backend/internal/common/clock"
	"github.com/clipstream/clipstream-backend/internal/common/constants"
	"github.com/clipstream/clipstream-backend/internal/common/crypto"
	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/media"
	"github.com/clipstream/clipstream-backend/internal/realtime"
	userdomain "github.com/clipstream/clipstream-backend/internal/user/domain"
	userrepo "github.com/clipstream/clipstream-backend/internal/user/repository"
	"github.com/clipstream/clipstream-backend/internal/video/domain"
	"github.com/clipstream/clipstream-backend/internal/video/repository"
	"github.com/clipstream/clipstream-backend/internal/viewcount"
)

type PublishParams struct {
	Title       string
	Description string
	Duration    float64
}

type UpdateParams struct {
	Title       *string
	Description *string
}

type ListParams struct {
	OwnerID       string
	Query         string
	Page          int
	Limit         int
	SortBy        string
	SortAscending bool
}

type Page struct {
	Videos     []domain.Video `json:"videos"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

type VideoService struct {
	videos   repository.VideoRepository
	users    userrepo.UserRepository
	uploader media.Uploader
	views    viewcount.Counter
	hub      *realtime.Hub
	idGen    crypto.IDGenerator
	clock    clock.Clock
	log      *logger.Logger
}

func NewVideoService(
	videos repository.VideoRepository,
	users userrepo.UserRepository,
	uploader media.Uploader,
	views viewcount.Counter,
	hub *realtime.Hub,
	idGen crypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *VideoService {
	return &VideoService{
		videos:   videos,
		users:    users,
		uploader: uploader,
		views:    views,
		hub:      hub,
		idGen:    idGen,
		clock:    clk,
		log:      log,
	}
}

// Publish uploads the staged video and thumbnail to the media host and stores
// the video record. The video file goes first: if the thumbnail handoff fails,
// the video asset is removed again so the host holds no orphans.
func (s *VideoService) Publish(ctx context.Context, ownerID string, params PublishParams, videoFile, thumbnail *media.StagedFile) (*domain.Video, error) {
	if details := validatePublish(params, videoFile, thumbnail); len(details) > 0 {
		return nil, commonerrors.WithDetails(errValidation, details...)
	}

	videoObj, err := s.uploadStaged(ctx, media.KindVideo, videoFile)
	if err != nil {
		return nil, err
	}

	thumbObj, err := s.uploadStaged(ctx, media.KindThumbnail, thumbnail)
	if err != nil {
		if removeErr := s.uploader.Remove(ctx, videoObj.Key); removeErr != nil {
			s.log.Warnf("failed to remove orphaned video asset %s: %v", videoObj.Key, removeErr)
		}
		return nil, err
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}

	now := s.clock.Now().UTC()
	video := &domain.Video{
		ID:           id,
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(params.Title),
		Description:  params.Description,
		VideoURL:     videoObj.URL,
		VideoKey:     videoObj.Key,
		ThumbnailURL: thumbObj.URL,
		ThumbnailKey: thumbObj.Key,
		Duration:     params.Duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	s.hub.Publish(realtime.Event{Type: "video.published", Payload: video})

	s.log.WithFields(ctx, logger.Fields{
		"action":   "publish_video",
		"video_id": video.ID,
	}).Infof("video published: %s", video.Title)

	return video, nil
}

// Get returns a video. An unpublished video is visible only to its owner.
// When a viewer is set and is not the owner, the view is counted and the
// video lands at the front of the viewer's watch history.
func (s *VideoService) Get(ctx context.Context, id, viewerID string) (*domain.Video, error) {
	video, err := s.findVideo(ctx, id)
	if err != nil {
		return nil, err
	}

	if !video.IsPublished && video.OwnerID != viewerID {
		return nil, commonerrors.ErrVideoNotFound
	}

	if viewerID != "" && viewerID != video.OwnerID {
		if err := s.views.Record(ctx, id); err != nil {
			s.log.Warnf("failed to record view for %s: %v", id, err)
		}
		if err := s.users.RecordWatch(ctx, userdomain.ID(viewerID), id); err != nil && !errors.Is(err, userrepo.ErrNotFound) {
			s.log.Warnf("failed to record watch history for %s: %v", viewerID, err)
		}
	}

	return video, nil
}

func (s *VideoService) List(ctx context.Context, viewerID string, params ListParams) (*Page, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = constants.DefaultPageLimit
	}
	if params.Limit > constants.MaxPageLimit {
		params.Limit = constants.MaxPageLimit
	}

	// Owners browsing their own channel see drafts too.
	onlyPublished := params.OwnerID == "" || params.OwnerID != viewerID

	videos, total, err := s.videos.List(ctx, repository.ListParams{
		OwnerID:       params.OwnerID,
		Query:         params.Query,
		Page:          params.Page,
		Limit:         params.Limit,
		SortBy:        params.SortBy,
		SortAscending: params.SortAscending,
		OnlyPublished: onlyPublished,
	})
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	totalPages := total / params.Limit
	if total%params.Limit != 0 {
		totalPages++
	}

	return &Page{
		Videos:     videos,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *VideoService) Update(ctx context.Context, id, callerID string, params UpdateParams, thumbnail *media.StagedFile) (*domain.Video, error) {
	video, err := s.requireOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	patch := repository.VideoPatch{}
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" || utf8.RuneCountInString(title) > constants.TitleMaxLength {
			return nil, commonerrors.WithDetails(errValidation, "title must be between 1 and 150 characters")
		}
		patch.Title = &title
	}
	if params.Description != nil {
		if utf8.RuneCountInString(*params.Description) > constants.DescriptionMaxLength {
			return nil, commonerrors.WithDetails(errValidation, "description must be at most 5000 characters")
		}
		patch.Description = params.Description
	}

	if thumbnail != nil {
		obj, err := s.uploadStaged(ctx, media.KindThumbnail, thumbnail)
		if err != nil {
			return nil, err
		}
		patch.ThumbnailURL = &obj.URL
		patch.ThumbnailKey = &obj.Key

		if video.ThumbnailKey != "" {
			if err := s.uploader.Remove(ctx, video.ThumbnailKey); err != nil {
				s.log.Warnf("failed to remove old thumbnail %s: %v", video.ThumbnailKey, err)
			}
		}
	}

	if err := s.videos.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, commonerrors.ErrVideoNotFound
		}
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}

	return s.findVideo(ctx, id)
}

// Delete removes the record first, then the media assets best-effort: a
// dangling file on the host beats a playable video with no record.
func (s *VideoService) Delete(ctx context.Context, id, callerID string) error {
	video, err := s.requireOwned(ctx, id, callerID)
	if err != nil {
		return err
	}

	if err := s.videos.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return commonerrors.ErrVideoNotFound
		}
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	for _, key := range []string{video.VideoKey, video.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.uploader.Remove(ctx, key); err != nil {
			s.log.Warnf("failed to remove media asset %s: %v", key, err)
		}
	}

	s.hub.Publish(realtime.Event{Type: "video.deleted", Payload: map[string]string{"id": id}})

	s.log.WithFields(ctx, logger.Fields{
		"action":   "delete_video",
		"video_id": id,
	}).Info("video deleted")

	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, id, callerID string) (bool, error) {
	if _, err := s.requireOwned(ctx, id, callerID); err != nil {
		return false, err
	}

	published, err := s.videos.TogglePublish(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, commonerrors.ErrVideoNotFound
		}
		return false, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if published {
		if video, err := s.findVideo(ctx, id); err == nil {
			s.hub.Publish(realtime.Event{Type: "video.published", Payload: video})
		}
	}

	return published, nil
}

func (s *VideoService) findVideo(ctx context.Context, id string) (*domain.Video, error) {
	video, err := s.videos.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, commonerrors.ErrVideoNotFound
	}
	if err != nil {
		return nil, commonerrors.ErrDatabaseError.WithCause(err)
	}
	return video, nil
}

func (s *VideoService) requireOwned(ctx context.Context, id, callerID string) (*domain.Video, error) {
	video, err := s.findVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.OwnerID != callerID {
		return nil, commonerrors.ErrNotOwner
	}
	return video, nil
}

func (s *VideoService) uploadStaged(ctx context.Context, kind string, staged *media.StagedFile) (media.Object, error) {
	f, err := staged.Open()
	if err != nil {
		return media.Object{}, commonerrors.ErrInternalError.WithCause(err)
	}
	defer f.Close()

	return s.uploader.Upload(ctx, kind, f, staged.Size, staged.ContentType)
}
