package repository

import (
	"context"
	"errors"

	"github.com/clipstream/clipstream-backend/internal/video/domain"
)

var ErrNotFound = errors.New("video not found")

// VideoPatch carries the mutable fields of a video; nil means unchanged.
type VideoPatch struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
	ThumbnailKey *string
}

// ListParams narrows and pages a video listing. Page is 1-based.
type ListParams struct {
	OwnerID       string
	Query         string
	Page          int
	Limit         int
	SortBy        string
	SortAscending bool
	OnlyPublished bool
}

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	FindByID(ctx context.Context, id string) (*domain.Video, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Video, error)
	List(ctx context.Context, params ListParams) ([]domain.Video, int, error)

	Update(ctx context.Context, id string, patch VideoPatch) error
	TogglePublish(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error

	// IncrementViews adds delta to the stored view count. The view counter
	// batches increments, so delta is usually more than one.
	IncrementViews(ctx context.Context, id string, delta int64) error
}
