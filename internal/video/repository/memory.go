package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clipstream/clipstream-backend/internal/video/domain"
)

type MemoryVideoRepository struct {
	mu     sync.RWMutex
	videos map[string]*domain.Video
}

func NewMemoryVideoRepository() *MemoryVideoRepository {
	return &MemoryVideoRepository{videos: make(map[string]*domain.Video)}
}

func (r *MemoryVideoRepository) Create(_ context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := *video
	r.videos[v.ID] = &v
	return nil
}

func (r *MemoryVideoRepository) FindByID(_ context.Context, id string) (*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *MemoryVideoRepository) FindByIDs(_ context.Context, ids []string) ([]domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := r.videos[id]; ok {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *MemoryVideoRepository) List(_ context.Context, params ListParams) ([]domain.Video, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Video
	for _, v := range r.videos {
		if params.OwnerID != "" && v.OwnerID != params.OwnerID {
			continue
		}
		if params.OnlyPublished && !v.IsPublished {
			continue
		}
		if params.Query != "" {
			q := strings.ToLower(params.Query)
			if !strings.Contains(strings.ToLower(v.Title), q) &&
				!strings.Contains(strings.ToLower(v.Description), q) {
				continue
			}
		}
		matched = append(matched, *v)
	}

	sortVideos(matched, params.SortBy, params.SortAscending)

	total := len(matched)
	offset := (params.Page - 1) * params.Limit
	if offset >= total {
		return nil, total, nil
	}
	end := offset + params.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func sortVideos(videos []domain.Video, sortBy string, ascending bool) {
	less := func(a, b domain.Video) bool {
		switch sortBy {
		case "views":
			return a.Views < b.Views
		case "duration":
			return a.Duration < b.Duration
		case "title":
			return a.Title < b.Title
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(videos, func(i, j int) bool {
		if ascending {
			return less(videos[i], videos[j])
		}
		return less(videos[j], videos[i])
	})
}

func (r *MemoryVideoRepository) Update(_ context.Context, id string, patch VideoPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[id]
	if !ok {
		return ErrNotFound
	}

	if patch.Title != nil {
		v.Title = *patch.Title
	}
	if patch.Description != nil {
		v.Description = *patch.Description
	}
	if patch.ThumbnailURL != nil {
		v.ThumbnailURL = *patch.ThumbnailURL
	}
	if patch.ThumbnailKey != nil {
		v.ThumbnailKey = *patch.ThumbnailKey
	}
	v.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryVideoRepository) TogglePublish(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[id]
	if !ok {
		return false, ErrNotFound
	}
	v.IsPublished = !v.IsPublished
	v.UpdatedAt = time.Now().UTC()
	return v.IsPublished, nil
}

func (r *MemoryVideoRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.videos[id]; !ok {
		return ErrNotFound
	}
	delete(r.videos, id)
	return nil
}

func (r *MemoryVideoRepository) IncrementViews(_ context.Context, id string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[id]
	if !ok {
		return ErrNotFound
	}
	v.Views += delta
	return nil
}
