package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clipstream/clipstream-backend/internal/tweet/domain"
)

type MemoryTweetRepository struct {
	mu     sync.RWMutex
	tweets map[string]*domain.Tweet
}

func NewMemoryTweetRepository() *MemoryTweetRepository {
	return &MemoryTweetRepository{tweets: make(map[string]*domain.Tweet)}
}

func (r *MemoryTweetRepository) Create(_ context.Context, tweet *domain.Tweet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := *tweet
	r.tweets[t.ID] = &t
	return nil
}

func (r *MemoryTweetRepository) FindByID(_ context.Context, id string) (*domain.Tweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tweets[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *MemoryTweetRepository) ListByOwner(_ context.Context, ownerID string) ([]domain.Tweet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tweets []domain.Tweet
	for _, t := range r.tweets {
		if t.OwnerID == ownerID {
			tweets = append(tweets, *t)
		}
	}
	sort.Slice(tweets, func(i, j int) bool {
		return tweets[i].CreatedAt.After(tweets[j].CreatedAt)
	})
	return tweets, nil
}

func (r *MemoryTweetRepository) UpdateContent(_ context.Context, id, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tweets[id]
	if !ok {
		return ErrNotFound
	}
	t.Content = content
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryTweetRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tweets[id]; !ok {
		return ErrNotFound
	}
	delete(r.tweets, id)
	return nil
}
