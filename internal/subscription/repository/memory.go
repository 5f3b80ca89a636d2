package repository

import (
	"context"
	"sync"

	"github.com/clipstream/clipstream-backend/internal/subscription/domain"
)

type MemorySubscriptionRepository struct {
	mu   sync.RWMutex
	subs []domain.Subscription
}

func NewMemorySubscriptionRepository() *MemorySubscriptionRepository {
	return &MemorySubscriptionRepository{}
}

func (r *MemorySubscriptionRepository) Create(_ context.Context, sub *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.subs {
		if s.SubscriberID == sub.SubscriberID && s.ChannelID == sub.ChannelID {
			return ErrAlreadyExists
		}
	}
	r.subs = append(r.subs, *sub)
	return nil
}

func (r *MemorySubscriptionRepository) Delete(_ context.Context, subscriberID, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.subs {
		if s.SubscriberID == subscriberID && s.ChannelID == channelID {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemorySubscriptionRepository) Exists(_ context.Context, subscriberID, channelID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.subs {
		if s.SubscriberID == subscriberID && s.ChannelID == channelID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemorySubscriptionRepository) CountSubscribers(_ context.Context, channelID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.subs {
		if s.ChannelID == channelID {
			n++
		}
	}
	return n, nil
}

func (r *MemorySubscriptionRepository) CountSubscribedTo(_ context.Context, subscriberID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.subs {
		if s.SubscriberID == subscriberID {
			n++
		}
	}
	return n, nil
}

func (r *MemorySubscriptionRepository) ListSubscribers(_ context.Context, channelID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, s := range r.subs {
		if s.ChannelID == channelID {
			ids = append(ids, s.SubscriberID)
		}
	}
	return ids, nil
}

func (r *MemorySubscriptionRepository) ListSubscribedTo(_ context.Context, subscriberID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, s := range r.subs {
		if s.SubscriberID == subscriberID {
			ids = append(ids, s.ChannelID)
		}
	}
	return ids, nil
}
