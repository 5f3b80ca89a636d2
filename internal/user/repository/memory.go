package repository

import (
	"context"
	"sync"
	"time"

	"github.com/clipstream/clipstream-backend/internal/user/domain"
)

// MemoryUserRepository keeps accounts in process memory. It backs the memory
// storage driver and the test suites; semantics mirror the Postgres
// implementation, including the compare-and-swap on the refresh-token slot.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[domain.ID]*domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[domain.ID]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.WatchHistory = append([]string(nil), u.WatchHistory...)
	return &c
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username {
			return ErrUsernameTaken
		}
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}

	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id domain.ID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	username = domain.NormalizeHandle(username)
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = domain.NormalizeHandle(email)
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) UpdateAccount(_ context.Context, id domain.ID, patch AccountPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}

	if patch.Email != nil {
		email := domain.NormalizeHandle(*patch.Email)
		for otherID, other := range r.users {
			if otherID != id && other.Email == email {
				return ErrEmailTaken
			}
		}
		u.Email = email
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	if patch.CoverImageURL != nil {
		u.CoverImageURL = *patch.CoverImageURL
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id domain.ID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryUserRepository) SetRefreshToken(_ context.Context, id domain.ID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.RefreshToken = token
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryUserRepository) SwapRefreshToken(_ context.Context, id domain.ID, expected, replacement string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.RefreshToken != expected {
		return ErrTokenMismatch
	}
	u.RefreshToken = replacement
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryUserRepository) ClearRefreshToken(_ context.Context, id domain.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.RefreshToken = ""
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryUserRepository) RecordWatch(_ context.Context, id domain.ID, videoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.WatchHistory = prependWatch(u.WatchHistory, videoID)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryUserRepository) WatchHistory(_ context.Context, id domain.ID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string(nil), u.WatchHistory...), nil
}
