package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/clipstream/clipstream-backend/internal/user/domain"
)

func seedUser(t *testing.T, repo *MemoryUserRepository) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice Example",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return user
}

func TestMemoryUserRepository_UniqueConstraints(t *testing.T) {
	repo := NewMemoryUserRepository()
	seedUser(t, repo)

	err := repo.Create(context.Background(), &domain.User{ID: "user-2", Username: "alice", Email: "other@example.com"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	err = repo.Create(context.Background(), &domain.User{ID: "user-3", Username: "bob", Email: "alice@example.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestMemoryUserRepository_SwapRefreshToken(t *testing.T) {
	repo := NewMemoryUserRepository()
	user := seedUser(t, repo)

	if err := repo.SetRefreshToken(context.Background(), user.ID, "token-a"); err != nil {
		t.Fatalf("SetRefreshToken: %v", err)
	}

	if err := repo.SwapRefreshToken(context.Background(), user.ID, "token-a", "token-b"); err != nil {
		t.Fatalf("SwapRefreshToken: %v", err)
	}

	// The compare half: swapping against a stale expectation fails.
	if err := repo.SwapRefreshToken(context.Background(), user.ID, "token-a", "token-c"); !errors.Is(err, ErrTokenMismatch) {
		t.Errorf("expected ErrTokenMismatch, got %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), user.ID)
	if stored.RefreshToken != "token-b" {
		t.Errorf("slot holds %q, want token-b", stored.RefreshToken)
	}
}

func TestMemoryUserRepository_ConcurrentSwapSingleWinner(t *testing.T) {
	repo := NewMemoryUserRepository()
	user := seedUser(t, repo)
	repo.SetRefreshToken(context.Background(), user.ID, "current")

	const attempts = 16
	var wg sync.WaitGroup
	wins := make(chan int, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := repo.SwapRefreshToken(context.Background(), user.ID, "current", "replacement"); err == nil {
				wins <- i
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners int
	for range wins {
		winners++
	}
	if winners != 1 {
		t.Errorf("expected exactly one winning rotation, got %d", winners)
	}
}

func TestMemoryUserRepository_WatchHistoryOrdering(t *testing.T) {
	repo := NewMemoryUserRepository()
	user := seedUser(t, repo)

	for _, id := range []string{"v1", "v2", "v3", "v1"} {
		if err := repo.RecordWatch(context.Background(), user.ID, id); err != nil {
			t.Fatalf("RecordWatch(%s): %v", id, err)
		}
	}

	history, err := repo.WatchHistory(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("WatchHistory: %v", err)
	}

	want := []string{"v1", "v3", "v2"}
	if len(history) != len(want) {
		t.Fatalf("history %v, want %v", history, want)
	}
	for i := range want {
		if history[i] != want[i] {
			t.Fatalf("history %v, want %v", history, want)
		}
	}
}

func TestMemoryUserRepository_UpdateAccountPartial(t *testing.T) {
	repo := NewMemoryUserRepository()
	user := seedUser(t, repo)

	name := "Alice Updated"
	if err := repo.UpdateAccount(context.Background(), user.ID, AccountPatch{FullName: &name}); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), user.ID)
	if stored.FullName != "Alice Updated" {
		t.Errorf("fullname not updated: %s", stored.FullName)
	}
	if stored.Email != "alice@example.com" {
		t.Errorf("email must be untouched, got %s", stored.Email)
	}
}

func TestMemoryUserRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryUserRepository()
	user := seedUser(t, repo)

	got, _ := repo.FindByID(context.Background(), user.ID)
	got.FullName = "mutated"

	again, _ := repo.FindByID(context.Background(), user.ID)
	if again.FullName == "mutated" {
		t.Error("repository must not expose internal state")
	}
}

func TestMemoryUserRepository_NotFound(t *testing.T) {
	repo := NewMemoryUserRepository()

	if _, err := repo.FindByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := repo.ClearRefreshToken(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
