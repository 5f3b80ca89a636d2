package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clipstream/clipstream-backend/internal/common/clock"
	"github.com/clipstream/clipstream-backend/internal/common/crypto"
	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/realtime"
	"github.com/clipstream/clipstream-backend/internal/tweet/repository"
)

func newTestTweetService() *TweetService {
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewTweetService(
		repository.NewMemoryTweetRepository(),
		realtime.NewHub(logger.NewNop()),
		crypto.NewUUIDGenerator(),
		clk,
		logger.NewNop(),
	)
}

func TestTweetService_Create(t *testing.T) {
	svc := newTestTweetService()

	tweet, err := svc.Create(context.Background(), "owner-1", "  hello world  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tweet.Content != "hello world" {
		t.Errorf("content = %q, want trimmed %q", tweet.Content, "hello world")
	}
	if tweet.OwnerID != "owner-1" || tweet.ID == "" {
		t.Errorf("unexpected tweet: %+v", tweet)
	}
}

func TestTweetService_CreateValidation(t *testing.T) {
	svc := newTestTweetService()

	cases := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"over 280 characters", strings.Repeat("x", 281)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "owner-1", tc.content); err == nil {
				t.Error("expected validation failure")
			}
		})
	}

	// Exactly 280 characters is still fine.
	if _, err := svc.Create(context.Background(), "owner-1", strings.Repeat("x", 280)); err != nil {
		t.Errorf("280 characters should pass: %v", err)
	}
}

func TestTweetService_LengthCountsCharactersNotBytes(t *testing.T) {
	svc := newTestTweetService()

	// 280 multibyte characters, far more than 280 bytes.
	if _, err := svc.Create(context.Background(), "owner-1", strings.Repeat("ё", 280)); err != nil {
		t.Errorf("280 multibyte characters should pass: %v", err)
	}
	if _, err := svc.Create(context.Background(), "owner-1", strings.Repeat("ё", 281)); err == nil {
		t.Error("281 characters must fail regardless of encoding")
	}
}

func TestTweetService_ListByOwner(t *testing.T) {
	svc := newTestTweetService()

	if _, err := svc.Create(context.Background(), "owner-1", "first"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), "owner-2", "other"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tweets, err := svc.ListByOwner(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(tweets) != 1 || tweets[0].Content != "first" {
		t.Errorf("tweets = %+v, want only owner-1's tweet", tweets)
	}

	empty, err := svc.ListByOwner(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListByOwner empty: %v", err)
	}
	if empty == nil {
		t.Error("empty list must not be nil")
	}
}

func TestTweetService_UpdateOwnershipEnforced(t *testing.T) {
	svc := newTestTweetService()

	tweet, err := svc.Create(context.Background(), "owner-1", "original")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(context.Background(), tweet.ID, "intruder", "hacked"); !errors.Is(err, commonerrors.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}

	updated, err := svc.Update(context.Background(), tweet.ID, "owner-1", "edited")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Content != "edited" {
		t.Errorf("content = %q, want edited", updated.Content)
	}
}

func TestTweetService_Delete(t *testing.T) {
	svc := newTestTweetService()

	tweet, err := svc.Create(context.Background(), "owner-1", "short lived")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), tweet.ID, "intruder"); !errors.Is(err, commonerrors.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.Delete(context.Background(), tweet.ID, "owner-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), tweet.ID, "owner-1"); !errors.Is(err, commonerrors.ErrTweetNotFound) {
		t.Errorf("expected ErrTweetNotFound after delete, got %v", err)
	}
}
