package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clipstream/clipstream-backend/internal/common/clock"
	"github.com/clipstream/clipstream-backend/internal/common/crypto"
	commonerrors "github.com/clipstream/clipstream-backend/internal/common/errors"
	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/subscription/domain"
	"github.com/clipstream/clipstream-backend/internal/subscription/repository"
	userdomain "github.com/clipstream/clipstream-backend/internal/user/domain"
	userrepo "github.com/clipstream/clipstream-backend/internal/user/repository"
)

func newTestSubscriptionService(t *testing.T, usernames ...string) (*SubscriptionService, *repository.MemorySubscriptionRepository) {
	t.Helper()

	users := userrepo.NewMemoryUserRepository()
	for _, name := range usernames {
		err := users.Create(context.Background(), &userdomain.User{
			ID:       userdomain.ID(name),
			Username: name,
			Email:    name + "@example.com",
			FullName: name,
		})
		if err != nil {
			t.Fatalf("seed user %s: %v", name, err)
		}
	}

	subs := repository.NewMemorySubscriptionRepository()
	clk := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := NewSubscriptionService(
		subs,
		users,
		crypto.NewUUIDGenerator(),
		clk,
		logger.NewNop(),
	)
	return svc, subs
}

func TestSubscriptionService_ToggleOnOff(t *testing.T) {
	svc, _ := newTestSubscriptionService(t, "alice", "bob")

	subscribed, err := svc.Toggle(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("Toggle on: %v", err)
	}
	if !subscribed {
		t.Error("first toggle should subscribe")
	}

	subscribed, err = svc.Toggle(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("Toggle off: %v", err)
	}
	if subscribed {
		t.Error("second toggle should unsubscribe")
	}

	subs, err := svc.Subscribers(context.Background(), "bob")
	if err != nil {
		t.Fatalf("Subscribers: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("subscribers after toggle off = %d, want 0", len(subs))
	}
}

func TestSubscriptionService_SelfSubscriptionRejected(t *testing.T) {
	svc, _ := newTestSubscriptionService(t, "alice")

	if _, err := svc.Toggle(context.Background(), "alice", "alice"); !errors.Is(err, ErrSelfSubscription) {
		t.Errorf("expected ErrSelfSubscription, got %v", err)
	}
}

func TestSubscriptionService_UnknownChannel(t *testing.T) {
	svc, _ := newTestSubscriptionService(t, "alice")

	if _, err := svc.Toggle(context.Background(), "alice", "ghost"); !errors.Is(err, commonerrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSubscriptionService_ListsResolveProfiles(t *testing.T) {
	svc, _ := newTestSubscriptionService(t, "alice", "bob", "carol")

	for _, subscriber := range []string{"alice", "carol"} {
		if _, err := svc.Toggle(context.Background(), subscriber, "bob"); err != nil {
			t.Fatalf("Toggle %s: %v", subscriber, err)
		}
	}
	if _, err := svc.Toggle(context.Background(), "alice", "carol"); err != nil {
		t.Fatalf("Toggle alice->carol: %v", err)
	}

	subs, err := svc.Subscribers(context.Background(), "bob")
	if err != nil {
		t.Fatalf("Subscribers: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("bob has %d subscribers, want 2", len(subs))
	}
	for _, u := range subs {
		if u.Username == "" || u.Email == "" {
			t.Errorf("subscriber not resolved to a profile: %+v", u)
		}
	}

	channels, err := svc.SubscribedChannels(context.Background(), "alice")
	if err != nil {
		t.Fatalf("SubscribedChannels: %v", err)
	}
	if len(channels) != 2 {
		t.Errorf("alice follows %d channels, want 2", len(channels))
	}
}

func TestSubscriptionService_ResolveSkipsMissingAccounts(t *testing.T) {
	svc, subs := newTestSubscriptionService(t, "alice", "bob")

	if _, err := svc.Toggle(context.Background(), "alice", "bob"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	// Row left behind by an account that no longer exists.
	err := subs.Create(context.Background(), &domain.Subscription{
		ID:           "dangling",
		SubscriberID: "ghost",
		ChannelID:    "bob",
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed dangling subscription: %v", err)
	}

	resolved, err := svc.Subscribers(context.Background(), "bob")
	if err != nil {
		t.Fatalf("Subscribers: %v", err)
	}
	if len(resolved) != 1 || resolved[0].Username != "alice" {
		t.Errorf("resolved = %+v, want only alice", resolved)
	}
}
