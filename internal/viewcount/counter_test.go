package viewcount

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/video/domain"
	"github.com/clipstream/clipstream-backend/internal/video/repository"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func newRedisCounter(t *testing.T, videos repository.VideoRepository) (*RedisCounter, *redis.Client) {
	t.Helper()

	rdb := newTestRedis(t)
	// The interval is long enough that only explicit Flush calls run
	// during the test.
	counter := NewRedisCounter(rdb, videos, time.Hour, logger.NewNop())
	t.Cleanup(counter.Close)
	return counter, rdb
}

func seedVideo(t *testing.T, videos *repository.MemoryVideoRepository, id string) {
	t.Helper()

	err := videos.Create(context.Background(), &domain.Video{
		ID:          id,
		OwnerID:     "owner-1",
		Title:       "clip " + id,
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("seed video %s: %v", id, err)
	}
}

func TestRedisCounter_RecordBatchesInRedis(t *testing.T) {
	ctx := context.Background()
	videos := repository.NewMemoryVideoRepository()
	seedVideo(t, videos, "v1")
	counter, rdb := newRedisCounter(t, videos)

	for i := 0; i < 3; i++ {
		if err := counter.Record(ctx, "v1"); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	if raw := rdb.Get(ctx, viewKeyPrefix+"v1").Val(); raw != "3" {
		t.Errorf("redis counter = %q, want 3", raw)
	}
	if !rdb.SIsMember(ctx, dirtySetKey, "v1").Val() {
		t.Error("video not marked dirty")
	}

	// Nothing reaches the repository until a flush runs.
	video, _ := videos.FindByID(ctx, "v1")
	if video.Views != 0 {
		t.Errorf("repository views before flush = %d, want 0", video.Views)
	}
}

func TestRedisCounter_FlushDrainsIntoRepository(t *testing.T) {
	ctx := context.Background()
	videos := repository.NewMemoryVideoRepository()
	seedVideo(t, videos, "v1")
	seedVideo(t, videos, "v2")
	counter, rdb := newRedisCounter(t, videos)

	for i := 0; i < 3; i++ {
		if err := counter.Record(ctx, "v1"); err != nil {
			t.Fatalf("Record v1: %v", err)
		}
	}
	if err := counter.Record(ctx, "v2"); err != nil {
		t.Fatalf("Record v2: %v", err)
	}

	counter.Flush(ctx)

	v1, _ := videos.FindByID(ctx, "v1")
	v2, _ := videos.FindByID(ctx, "v2")
	if v1.Views != 3 || v2.Views != 1 {
		t.Errorf("views after flush = %d/%d, want 3/1", v1.Views, v2.Views)
	}

	if rdb.Exists(ctx, viewKeyPrefix+"v1").Val() != 0 {
		t.Error("drained counter key should be gone")
	}
	if rdb.SCard(ctx, dirtySetKey).Val() != 0 {
		t.Error("dirty set not cleared after flush")
	}

	// A second flush is a no-op.
	counter.Flush(ctx)
	v1, _ = videos.FindByID(ctx, "v1")
	if v1.Views != 3 {
		t.Errorf("views after repeat flush = %d, want 3", v1.Views)
	}
}

func TestRedisCounter_FlushDropsDeletedVideo(t *testing.T) {
	ctx := context.Background()
	videos := repository.NewMemoryVideoRepository()
	counter, rdb := newRedisCounter(t, videos)

	if err := counter.Record(ctx, "gone"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	counter.Flush(ctx)

	if rdb.Exists(ctx, viewKeyPrefix+"gone").Val() != 0 {
		t.Error("counter for a deleted video must be discarded, not retried")
	}
	if rdb.SIsMember(ctx, dirtySetKey, "gone").Val() {
		t.Error("deleted video left in the dirty set")
	}
}

func TestRedisCounter_CloseFlushes(t *testing.T) {
	videos := repository.NewMemoryVideoRepository()
	seedVideo(t, videos, "v1")
	rdb := newTestRedis(t)

	counter := NewRedisCounter(rdb, videos, time.Hour, logger.NewNop())
	if err := counter.Record(context.Background(), "v1"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	counter.Close()

	video, _ := videos.FindByID(context.Background(), "v1")
	if video.Views != 1 {
		t.Errorf("views after close = %d, want 1", video.Views)
	}
}

func TestDirectCounter(t *testing.T) {
	videos := repository.NewMemoryVideoRepository()
	seedVideo(t, videos, "v1")
	counter := NewDirectCounter(videos)

	if err := counter.Record(context.Background(), "v1"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	video, _ := videos.FindByID(context.Background(), "v1")
	if video.Views != 1 {
		t.Errorf("views = %d, want 1", video.Views)
	}

	// A view for a video deleted mid-request is dropped silently.
	if err := counter.Record(context.Background(), "gone"); err != nil {
		t.Errorf("Record for missing video should not error: %v", err)
	}
}
