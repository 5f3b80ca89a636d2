package viewcount

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clipstream/clipstream-backend/internal/common/logger"
	"github.com/clipstream/clipstream-backend/internal/observability/metrics"
	"github.com/clipstream/clipstream-backend/internal/video/repository"
)

// Counter records that a video was viewed. Implementations decide whether the
// increment hits storage immediately or gets batched.
type Counter interface {
	Record(ctx context.Context, videoID string) error
}

// DirectCounter writes each view straight to the video repository. It backs
// deployments without Redis.
type DirectCounter struct {
	videos repository.VideoRepository
}

func NewDirectCounter(videos repository.VideoRepository) *DirectCounter {
	return &DirectCounter{videos: videos}
}

func (c *DirectCounter) Record(ctx context.Context, videoID string) error {
	err := c.videos.IncrementViews(ctx, videoID, 1)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

const (
	viewKeyPrefix = "video_views:"
	dirtySetKey   = "video_views_dirty"
)

// RedisCounter batches view increments in Redis and flushes them to the video
// repository on an interval. A view is one INCR plus one SADD; the flush loop
// drains each counter with GETDEL so no increment is counted twice.
type RedisCounter struct {
	rdb    *redis.Client
	videos repository.VideoRepository
	log    *logger.Logger
	stop   chan struct{}
	done   chan struct{}
}

func NewRedisCounter(rdb *redis.Client, videos repository.VideoRepository, flushInterval time.Duration, log *logger.Logger) *RedisCounter {
	c := &RedisCounter{
		rdb:    rdb,
		videos: videos,
		log:    log,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.flushLoop(flushInterval)
	return c
}

func (c *RedisCounter) Record(ctx context.Context, videoID string) error {
	pipe := c.rdb.Pipeline()
	pipe.Incr(ctx, viewKeyPrefix+videoID)
	pipe.SAdd(ctx, dirtySetKey, videoID)
	if _, err := pipe.Exec(ctx); err != nil {
		// Fall back to a direct write rather than losing the view.
		c.log.Warnf("view counter: redis unavailable, writing view directly: %v", err)
		return c.videos.IncrementViews(ctx, videoID, 1)
	}
	return nil
}

func (c *RedisCounter) flushLoop(interval time.Duration) {
	defer close(c.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Flush(context.Background())
		case <-c.stop:
			c.Flush(context.Background())
			return
		}
	}
}

// Flush drains every dirty counter into the repository.
func (c *RedisCounter) Flush(ctx context.Context) {
	ids, err := c.rdb.SMembers(ctx, dirtySetKey).Result()
	if err != nil {
		c.log.Warnf("view counter: failed to list dirty videos: %v", err)
		return
	}

	for _, id := range ids {
		raw, err := c.rdb.GetDel(ctx, viewKeyPrefix+id).Result()
		if err == redis.Nil {
			c.rdb.SRem(ctx, dirtySetKey, id)
			continue
		}
		if err != nil {
			c.log.Warnf("view counter: failed to drain counter for %s: %v", id, err)
			continue
		}

		delta, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || delta <= 0 {
			c.rdb.SRem(ctx, dirtySetKey, id)
			continue
		}

		if err := c.videos.IncrementViews(ctx, id, delta); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.rdb.SRem(ctx, dirtySetKey, id)
				continue
			}
			// Put the delta back so the next flush retries it.
			c.rdb.IncrBy(ctx, viewKeyPrefix+id, delta)
			c.log.Warnf("view counter: failed to flush %d views for %s: %v", delta, id, err)
			continue
		}

		c.rdb.SRem(ctx, dirtySetKey, id)
		metrics.VideoViewsFlushed.Add(float64(delta))
	}
}

// Close flushes once more and stops the loop.
func (c *RedisCounter) Close() {
	close(c.stop)
	<-c.done
}
