package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/clipstream/clipstream-backend/internal/common/db"
	"github.com/clipstream/clipstream-backend/internal/subscription/domain"
)

const pgUniqueViolation = "23505"

type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

func (r *PostgresSubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	start := time.Now()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
		VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.SubscriberID, sub.ChannelID, sub.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrAlreadyExists
		}
	}

	return db.HandleExecError(err, "create subscription", start)
}

func (r *PostgresSubscriptionRepository) Delete(ctx context.Context, subscriberID, channelID string) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`,
		subscriberID, channelID)
	if err != nil {
		return db.HandleExecError(err, "delete subscription", start)
	}
	if tag.RowsAffected() == 0 {
		db.MeasureQueryDuration("delete subscription", start)
		return ErrNotFound
	}

	db.MeasureQueryDuration("delete subscription", start)
	return nil
}

func (r *PostgresSubscriptionRepository) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	start := time.Now()

	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)`,
		subscriberID, channelID).Scan(&exists)
	if err != nil {
		return false, db.HandleQueryError(err, ErrNotFound, "check subscription", start)
	}

	db.MeasureQueryDuration("check subscription", start)
	return exists, nil
}

func (r *PostgresSubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID, "count subscribers")
}

func (r *PostgresSubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID, "count subscribed to")
}

func (r *PostgresSubscriptionRepository) count(ctx context.Context, query, arg, operation string) (int, error) {
	start := time.Now()

	var n int
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&n); err != nil {
		return 0, db.HandleQueryError(err, ErrNotFound, operation, start)
	}

	db.MeasureQueryDuration(operation, start)
	return n, nil
}

func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]string, error) {
	return r.list(ctx,
		`SELECT subscriber_id FROM subscriptions WHERE channel_id = $1 ORDER BY created_at DESC`,
		channelID, "list subscribers")
}

func (r *PostgresSubscriptionRepository) ListSubscribedTo(ctx context.Context, subscriberID string) ([]string, error) {
	return r.list(ctx,
		`SELECT channel_id FROM subscriptions WHERE subscriber_id = $1 ORDER BY created_at DESC`,
		subscriberID, "list subscribed to")
}

func (r *PostgresSubscriptionRepository) list(ctx context.Context, query, arg, operation string) ([]string, error) {
	start := time.Now()

	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, operation, start)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, db.HandleQueryError(err, ErrNotFound, operation, start)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, operation, start)
	}

	db.MeasureQueryDuration(operation, start)
	return ids, nil
}
