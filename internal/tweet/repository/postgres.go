package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/clipstream/clipstream-backend/internal/common/db"
	"github.com/clipstream/clipstream-backend/internal/tweet/domain"
)

type PostgresTweetRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTweetRepository(pool *pgxpool.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

func (r *PostgresTweetRepository) Create(ctx context.Context, tweet *domain.Tweet) error {
	start := time.Now()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO tweets (id, owner_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		tweet.ID, tweet.OwnerID, tweet.Content, tweet.CreatedAt, tweet.UpdatedAt)

	return db.HandleExecError(err, "create tweet", start)
}

func (r *PostgresTweetRepository) FindByID(ctx context.Context, id string) (*domain.Tweet, error) {
	start := time.Now()

	var t domain.Tweet
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, content, created_at, updated_at FROM tweets WHERE id = $1`, id).
		Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, "find tweet by id", start)
	}

	db.MeasureQueryDuration("find tweet by id", start)
	return &t, nil
}

func (r *PostgresTweetRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Tweet, error) {
	start := time.Now()

	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, content, created_at, updated_at
		 FROM tweets WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, "list tweets by owner", start)
	}
	defer rows.Close()

	var tweets []domain.Tweet
	for rows.Next() {
		var t domain.Tweet
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, db.HandleQueryError(err, ErrNotFound, "list tweets by owner", start)
		}
		tweets = append(tweets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, "list tweets by owner", start)
	}

	db.MeasureQueryDuration("list tweets by owner", start)
	return tweets, nil
}

func (r *PostgresTweetRepository) UpdateContent(ctx context.Context, id, content string) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx,
		`UPDATE tweets SET content = $1, updated_at = $2 WHERE id = $3`,
		content, time.Now().UTC(), id)
	if err != nil {
		return db.HandleExecError(err, "update tweet", start)
	}
	if tag.RowsAffected() == 0 {
		db.MeasureQueryDuration("update tweet", start)
		return ErrNotFound
	}

	db.MeasureQueryDuration("update tweet", start)
	return nil
}

func (r *PostgresTweetRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, id)
	if err != nil {
		return db.HandleExecError(err, "delete tweet", start)
	}
	if tag.RowsAffected() == 0 {
		db.MeasureQueryDuration("delete tweet", start)
		return ErrNotFound
	}

	db.MeasureQueryDuration("delete tweet", start)
	return nil
}
