package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/clipstream/clipstream-backend/internal/common/db"
	"github.com/clipstream/clipstream-backend/internal/video/domain"
)

type PostgresVideoRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresVideoRepository(pool *pgxpool.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoColumns = `id, owner_id, title, description, video_url, video_key,
	thumbnail_url, thumbnail_key, duration, views, is_published, created_at, updated_at`

func scanVideo(row pgx.Row) (*domain.Video, error) {
	var v domain.Video
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.VideoKey,
		&v.ThumbnailURL, &v.ThumbnailKey, &v.Duration, &v.Views, &v.IsPublished, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PostgresVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	start := time.Now()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO videos (id, owner_id, title, description, video_url, video_key,
			thumbnail_url, thumbnail_key, duration, views, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		video.ID, video.OwnerID, video.Title, video.Description, video.VideoURL, video.VideoKey,
		video.ThumbnailURL, video.ThumbnailKey, video.Duration, video.Views, video.IsPublished,
		video.CreatedAt, video.UpdatedAt)

	return db.HandleExecError(err, "create video", start)
}

func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (*domain.Video, error) {
	start := time.Now()

	v, err := scanVideo(r.pool.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, "find video by id", start)
	}

	db.MeasureQueryDuration("find video by id", start)
	return v, nil
}

func (r *PostgresVideoRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	start := time.Now()

	rows, err := r.pool.Query(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, "find videos by ids", start)
	}
	defer rows.Close()

	byID := make(map[string]domain.Video, len(ids))
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, db.HandleQueryError(err, ErrNotFound, "find videos by ids", start)
		}
		byID[v.ID] = *v
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, "find videos by ids", start)
	}

	// Preserve the caller's ordering; watch history depends on it.
	out := make([]domain.Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			out = append(out, v)
		}
	}

	db.MeasureQueryDuration("find videos by ids", start)
	return out, nil
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"views":     "views",
	"duration":  "duration",
	"title":     "title",
}

func (r *PostgresVideoRepository) List(ctx context.Context, params ListParams) ([]domain.Video, int, error) {
	start := time.Now()

	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if params.OwnerID != "" {
		args = append(args, params.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if params.Query != "" {
		args = append(args, "%"+params.Query+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if params.OnlyPublished {
		where = append(where, "is_published = TRUE")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM videos`+clause, args...).Scan(&total); err != nil {
		return nil, 0, db.HandleQueryError(err, ErrNotFound, "count videos", start)
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if params.SortAscending {
		direction = "ASC"
	}

	args = append(args, params.Limit, (params.Page-1)*params.Limit)
	query := fmt.Sprintf(`SELECT %s FROM videos%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		videoColumns, clause, column, direction, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, db.HandleQueryError(err, ErrNotFound, "list videos", start)
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, 0, db.HandleQueryError(err, ErrNotFound, "list videos", start)
		}
		videos = append(videos, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.HandleQueryError(err, ErrNotFound, "list videos", start)
	}

	db.MeasureQueryDuration("list videos", start)
	return videos, total, nil
}

func (r *PostgresVideoRepository) Update(ctx context.Context, id string, patch VideoPatch) error {
	start := time.Now()

	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.ThumbnailURL != nil {
		add("thumbnail_url", *patch.ThumbnailURL)
	}
	if patch.ThumbnailKey != nil {
		add("thumbnail_key", *patch.ThumbnailKey)
	}
	if len(set) == 0 {
		return nil
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE videos SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return db.HandleExecError(err, "update video", start)
	}
	if tag.RowsAffected() == 0 {
		db.MeasureQueryDuration("update video", start)
		return ErrNotFound
	}

	db.MeasureQueryDuration("update video", start)
	return nil
}

func (r *PostgresVideoRepository) TogglePublish(ctx context.Context, id string) (bool, error) {
	start := time.Now()

	var published bool
	err := r.pool.QueryRow(ctx,
		`UPDATE videos SET is_published = NOT is_published, updated_at = $1 WHERE id = $2 RETURNING is_published`,
		time.Now().UTC(), id).Scan(&published)
	if err != nil {
		return false, db.HandleQueryError(err, ErrNotFound, "toggle video publish", start)
	}

	db.MeasureQueryDuration("toggle video publish", start)
	return published, nil
}

func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return db.HandleExecError(err, "delete video", start)
	}
	if tag.RowsAffected() == 0 {
		db.MeasureQueryDuration("delete video", start)
		return ErrNotFound
	}

	db.MeasureQueryDuration("delete video", start)
	return nil
}

func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string, delta int64) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx,
		`UPDATE videos SET views = views + $1 WHERE id = $2`, delta, id)
	if err != nil {
		return db.HandleExecError(err, "increment video views", start)
	}
	if tag.RowsAffected() == 0 {
		db.MeasureQueryDuration("increment video views", start)
		return ErrNotFound
	}

	db.MeasureQueryDuration("increment video views", start)
	return nil
}
