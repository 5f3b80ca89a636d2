package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/clipstream/clipstream-backend/internal/common/db"
	"github.com/clipstream/clipstream-backend/internal/user/domain"
)

const pgUniqueViolation = "23505"

type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, username, email, full_name, avatar_url, cover_image_url,
	password_hash, refresh_token, watch_history, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var id string
	var history []byte

	err := row.Scan(&id, &u.Username, &u.Email, &u.FullName, &u.AvatarURL, &u.CoverImageURL,
		&u.PasswordHash, &u.RefreshToken, &history, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.ID = domain.ID(id)

	if len(history) > 0 {
		if err := json.Unmarshal(history, &u.WatchHistory); err != nil {
			return nil, fmt.Errorf("failed to decode watch history: %w", err)
		}
	}

	return &u, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	start := time.Now()

	history, err := json.Marshal(user.WatchHistory)
	if err != nil {
		return fmt.Errorf("failed to encode watch history: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, full_name, avatar_url, cover_image_url,
			password_hash, refresh_token, watch_history, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		string(user.ID), user.Username, user.Email, user.FullName, user.AvatarURL, user.CoverImageURL,
		user.PasswordHash, user.RefreshToken, history, user.CreatedAt, user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "email") {
				return ErrEmailTaken
			}
			return ErrUsernameTaken
		}
	}

	return db.HandleExecError(err, "create user", start)
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id domain.ID) (*domain.User, error) {
	start := time.Now()

	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, string(id))

	u, err := scanUser(row)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, "find user by id", start)
	}

	db.MeasureQueryDuration("find user by id", start)
	return u, nil
}

func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	start := time.Now()

	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, domain.NormalizeHandle(username))

	u, err := scanUser(row)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, "find user by username", start)
	}

	db.MeasureQueryDuration("find user by username", start)
	return u, nil
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	start := time.Now()

	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, domain.NormalizeHandle(email))

	u, err := scanUser(row)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, "find user by email", start)
	}

	db.MeasureQueryDuration("find user by email", start)
	return u, nil
}

func (r *PostgresUserRepository) UpdateAccount(ctx context.Context, id domain.ID, patch AccountPatch) error {
	start := time.Now()

	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.FullName != nil {
		add("full_name", *patch.FullName)
	}
	if patch.Email != nil {
		add("email", domain.NormalizeHandle(*patch.Email))
	}
	if patch.AvatarURL != nil {
		add("avatar_url", *patch.AvatarURL)
	}
	if patch.CoverImageURL != nil {
		add("cover_image_url", *patch.CoverImageURL)
	}
	if len(set) == 0 {
		return nil
	}
	add("updated_at", time.Now().UTC())

	args = append(args, string(id))
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrEmailTaken
		}
		return db.HandleExecError(err, "update user account", start)
	}
	if tag.RowsAffected() == 0 {
		db.MeasureQueryDuration("update user account", start)
		return ErrNotFound
	}

	db.MeasureQueryDuration("update user account", start)
	return nil
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id domain.ID, passwordHash string) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now().UTC(), string(id))
	if err != nil {
		return db.HandleExecError(err, "update user password", start)
	}
	if tag.RowsAffected() == 0 {
		db.MeasureQueryDuration("update user password", start)
		return ErrNotFound
	}

	db.MeasureQueryDuration("update user password", start)
	return nil
}

func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, id domain.ID, token string) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $1, updated_at = $2 WHERE id = $3`,
		token, time.Now().UTC(), string(id))
	if err != nil {
		return db.HandleExecError(err, "set refresh token", start)
	}
	if tag.RowsAffected() == 0 {
		db.MeasureQueryDuration("set refresh token", start)
		return ErrNotFound
	}

	db.MeasureQueryDuration("set refresh token", start)
	return nil
}

func (r *PostgresUserRepository) SwapRefreshToken(ctx context.Context, id domain.ID, expected, replacement string) error {
	start := time.Now()

	// The WHERE clause is the compare half of the compare-and-swap: a
	// concurrent rotation that already replaced the token makes this a no-op.
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $1, updated_at = $2 WHERE id = $3 AND refresh_token = $4`,
		replacement, time.Now().UTC(), string(id), expected)
	if err != nil {
		return db.HandleExecError(err, "swap refresh token", start)
	}
	if tag.RowsAffected() == 0 {
		db.MeasureQueryDuration("swap refresh token", start)
		return ErrTokenMismatch
	}

	db.MeasureQueryDuration("swap refresh token", start)
	return nil
}

func (r *PostgresUserRepository) ClearRefreshToken(ctx context.Context, id domain.ID) error {
	start := time.Now()

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = '', updated_at = $1 WHERE id = $2`,
		time.Now().UTC(), string(id))
	if err != nil {
		return db.HandleExecError(err, "clear refresh token", start)
	}
	if tag.RowsAffected() == 0 {
		db.MeasureQueryDuration("clear refresh token", start)
		return ErrNotFound
	}

	db.MeasureQueryDuration("clear refresh token", start)
	return nil
}

func (r *PostgresUserRepository) RecordWatch(ctx context.Context, id domain.ID, videoID string) error {
	start := time.Now()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.HandleExecError(err, "record watch history", start)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT watch_history FROM users WHERE id = $1 FOR UPDATE`, string(id)).Scan(&raw)
	if err != nil {
		return db.HandleQueryError(err, ErrNotFound, "record watch history", start)
	}

	var history []string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &history); err != nil {
			return fmt.Errorf("failed to decode watch history: %w", err)
		}
	}

	updated, err := json.Marshal(prependWatch(history, videoID))
	if err != nil {
		return fmt.Errorf("failed to encode watch history: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET watch_history = $1, updated_at = $2 WHERE id = $3`,
		updated, time.Now().UTC(), string(id))
	if err != nil {
		return db.HandleExecError(err, "record watch history", start)
	}

	if err := tx.Commit(ctx); err != nil {
		return db.HandleExecError(err, "record watch history", start)
	}

	db.MeasureQueryDuration("record watch history", start)
	return nil
}

func (r *PostgresUserRepository) WatchHistory(ctx context.Context, id domain.ID) ([]string, error) {
	start := time.Now()

	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT watch_history FROM users WHERE id = $1`, string(id)).Scan(&raw)
	if err != nil {
		return nil, db.HandleQueryError(err, ErrNotFound, "load watch history", start)
	}

	var history []string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &history); err != nil {
			return nil, fmt.Errorf("failed to decode watch history: %w", err)
		}
	}

	db.MeasureQueryDuration("load watch history", start)
	return history, nil
}

func prependWatch(history []string, videoID string) []string {
	out := make([]string, 0, len(history)+1)
	out = append(out, videoID)
	for _, v := range history {
		if v != videoID {
			out = append(out, v)
		}
	}
	return out
}
