package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// VideoRepo implements VideoRepository using PostgreSQL.
type VideoRepo struct{ db *DB }

// NewVideoRepo constructs a video repository.
func NewVideoRepo(db *DB) *VideoRepo { return &VideoRepo{db: db} }

const videoCols = `v.id, v.user_id, v.title, v.thumbnail_url, v.media_id, v.duration, v.created_at`

func scanVideo(row pgx.Row, v *model.Video) error {
	return row.Scan(&v.ID, &v.UserID, &v.Title, &v.ThumbnailURL, &v.MediaID, &v.Duration, &v.CreatedAt)
}

func collectVideos(rows pgx.Rows) ([]model.Video, error) {
	defer rows.Close()
	out := []model.Video{}
	for rows.Next() {
		var v model.Video
		if err := scanVideo(rows, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Create inserts a video row.
func (r *VideoRepo) Create(ctx context.Context, v *model.Video) error {
	const q = `
INSERT INTO videos (id, user_id, title, thumbnail_url, media_id, duration)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, q, v.ID, v.UserID, v.Title, v.ThumbnailURL, v.MediaID, v.Duration).Scan(&v.CreatedAt)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return errs.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return errs.ErrNotFound
	default:
		return err
	}
}

// GetByID selects a video by ID.
func (r *VideoRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	const q = `SELECT ` + videoCols + ` FROM videos v WHERE v.id=$1`
	var v model.Video
	if err := scanVideo(r.db.Pool.QueryRow(ctx, q, id), &v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Delete removes a video owned by ownerID; membership edges and history cascade.
func (r *VideoRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	const q = `DELETE FROM videos WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListByUser returns the channel's videos, newest first.
func (r *VideoRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Video, error) {
	const q = `SELECT ` + videoCols + ` FROM videos v WHERE v.user_id=$1 ORDER BY v.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// ListRecent returns the newest videos across all channels.
func (r *VideoRepo) ListRecent(ctx context.Context, limit int) ([]model.Video, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + videoCols + ` FROM videos v ORDER BY v.created_at DESC LIMIT $1`
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}
