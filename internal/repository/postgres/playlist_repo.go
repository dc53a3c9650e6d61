package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// PlaylistRepo implements PlaylistRepository using PostgreSQL.
type PlaylistRepo struct{ db *DB }

// NewPlaylistRepo constructs a playlist repository.
func NewPlaylistRepo(db *DB) *PlaylistRepo { return &PlaylistRepo{db: db} }

// Create inserts a playlist and an optional first member atomically.
func (r *PlaylistRepo) Create(ctx context.Context, p *model.Playlist, initialVideo *uuid.UUID) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const ins = `
INSERT INTO playlists (id, user_id, name, is_public)
VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at`
	const edge = `INSERT INTO playlist_videos (playlist_id, video_id) VALUES ($1, $2)`

	if err = tx.QueryRow(ctx, ins, p.ID, p.UserID, p.Name, p.Visibility == model.VisibilityPublic).
		Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return errs.ErrNotFound
		}
		return err
	}
	if initialVideo != nil {
		if _, err = tx.Exec(ctx, edge, p.ID, *initialVideo); err != nil {
			if isForeignKeyViolation(err) {
				return errs.ErrNotFound
			}
			return err
		}
		p.VideoCount = 1
	}
	return nil
}

// GetByID selects a playlist with its member count.
func (r *PlaylistRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Playlist, error) {
	const q = `
SELECT p.id, p.user_id, p.name, p.is_public, p.created_at, p.updated_at,
       (SELECT count(*) FROM playlist_videos pv WHERE pv.playlist_id = p.id)
FROM playlists p WHERE p.id=$1`
	p, err := scanPlaylist(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update renames and re-flags visibility in one statement.
func (r *PlaylistRepo) Update(ctx context.Context, p *model.Playlist) error {
	const q = `
UPDATE playlists SET name=$3, is_public=$4, updated_at=now()
WHERE id=$1 AND user_id=$2
RETURNING updated_at`
	err := r.db.Pool.QueryRow(ctx, q, p.ID, p.UserID, p.Name, p.Visibility == model.VisibilityPublic).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	return err
}

// Delete removes a playlist of ownerID; its edges cascade.
func (r *PlaylistRepo) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	const q = `DELETE FROM playlists WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListByUser returns playlists in creation order.
func (r *PlaylistRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Playlist, error) {
	const q = `
SELECT p.id, p.user_id, p.name, p.is_public, p.created_at, p.updated_at,
       (SELECT count(*) FROM playlist_videos pv WHERE pv.playlist_id = p.id)
FROM playlists p WHERE p.user_id=$1
ORDER BY p.created_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Playlist{}
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPlaylist(row pgx.Row) (model.Playlist, error) {
	var (
		p      model.Playlist
		public bool
		count  int64
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &public, &p.CreatedAt, &p.UpdatedAt, &count); err != nil {
		return model.Playlist{}, err
	}
	p.Visibility = model.VisibilityPrivate
	if public {
		p.Visibility = model.VisibilityPublic
	}
	p.VideoCount = int(count)
	return p, nil
}
