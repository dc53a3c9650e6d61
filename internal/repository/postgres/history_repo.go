package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// HistoryRepo implements HistoryRepository using PostgreSQL.
type HistoryRepo struct{ db *DB }

// NewHistoryRepo constructs a history repository.
func NewHistoryRepo(db *DB) *HistoryRepo { return &HistoryRepo{db: db} }

// Upsert writes progress for (user, video); the last write wins.
func (r *HistoryRepo) Upsert(ctx context.Context, e *model.HistoryEntry) error {
	const q = `
INSERT INTO history_entries (user_id, video_id, seconds_watched)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, video_id)
DO UPDATE SET seconds_watched = EXCLUDED.seconds_watched, updated_at = now()
RETURNING updated_at`
	err := r.db.Pool.QueryRow(ctx, q, e.UserID, e.VideoID, e.SecondsWatched).Scan(&e.UpdatedAt)
	if isForeignKeyViolation(err) {
		return errs.ErrNotFound
	}
	return err
}

// Delete removes a single entry.
func (r *HistoryRepo) Delete(ctx context.Context, userID, videoID uuid.UUID) error {
	const q = `DELETE FROM history_entries WHERE user_id=$1 AND video_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, userID, videoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListByUser returns the user's history joined with videos.
func (r *HistoryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.HistoryEntry, error) {
	const q = `
SELECT h.user_id, h.video_id, h.seconds_watched, h.updated_at, ` + videoCols + `
FROM history_entries h JOIN videos v ON v.id = h.video_id
WHERE h.user_id=$1
ORDER BY h.updated_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.HistoryEntry{}
	for rows.Next() {
		var (
			e model.HistoryEntry
			v model.Video
		)
		if err := rows.Scan(&e.UserID, &e.VideoID, &e.SecondsWatched, &e.UpdatedAt,
			&v.ID, &v.UserID, &v.Title, &v.ThumbnailURL, &v.MediaID, &v.Duration, &v.CreatedAt); err != nil {
			return nil, err
		}
		e.Video = &v
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear removes every entry of the user.
func (r *HistoryRepo) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	const q = `DELETE FROM history_entries WHERE user_id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
