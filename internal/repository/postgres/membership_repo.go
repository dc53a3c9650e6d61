package postgres

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// MembershipRepo implements MembershipRepository over the three edge tables.
type MembershipRepo struct{ db *DB }

// NewMembershipRepo constructs a membership repository.
func NewMembershipRepo(db *DB) *MembershipRepo { return &MembershipRepo{db: db} }

type edgeTable struct {
	table    string
	ownerCol string
	owner    uuid.UUID
}

// edgeFor maps a collection key to its edge table; liked and watch-later edges hang off the user.
func edgeFor(key model.CollectionKey) (edgeTable, error) {
	switch key.Kind {
	case model.KindPlaylist:
		return edgeTable{table: "playlist_videos", ownerCol: "playlist_id", owner: key.PlaylistID}, nil
	case model.KindLiked:
		return edgeTable{table: "liked_videos", ownerCol: "user_id", owner: key.OwnerID}, nil
	case model.KindWatchLater:
		return edgeTable{table: "watch_later", ownerCol: "user_id", owner: key.OwnerID}, nil
	default:
		return edgeTable{}, fmt.Errorf("unknown collection kind %v", key.Kind)
	}
}

// Members returns member videos in the order they were added.
func (r *MembershipRepo) Members(ctx context.Context, key model.CollectionKey) ([]model.Video, error) {
	e, err := edgeFor(key)
	if err != nil {
		return nil, err
	}
	q := `SELECT ` + videoCols + ` FROM ` + e.table + ` e JOIN videos v ON v.id = e.video_id
WHERE e.` + e.ownerCol + `=$1 ORDER BY e.added_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, e.owner)
	if err != nil {
		return nil, err
	}
	return collectVideos(rows)
}

// Connect inserts the edge; an existing edge is left as is.
func (r *MembershipRepo) Connect(ctx context.Context, key model.CollectionKey, videoID uuid.UUID) error {
	e, err := edgeFor(key)
	if err != nil {
		return err
	}
	q := `INSERT INTO ` + e.table + ` (` + e.ownerCol + `, video_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.Pool.Exec(ctx, q, e.owner, videoID); err != nil {
		if isForeignKeyViolation(err) {
			return errs.ErrNotFound
		}
		return err
	}
	return nil
}

// Disconnect deletes the edge and reports whether a row was removed.
func (r *MembershipRepo) Disconnect(ctx context.Context, key model.CollectionKey, videoID uuid.UUID) (bool, error) {
	e, err := edgeFor(key)
	if err != nil {
		return false, err
	}
	q := `DELETE FROM ` + e.table + ` WHERE ` + e.ownerCol + `=$1 AND video_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, e.owner, videoID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
