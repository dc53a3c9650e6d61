package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, external_id, username, name, email, avatar_url, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.ExternalID, &u.Username, &u.Name, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, err
	}
	return &u, nil
}

// Ensure inserts the user if its external id is unseen; an existing row is returned untouched.
func (r *UserRepo) Ensure(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
INSERT INTO users (id, external_id, username, name, email, avatar_url)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (external_id) DO UPDATE SET external_id = EXCLUDED.external_id
RETURNING ` + userCols
	return scanUser(r.db.Pool.QueryRow(ctx, q, u.ID, u.ExternalID, u.Username, u.Name, u.Email, u.AvatarURL))
}

// UpsertProfile inserts the user or overwrites its profile fields.
func (r *UserRepo) UpsertProfile(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
INSERT INTO users (id, external_id, username, name, email, avatar_url)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (external_id) DO UPDATE
SET username = EXCLUDED.username, name = EXCLUDED.name, email = EXCLUDED.email,
    avatar_url = EXCLUDED.avatar_url, updated_at = now()
RETURNING ` + userCols
	return scanUser(r.db.Pool.QueryRow(ctx, q, u.ID, u.ExternalID, u.Username, u.Name, u.Email, u.AvatarURL))
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByExternalID selects a user by provider subject.
func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE external_id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, externalID))
}

// DeleteByExternalID deletes the user; FKs cascade to videos, playlists, edges and history.
func (r *UserRepo) DeleteByExternalID(ctx context.Context, externalID string) (uuid.UUID, error) {
	const q = `DELETE FROM users WHERE external_id=$1 RETURNING id`
	var id uuid.UUID
	if err := r.db.Pool.QueryRow(ctx, q, externalID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, errs.ErrNotFound
		}
		return uuid.Nil, err
	}
	return id, nil
}
