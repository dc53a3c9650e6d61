// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// UserRepository provides access to user records keyed by internal and external ids.
type UserRepository interface {
	// Ensure inserts the user unless one with the same external id exists, and returns the stored row.
	Ensure(ctx context.Context, u *model.User) (*model.User, error)
	// UpsertProfile inserts the user or overwrites profile fields of the existing row.
	UpsertProfile(ctx context.Context, u *model.User) (*model.User, error)
	// GetByID loads a user by internal ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByExternalID loads a user by provider subject.
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	// DeleteByExternalID removes the user (cascading owned rows) and returns its internal ID.
	DeleteByExternalID(ctx context.Context, externalID string) (uuid.UUID, error)
}
