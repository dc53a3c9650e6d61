package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// VideoRepository provides access to videos.
type VideoRepository interface {
	// Create inserts a video; CreatedAt is filled from the store.
	Create(ctx context.Context, v *model.Video) error
	// GetByID loads a single video.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error)
	// Delete removes a video owned by ownerID.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	// ListByUser returns videos owned by userID, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Video, error)
	// ListRecent returns up to limit videos across the catalog, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.Video, error)
}
