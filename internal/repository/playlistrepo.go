package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// PlaylistRepository provides CRUD for explicit playlists.
type PlaylistRepository interface {
	// Create inserts the playlist and, when initialVideo is set, its first edge in one transaction.
	Create(ctx context.Context, p *model.Playlist, initialVideo *uuid.UUID) error
	// GetByID loads a playlist regardless of owner.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Playlist, error)
	// Update writes name and visibility in a single statement, matching id and owner.
	Update(ctx context.Context, p *model.Playlist) error
	// Delete removes a playlist matching id and owner.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	// ListByUser returns playlists of userID ordered by creation.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Playlist, error)
}
