package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// MembershipRepository stores video membership edges of explicit and implicit collections.
// Every write touches exactly one edge and is atomic on its own.
type MembershipRepository interface {
	// Members returns the member videos of the collection ordered by when they were added.
	Members(ctx context.Context, key model.CollectionKey) ([]model.Video, error)
	// Connect adds the edge; adding an existing edge is a no-op.
	Connect(ctx context.Context, key model.CollectionKey, videoID uuid.UUID) error
	// Disconnect removes the edge and reports whether it existed.
	Disconnect(ctx context.Context, key model.CollectionKey, videoID uuid.UUID) (bool, error)
}
