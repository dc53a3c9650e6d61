package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// HistoryRepository stores per-(user, video) watch progress.
type HistoryRepository interface {
	// Upsert writes the entry, overwriting seconds of an existing one.
	Upsert(ctx context.Context, e *model.HistoryEntry) error
	// Delete removes one entry.
	Delete(ctx context.Context, userID, videoID uuid.UUID) error
	// ListByUser returns entries with their videos, most recently updated first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.HistoryEntry, error)
	// Clear removes all entries of the user and returns how many were removed.
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}
