package service

import (
	"context"
	"fmt"
	"math"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/invalidate"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
	"github.com/ncontiero/dk-tube-sub000/internal/repository"
)

// HistoryService records per-video watch progress of a user.
type HistoryService interface {
	// SetHistory stores seconds watched for (actorID, videoID). Last write wins.
	SetHistory(ctx context.Context, actorID, videoID uuid.UUID, seconds int) (*model.HistoryEntry, error)
	// RemoveHistory deletes one entry; ErrNotFound when there is none.
	RemoveHistory(ctx context.Context, actorID, videoID uuid.UUID) error
	// ListHistory returns entries most recently updated first.
	ListHistory(ctx context.Context, actorID uuid.UUID) ([]model.HistoryEntry, error)
	// ClearHistory removes every entry and returns how many were removed.
	ClearHistory(ctx context.Context, actorID uuid.UUID) (int64, error)
}

type HistoryServiceImpl struct {
	repo repository.HistoryRepository
	inv  *invalidate.Router
}

// NewHistoryService constructs HistoryService.
func NewHistoryService(repo repository.HistoryRepository, inv *invalidate.Router) *HistoryServiceImpl {
	return &HistoryServiceImpl{repo: repo, inv: inv}
}

func (s *HistoryServiceImpl) SetHistory(ctx context.Context, actorID, videoID uuid.UUID, seconds int) (*model.HistoryEntry, error) {
	if actorID == uuid.Nil {
		return nil, errs.ErrUnauthenticated
	}
	if videoID == uuid.Nil {
		return nil, fmt.Errorf("%w: video id is required", errs.ErrValidation)
	}
	if seconds < 0 {
		return nil, fmt.Errorf("%w: negative seconds watched", errs.ErrValidation)
	}
	if seconds > math.MaxInt32 {
		return nil, fmt.Errorf("%w: seconds watched out of range", errs.ErrValidation)
	}
	e := &model.HistoryEntry{UserID: actorID, VideoID: videoID, SecondsWatched: seconds}
	if err := s.repo.Upsert(ctx, e); err != nil {
		return nil, errs.Persistence(err)
	}
	s.changed(ctx, actorID)
	return e, nil
}

func (s *HistoryServiceImpl) RemoveHistory(ctx context.Context, actorID, videoID uuid.UUID) error {
	if actorID == uuid.Nil {
		return errs.ErrUnauthenticated
	}
	if err := s.repo.Delete(ctx, actorID, videoID); err != nil {
		return errs.Persistence(err)
	}
	s.changed(ctx, actorID)
	return nil
}

func (s *HistoryServiceImpl) ListHistory(ctx context.Context, actorID uuid.UUID) ([]model.HistoryEntry, error) {
	if actorID == uuid.Nil {
		return nil, errs.ErrUnauthenticated
	}
	es, err := s.repo.ListByUser(ctx, actorID)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return es, nil
}

func (s *HistoryServiceImpl) ClearHistory(ctx context.Context, actorID uuid.UUID) (int64, error) {
	if actorID == uuid.Nil {
		return 0, errs.ErrUnauthenticated
	}
	n, err := s.repo.Clear(ctx, actorID)
	if err != nil {
		return 0, errs.Persistence(err)
	}
	if n > 0 {
		s.changed(ctx, actorID)
	}
	return n, nil
}

func (s *HistoryServiceImpl) changed(ctx context.Context, actorID uuid.UUID) {
	s.inv.Invalidate(ctx, invalidate.Event{Kind: invalidate.HistoryChanged, ActorID: actorID})
}
