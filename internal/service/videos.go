package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/invalidate"
	"github.com/ncontiero/dk-tube-sub000/internal/media"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
	"github.com/ncontiero/dk-tube-sub000/internal/repository"
	"github.com/ncontiero/dk-tube-sub000/internal/search"
)

// MediaSource resolves metadata of externally hosted media.
type MediaSource interface {
	Thumbnail(ctx context.Context, mediaID string) (string, error)
	Duration(ctx context.Context, mediaID string) (string, error)
}

// VideoService manages video references and catalog reads.
type VideoService interface {
	// CreateVideo registers an external media item under ownerID.
	CreateVideo(ctx context.Context, ownerID uuid.UUID, in model.NewVideo) (*model.Video, error)
	// DeleteVideo removes a video owned by actorID.
	DeleteVideo(ctx context.Context, id, actorID uuid.UUID) error
	// GetVideo loads one video.
	GetVideo(ctx context.Context, id uuid.UUID) (*model.Video, error)
	// ListChannelVideos returns the videos of userID, newest first.
	ListChannelVideos(ctx context.Context, userID uuid.UUID) ([]model.Video, error)
	// SearchVideos ranks recent catalog videos by title relevance.
	SearchVideos(ctx context.Context, query string, limit int) ([]model.Video, error)
}

type VideoServiceImpl struct {
	videos      repository.VideoRepository
	media       MediaSource
	inv         *invalidate.Router
	log         *zap.Logger
	searchSpace int
}

// NewVideoService constructs VideoService. Search considers the searchSpace most recent videos.
func NewVideoService(videos repository.VideoRepository, src MediaSource, inv *invalidate.Router, log *zap.Logger, searchSpace int) *VideoServiceImpl {
	if searchSpace <= 0 {
		searchSpace = 500
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &VideoServiceImpl{videos: videos, media: src, inv: inv, log: log, searchSpace: searchSpace}
}

// CreateVideo requires a thumbnail; a failed duration lookup degrades to "00:00".
func (s *VideoServiceImpl) CreateVideo(ctx context.Context, ownerID uuid.UUID, in model.NewVideo) (*model.Video, error) {
	if ownerID == uuid.Nil {
		return nil, errs.ErrUnauthenticated
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrValidation)
	}
	mediaID, err := media.ParseMediaID(in.MediaID)
	if err != nil {
		return nil, err
	}

	thumb, err := s.media.Thumbnail(ctx, mediaID)
	if err != nil {
		return nil, err
	}
	dur, err := s.media.Duration(ctx, mediaID)
	if err != nil {
		s.log.Warn("media duration", zap.String("media_id", mediaID), zap.Error(err))
		dur = media.FormatDuration("")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	v := &model.Video{ID: id, UserID: ownerID, Title: title, ThumbnailURL: thumb, MediaID: mediaID, Duration: dur}
	if err := s.videos.Create(ctx, v); err != nil {
		return nil, errs.Persistence(err)
	}
	s.inv.Invalidate(ctx, invalidate.Event{Kind: invalidate.VideoCreated, ActorID: ownerID, VideoID: id})
	return v, nil
}

func (s *VideoServiceImpl) DeleteVideo(ctx context.Context, id, actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return errs.ErrUnauthenticated
	}
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return errs.Persistence(err)
	}
	if v.UserID != actorID {
		return errs.ErrForbidden
	}
	if err := s.videos.Delete(ctx, id, actorID); err != nil {
		return errs.Persistence(err)
	}
	s.inv.Invalidate(ctx, invalidate.Event{Kind: invalidate.VideoDeleted, ActorID: actorID, VideoID: id})
	return nil
}

func (s *VideoServiceImpl) GetVideo(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	v, err := s.videos.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return v, nil
}

func (s *VideoServiceImpl) ListChannelVideos(ctx context.Context, userID uuid.UUID) ([]model.Video, error) {
	vs, err := s.videos.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return vs, nil
}

// SearchVideos returns an empty result for a blank query without hitting storage.
func (s *VideoServiceImpl) SearchVideos(ctx context.Context, query string, limit int) ([]model.Video, error) {
	if strings.TrimSpace(query) == "" {
		return []model.Video{}, nil
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", errs.ErrValidation)
	}
	recent, err := s.videos.ListRecent(ctx, s.searchSpace)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return search.Rank(query, recent, limit), nil
}
