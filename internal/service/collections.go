package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/invalidate"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
	"github.com/ncontiero/dk-tube-sub000/internal/repository"
)

// CollectionService manages explicit playlists and reads of implicit collections.
type CollectionService interface {
	// CreatePlaylist creates a playlist, optionally seeded with one video.
	CreatePlaylist(ctx context.Context, ownerID uuid.UUID, name string, vis model.Visibility, initialVideo *uuid.UUID) (*model.Playlist, error)
	// RenamePlaylist sets name and visibility in one write. An empty vis keeps the current one.
	RenamePlaylist(ctx context.Context, id, actorID uuid.UUID, name string, vis model.Visibility) (*model.Playlist, error)
	// DeletePlaylist removes a playlist owned by actorID.
	DeletePlaylist(ctx context.Context, id, actorID uuid.UUID) error
	// ImplicitCollection synthesizes the liked or watch-later view of ownerID.
	ImplicitCollection(ctx context.Context, kind model.CollectionKind, ownerID uuid.UUID) (*model.CollectionView, error)
	// ListOwned returns watch-later, liked, then explicit playlists by creation.
	ListOwned(ctx context.Context, ownerID uuid.UUID) ([]model.CollectionView, error)
	// ListChannelPlaylists returns the playlists of ownerID that viewer may see.
	ListChannelPlaylists(ctx context.Context, viewer, ownerID uuid.UUID) ([]model.Playlist, error)
	// GetCollection loads any collection; invisible ones are reported as not found.
	GetCollection(ctx context.Context, viewer uuid.UUID, ref model.CollectionRef) (*model.CollectionView, error)
}

type CollectionServiceImpl struct {
	playlists repository.PlaylistRepository
	members   repository.MembershipRepository
	inv       *invalidate.Router
}

// NewCollectionService constructs CollectionService.
func NewCollectionService(playlists repository.PlaylistRepository, members repository.MembershipRepository, inv *invalidate.Router) *CollectionServiceImpl {
	return &CollectionServiceImpl{playlists: playlists, members: members, inv: inv}
}

func validatePlaylist(name string, vis model.Visibility, allowEmptyVis bool) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: playlist name is required", errs.ErrValidation)
	}
	if vis == "" && allowEmptyVis {
		return name, nil
	}
	if !vis.Valid() {
		return "", fmt.Errorf("%w: unknown visibility %q", errs.ErrValidation, vis)
	}
	return name, nil
}

// CreatePlaylist validates input before touching storage. An empty vis means private.
func (s *CollectionServiceImpl) CreatePlaylist(ctx context.Context, ownerID uuid.UUID, name string, vis model.Visibility, initialVideo *uuid.UUID) (*model.Playlist, error) {
	if ownerID == uuid.Nil {
		return nil, errs.ErrUnauthenticated
	}
	if vis == "" {
		vis = model.VisibilityPrivate
	}
	name, err := validatePlaylist(name, vis, false)
	if err != nil {
		return nil, err
	}
	if initialVideo != nil && *initialVideo == uuid.Nil {
		initialVideo = nil
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	p := &model.Playlist{ID: id, UserID: ownerID, Name: name, Visibility: vis}
	if err := s.playlists.Create(ctx, p, initialVideo); err != nil {
		return nil, errs.Persistence(err)
	}
	if initialVideo != nil {
		p.VideoCount = 1
	}
	s.inv.Invalidate(ctx, invalidate.Event{Kind: invalidate.PlaylistCreated, ActorID: ownerID, Collection: model.ExplicitRef(id)})
	return p, nil
}

// RenamePlaylist: NotFound when missing, Forbidden for non-owners.
func (s *CollectionServiceImpl) RenamePlaylist(ctx context.Context, id, actorID uuid.UUID, name string, vis model.Visibility) (*model.Playlist, error) {
	if actorID == uuid.Nil {
		return nil, errs.ErrUnauthenticated
	}
	name, err := validatePlaylist(name, vis, true)
	if err != nil {
		return nil, err
	}

	p, err := s.ownedPlaylist(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	p.Name = name
	if vis != "" {
		p.Visibility = vis
	}
	if err := s.playlists.Update(ctx, p); err != nil {
		return nil, errs.Persistence(err)
	}
	s.inv.Invalidate(ctx, invalidate.Event{Kind: invalidate.PlaylistUpdated, ActorID: actorID, Collection: model.ExplicitRef(id)})
	return p, nil
}

// DeletePlaylist removes the playlist and its membership edges.
func (s *CollectionServiceImpl) DeletePlaylist(ctx context.Context, id, actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return errs.ErrUnauthenticated
	}
	if _, err := s.ownedPlaylist(ctx, id, actorID); err != nil {
		return err
	}
	if err := s.playlists.Delete(ctx, id, actorID); err != nil {
		return errs.Persistence(err)
	}
	s.inv.Invalidate(ctx, invalidate.Event{Kind: invalidate.PlaylistDeleted, ActorID: actorID, Collection: model.ExplicitRef(id)})
	return nil
}

func (s *CollectionServiceImpl) ownedPlaylist(ctx context.Context, id, actorID uuid.UUID) (*model.Playlist, error) {
	p, err := s.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	if p.UserID != actorID {
		return nil, errs.ErrForbidden
	}
	return p, nil
}

// ImplicitCollection never fails for a missing row: an owner without edges gets an empty view.
func (s *CollectionServiceImpl) ImplicitCollection(ctx context.Context, kind model.CollectionKind, ownerID uuid.UUID) (*model.CollectionView, error) {
	if !kind.Implicit() {
		return nil, fmt.Errorf("%w: %s is not an implicit collection", errs.ErrValidation, kind)
	}
	if ownerID == uuid.Nil {
		return nil, errs.ErrUnauthenticated
	}
	videos, err := s.members.Members(ctx, model.CollectionKey{Kind: kind, OwnerID: ownerID})
	if err != nil {
		return nil, errs.Persistence(err)
	}
	return implicitView(kind, ownerID, videos), nil
}

func (s *CollectionServiceImpl) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]model.CollectionView, error) {
	if ownerID == uuid.Nil {
		return nil, errs.ErrUnauthenticated
	}
	out := make([]model.CollectionView, 0, 2)
	for _, k := range []model.CollectionKind{model.KindWatchLater, model.KindLiked} {
		v, err := s.ImplicitCollection(ctx, k, ownerID)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}

	pls, err := s.playlists.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	for i := range pls {
		videos, err := s.members.Members(ctx, model.CollectionKey{Kind: model.KindPlaylist, PlaylistID: pls[i].ID, OwnerID: ownerID})
		if err != nil {
			return nil, errs.Persistence(err)
		}
		out = append(out, *playlistView(&pls[i], videos))
	}
	return out, nil
}

func (s *CollectionServiceImpl) ListChannelPlaylists(ctx context.Context, viewer, ownerID uuid.UUID) ([]model.Playlist, error) {
	pls, err := s.playlists.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, errs.Persistence(err)
	}
	out := make([]model.Playlist, 0, len(pls))
	for i := range pls {
		if CanView(viewer, playlistView(&pls[i], nil)) {
			out = append(out, pls[i])
		}
	}
	return out, nil
}

func (s *CollectionServiceImpl) GetCollection(ctx context.Context, viewer uuid.UUID, ref model.CollectionRef) (*model.CollectionView, error) {
	if ref.Kind.Implicit() {
		// implicit collections are addressed relative to the viewer
		if viewer == uuid.Nil {
			return nil, errs.ErrNotFound
		}
		return s.ImplicitCollection(ctx, ref.Kind, viewer)
	}

	p, err := s.playlists.GetByID(ctx, ref.PlaylistID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, errs.Persistence(err)
	}
	view := playlistView(p, nil)
	if !CanView(viewer, view) {
		return nil, errs.ErrNotFound
	}
	videos, err := s.members.Members(ctx, model.CollectionKey{Kind: model.KindPlaylist, PlaylistID: p.ID, OwnerID: p.UserID})
	if err != nil {
		return nil, errs.Persistence(err)
	}
	if videos == nil {
		videos = []model.Video{}
	}
	view.Videos = videos
	return view, nil
}
