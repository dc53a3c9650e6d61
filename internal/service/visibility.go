// Package service contains the collection, membership, video and history use cases.
package service

import (
	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// CanView reports whether viewer may read c. uuid.Nil is the anonymous viewer.
// Public playlists are visible to everyone; private playlists and implicit
// collections only to their owner.
func CanView(viewer uuid.UUID, c *model.CollectionView) bool {
	if c == nil {
		return false
	}
	if !c.Ref.Kind.Implicit() && c.Visibility == model.VisibilityPublic {
		return true
	}
	return viewer != uuid.Nil && viewer == c.OwnerID
}

func playlistView(p *model.Playlist, videos []model.Video) *model.CollectionView {
	return &model.CollectionView{
		Ref:        model.ExplicitRef(p.ID),
		Name:       p.Name,
		Visibility: p.Visibility,
		OwnerID:    p.UserID,
		Videos:     videos,
		CreatedAt:  p.CreatedAt,
	}
}

func implicitView(kind model.CollectionKind, owner uuid.UUID, videos []model.Video) *model.CollectionView {
	ref := model.LikedRef()
	if kind == model.KindWatchLater {
		ref = model.WatchLaterRef()
	}
	if videos == nil {
		videos = []model.Video{}
	}
	return &model.CollectionView{
		Ref:        ref,
		Name:       model.ImplicitName(kind),
		Visibility: model.VisibilityPrivate,
		OwnerID:    owner,
		Videos:     videos,
	}
}
