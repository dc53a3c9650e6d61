// Package convert maps domain models to and from dktube.v1 wire messages.
package convert

import (
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/api"
	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// --- ids ---

// ParseID parses a required UUID field; failures are validation errors naming the field.
func ParseID(field, s string) (uuid.UUID, error) {
	id, err := uuid.FromString(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bad %s %q", errs.ErrValidation, field, s)
	}
	return id, nil
}

// ParseOptionalID returns nil for an empty string.
func ParseOptionalID(field, s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := ParseID(field, s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseRef parses "LL", "WL" or a playlist UUID.
func ParseRef(s string) (model.CollectionRef, error) {
	ref, err := model.ParseCollectionRef(s)
	if err != nil {
		return model.CollectionRef{}, fmt.Errorf("%w: %v", errs.ErrValidation, err)
	}
	return ref, nil
}

// ParseVisibility accepts "", "public" and "private".
func ParseVisibility(s string) (model.Visibility, error) {
	v := model.Visibility(s)
	if s != "" && !v.Valid() {
		return "", fmt.Errorf("%w: unknown visibility %q", errs.ErrValidation, s)
	}
	return v, nil
}

// --- server -> client ---

func ToAPIUser(u *model.User) api.User {
	return api.User{
		ID:        u.ID.String(),
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}

func ToAPIVideo(v *model.Video) api.Video {
	return api.Video{
		ID:           v.ID.String(),
		UserID:       v.UserID.String(),
		Title:        v.Title,
		ThumbnailURL: v.ThumbnailURL,
		MediaID:      v.MediaID,
		Duration:     v.Duration,
		CreatedAt:    v.CreatedAt,
	}
}

// ToAPIVideos never returns nil so empty lists encode as [].
func ToAPIVideos(vs []model.Video) []api.Video {
	out := make([]api.Video, 0, len(vs))
	for i := range vs {
		out = append(out, ToAPIVideo(&vs[i]))
	}
	return out
}

func ToAPIPlaylist(p *model.Playlist) api.Playlist {
	return api.Playlist{
		ID:         p.ID.String(),
		UserID:     p.UserID.String(),
		Name:       p.Name,
		Visibility: string(p.Visibility),
		VideoCount: p.VideoCount,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func ToAPIPlaylists(ps []model.Playlist) []api.Playlist {
	out := make([]api.Playlist, 0, len(ps))
	for i := range ps {
		out = append(out, ToAPIPlaylist(&ps[i]))
	}
	return out
}

// ToAPICollection omits created_at for implicit collections.
func ToAPICollection(c *model.CollectionView) api.Collection {
	out := api.Collection{
		Ref:        c.Ref.String(),
		Name:       c.Name,
		Visibility: string(c.Visibility),
		OwnerID:    c.OwnerID.String(),
		Videos:     ToAPIVideos(c.Videos),
	}
	if !c.CreatedAt.IsZero() {
		t := c.CreatedAt
		out.CreatedAt = &t
	}
	return out
}

func ToAPICollections(cs []model.CollectionView) []api.Collection {
	out := make([]api.Collection, 0, len(cs))
	for i := range cs {
		out = append(out, ToAPICollection(&cs[i]))
	}
	return out
}

func ToAPIHistoryEntry(e *model.HistoryEntry) api.HistoryEntry {
	out := api.HistoryEntry{
		VideoID:        e.VideoID.String(),
		SecondsWatched: e.SecondsWatched,
		UpdatedAt:      e.UpdatedAt,
	}
	if e.Video != nil {
		v := ToAPIVideo(e.Video)
		out.Video = &v
	}
	return out
}

func ToAPIHistory(es []model.HistoryEntry) []api.HistoryEntry {
	out := make([]api.HistoryEntry, 0, len(es))
	for i := range es {
		out = append(out, ToAPIHistoryEntry(&es[i]))
	}
	return out
}
