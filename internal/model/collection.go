package model

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
)

// CollectionKind distinguishes explicit playlists from the two implicit per-user sets.
type CollectionKind int

const (
	KindPlaylist CollectionKind = iota
	KindLiked
	KindWatchLater
)

// Wire ids of the implicit collections.
const (
	LikedRefID      = "LL"
	WatchLaterRefID = "WL"
)

func (k CollectionKind) String() string {
	switch k {
	case KindPlaylist:
		return "playlist"
	case KindLiked:
		return "liked"
	case KindWatchLater:
		return "watch_later"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Implicit reports whether the kind is backed by user edges rather than a playlist row.
func (k CollectionKind) Implicit() bool { return k == KindLiked || k == KindWatchLater }

// CollectionRef addresses a collection: Explicit(playlist id) or Implicit(kind).
type CollectionRef struct {
	Kind       CollectionKind
	PlaylistID uuid.UUID // set only for KindPlaylist
}

// ExplicitRef references a persisted playlist.
func ExplicitRef(id uuid.UUID) CollectionRef {
	return CollectionRef{Kind: KindPlaylist, PlaylistID: id}
}

// LikedRef references the caller's liked videos.
func LikedRef() CollectionRef { return CollectionRef{Kind: KindLiked} }

// WatchLaterRef references the caller's watch-later list.
func WatchLaterRef() CollectionRef { return CollectionRef{Kind: KindWatchLater} }

// ParseCollectionRef parses the wire form: "LL", "WL" or a playlist UUID.
func ParseCollectionRef(s string) (CollectionRef, error) {
	switch s {
	case LikedRefID:
		return LikedRef(), nil
	case WatchLaterRefID:
		return WatchLaterRef(), nil
	}
	id, err := uuid.FromString(s)
	if err != nil || id == uuid.Nil {
		return CollectionRef{}, fmt.Errorf("bad collection ref %q", s)
	}
	return ExplicitRef(id), nil
}

// String returns the wire form of the ref.
func (r CollectionRef) String() string {
	switch r.Kind {
	case KindLiked:
		return LikedRefID
	case KindWatchLater:
		return WatchLaterRefID
	default:
		return r.PlaylistID.String()
	}
}

// CollectionKey identifies one edge set in storage: a playlist, or an implicit set of a user.
type CollectionKey struct {
	Kind       CollectionKind
	PlaylistID uuid.UUID // KindPlaylist
	OwnerID    uuid.UUID // owner for every kind
}

// CollectionView is the uniform, playlist-shaped read model over explicit and implicit collections.
type CollectionView struct {
	Ref        CollectionRef
	Name       string
	Visibility Visibility
	OwnerID    uuid.UUID
	Videos     []Video
	CreatedAt  time.Time // zero for implicit collections
}

// ImplicitName is the display name of an implicit collection.
func ImplicitName(k CollectionKind) string {
	switch k {
	case KindLiked:
		return "Liked videos"
	case KindWatchLater:
		return "Watch later"
	default:
		return ""
	}
}
