// Package invalidate derives cache tags from mutations and hands them to a revalidation backend.
package invalidate

import (
	"context"
	"sort"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

// Kind names a mutation that affects cached reads.
type Kind int

const (
	PlaylistCreated Kind = iota
	PlaylistUpdated
	PlaylistDeleted
	MembershipChanged
	VideoCreated
	VideoDeleted
	HistoryChanged
	UserUpserted
	UserDeleted
)

// Event describes one mutation. Collection is consulted only for MembershipChanged
// and the playlist events; VideoID only for video events.
type Event struct {
	Kind       Kind
	ActorID    uuid.UUID
	Collection model.CollectionRef
	VideoID    uuid.UUID
}

// Notifier is the revalidation backend. Delivery is best effort.
type Notifier interface {
	InvalidateTag(ctx context.Context, tag string) error
}

// Router computes tags for events and emits them through a Notifier.
type Router struct {
	n   Notifier
	log *zap.Logger
}

// NewRouter constructs a router; a nil logger disables failure logs.
func NewRouter(n Notifier, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{n: n, log: log}
}

// Invalidate emits every tag of ev and returns them. Failures are logged, never returned.
func (r *Router) Invalidate(ctx context.Context, ev Event) []string {
	tags := Tags(ev)
	for _, tag := range tags {
		if err := r.n.InvalidateTag(ctx, tag); err != nil {
			r.log.Warn("invalidate tag", zap.String("tag", tag), zap.Error(err))
		}
	}
	return tags
}

// Tags returns the deduplicated, sorted tag set of ev.
func Tags(ev Event) []string {
	u := ev.ActorID.String()
	set := map[string]struct{}{"feed:" + u: {}}
	add := func(tags ...string) {
		for _, t := range tags {
			set[t] = struct{}{}
		}
	}

	switch ev.Kind {
	case PlaylistCreated, PlaylistUpdated, PlaylistDeleted:
		add("playlists", "playlists:"+u, collectionTag(ev.Collection, u))
	case MembershipChanged:
		add(collectionTag(ev.Collection, u))
		if ev.Collection.Kind == model.KindPlaylist {
			add("playlists:" + u)
		}
	case VideoCreated, VideoDeleted:
		add("videos", "playlists", "video:"+ev.VideoID.String())
	case HistoryChanged:
		add("history:" + u)
	case UserUpserted:
		add("user:" + u)
	case UserDeleted:
		add("videos", "playlists", "playlists:"+u, "user:"+u)
	}

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func collectionTag(ref model.CollectionRef, user string) string {
	switch ref.Kind {
	case model.KindLiked:
		return "likedVideos:" + user
	case model.KindWatchLater:
		return "watchLater:" + user
	default:
		return "playlist:" + ref.PlaylistID.String()
	}
}
