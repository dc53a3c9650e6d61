package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

func TestToggle_LikedScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := newUserID()
	x := f.store.addVideo(t, newUserID(), "X")

	r, err := f.mem.Toggle(ctx, u, model.LikedRef(), x.ID)
	if err != nil || !r.Added {
		t.Fatalf("first toggle: %+v %v", r, err)
	}
	want := []string{"feed:" + u.String(), "likedVideos:" + u.String()}
	if got := f.rec.Tags(); !reflect.DeepEqual(got, want) {
		t.Fatalf("tags: got %v want %v", got, want)
	}

	r, err = f.mem.Toggle(ctx, u, model.LikedRef(), x.ID)
	if err != nil || r.Added {
		t.Fatalf("second toggle: %+v %v", r, err)
	}
	liked, _ := f.coll.ImplicitCollection(ctx, model.KindLiked, u)
	if len(liked.Videos) != 0 {
		t.Fatalf("liked set still has X: %+v", liked.Videos)
	}
}

func TestToggle_EvenNumberRestoresState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := newUserID()
	p, _ := f.coll.CreatePlaylist(ctx, u, "mix", model.VisibilityPublic, nil)
	refs := []model.CollectionRef{model.LikedRef(), model.WatchLaterRef(), model.ExplicitRef(p.ID)}

	for _, ref := range refs {
		for _, start := range []bool{false, true} {
			v := f.store.addVideo(t, u, "v")
			if start {
				if err := f.mem.Add(ctx, u, ref, v.ID); err != nil {
					t.Fatalf("seed: %v", err)
				}
			}
			for i := 0; i < 4; i++ {
				r, err := f.mem.Toggle(ctx, u, ref, v.ID)
				if err != nil {
					t.Fatalf("%s toggle %d: %v", ref, i, err)
				}
				if r.Added != (start == (i%2 == 1)) {
					t.Fatalf("%s toggle %d from %v: added=%v", ref, i, start, r.Added)
				}
			}
			key := model.CollectionKey{Kind: ref.Kind, PlaylistID: ref.PlaylistID, OwnerID: u}
			members, _ := fakeMembers{f.store}.Members(ctx, key)
			in := false
			for _, m := range members {
				in = in || m.ID == v.ID
			}
			if in != start {
				t.Fatalf("%s: membership %v after even toggles, want %v", ref, in, start)
			}
		}
	}
}

func TestToggle_Authorization(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a, b := newUserID(), newUserID()
	v := f.store.addVideo(t, a, "v")
	p, _ := f.coll.CreatePlaylist(ctx, a, "a's", model.VisibilityPublic, nil)

	if _, err := f.mem.Toggle(ctx, b, model.ExplicitRef(p.ID), v.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("foreign playlist: want forbidden, got %v", err)
	}
	if _, err := f.mem.Toggle(ctx, a, model.ExplicitRef(uuid.Must(uuid.NewV4())), v.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing playlist: want not found, got %v", err)
	}
	if _, err := f.mem.Toggle(ctx, uuid.Nil, model.LikedRef(), v.ID); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("anonymous: want unauthenticated, got %v", err)
	}
	if _, err := f.mem.Toggle(ctx, a, model.LikedRef(), uuid.Nil); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("nil video: want validation, got %v", err)
	}
	if _, err := f.mem.Toggle(ctx, a, model.LikedRef(), uuid.Must(uuid.NewV4())); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing video: want not found, got %v", err)
	}

	// implicit collections are the actor's own: b liking a's video touches b's set only
	if r, err := f.mem.Toggle(ctx, b, model.LikedRef(), v.ID); err != nil || !r.Added {
		t.Fatalf("b likes: %+v %v", r, err)
	}
	aLiked, _ := f.coll.ImplicitCollection(ctx, model.KindLiked, a)
	if len(aLiked.Videos) != 0 {
		t.Fatalf("a's liked set changed: %+v", aLiked.Videos)
	}
}

func TestToggle_PersistenceFailureLeavesState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := newUserID()
	v := f.store.addVideo(t, u, "v")

	f.store.writeErr = errors.New("disk full")
	if _, err := f.mem.Toggle(ctx, u, model.WatchLaterRef(), v.ID); !errors.Is(err, errs.ErrPersistence) {
		t.Fatalf("want persistence, got %v", err)
	}
	wl, _ := f.coll.ImplicitCollection(ctx, model.KindWatchLater, u)
	if len(wl.Videos) != 0 || len(f.rec.Tags()) != 0 {
		t.Fatalf("partial state: %+v tags=%v", wl.Videos, f.rec.Tags())
	}
}

func TestRemoveAndAdd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := newUserID()
	v := f.store.addVideo(t, u, "v")
	ref := model.WatchLaterRef()

	if err := f.mem.Remove(ctx, u, ref, v.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("remove absent: want not found, got %v", err)
	}
	if err := f.mem.Add(ctx, u, ref, v.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	f.rec.Reset()
	if err := f.mem.Add(ctx, u, ref, v.ID); err != nil {
		t.Fatalf("add twice: %v", err)
	}
	if len(f.rec.Tags()) != 0 {
		t.Fatalf("no-op add must not invalidate: %v", f.rec.Tags())
	}
	wl, _ := f.coll.ImplicitCollection(ctx, model.KindWatchLater, u)
	if len(wl.Videos) != 1 {
		t.Fatalf("set semantics violated: %+v", wl.Videos)
	}

	if err := f.mem.Remove(ctx, u, ref, v.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	wl, _ = f.coll.ImplicitCollection(ctx, model.KindWatchLater, u)
	if len(wl.Videos) != 0 {
		t.Fatalf("still member after remove: %+v", wl.Videos)
	}
}

func TestMembership_ExplicitTags(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := newUserID()
	v := f.store.addVideo(t, u, "v")
	p, _ := f.coll.CreatePlaylist(ctx, u, "p", model.VisibilityPublic, nil)
	f.rec.Reset()

	if _, err := f.mem.Toggle(ctx, u, model.ExplicitRef(p.ID), v.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	want := []string{"feed:" + u.String(), "playlist:" + p.ID.String(), "playlists:" + u.String()}
	if got := f.rec.Tags(); !reflect.DeepEqual(got, want) {
		t.Fatalf("tags: got %v want %v", got, want)
	}
}
