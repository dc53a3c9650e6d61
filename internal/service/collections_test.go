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

func TestCreatePlaylist_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := newUserID()

	if _, err := f.coll.CreatePlaylist(ctx, owner, "   ", model.VisibilityPublic, nil); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("empty name: want validation, got %v", err)
	}
	if _, err := f.coll.CreatePlaylist(ctx, owner, "x", "friends", nil); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bad visibility: want validation, got %v", err)
	}
	if _, err := f.coll.CreatePlaylist(ctx, uuid.Nil, "x", "", nil); !errors.Is(err, errs.ErrUnauthenticated) {
		t.Fatalf("anonymous: want unauthenticated, got %v", err)
	}
	if f.store.writes != 0 {
		t.Fatalf("validation must precede storage, got %d writes", f.store.writes)
	}
}

func TestCreatePlaylist_WithInitialVideo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := newUserID()
	v := f.store.addVideo(t, owner, "intro")

	p, err := f.coll.CreatePlaylist(ctx, owner, " Favorites ", "", &v.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "Favorites" || p.Visibility != model.VisibilityPrivate || p.VideoCount != 1 {
		t.Fatalf("unexpected playlist: %+v", p)
	}
	want := []string{"feed:" + owner.String(), "playlist:" + p.ID.String(), "playlists", "playlists:" + owner.String()}
	if got := f.rec.Tags(); !reflect.DeepEqual(got, want) {
		t.Fatalf("tags: got %v want %v", got, want)
	}

	view, err := f.coll.GetCollection(ctx, owner, model.ExplicitRef(p.ID))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Videos) != 1 || view.Videos[0].ID != v.ID {
		t.Fatalf("members: %+v", view.Videos)
	}
}

func TestRenameAndDelete_Ownership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a, b := newUserID(), newUserID()

	p, err := f.coll.CreatePlaylist(ctx, a, "Favorites", model.VisibilityPrivate, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.coll.RenamePlaylist(ctx, p.ID, b, "Mine now", model.VisibilityPublic); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("rename by non-owner: want forbidden, got %v", err)
	}
	if err := f.coll.DeletePlaylist(ctx, p.ID, b); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("delete by non-owner: want forbidden, got %v", err)
	}
	if _, err := f.coll.RenamePlaylist(ctx, p.ID, a, "", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("empty rename: want validation, got %v", err)
	}
	got := f.store.playlists[p.ID]
	if got.Name != "Favorites" || got.Visibility != model.VisibilityPrivate {
		t.Fatalf("playlist changed: %+v", got)
	}

	if _, err := f.coll.RenamePlaylist(ctx, uuid.Must(uuid.NewV4()), a, "x", ""); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("rename missing: want not found, got %v", err)
	}
}

func TestRenamePlaylist_SingleWrite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := newUserID()
	p, _ := f.coll.CreatePlaylist(ctx, a, "Old", model.VisibilityPrivate, nil)

	writes := f.store.writes
	got, err := f.coll.RenamePlaylist(ctx, p.ID, a, "New", model.VisibilityPublic)
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if f.store.writes-writes != 1 {
		t.Fatalf("rename + visibility must be one write, got %d", f.store.writes-writes)
	}
	if got.Name != "New" || got.Visibility != model.VisibilityPublic {
		t.Fatalf("unexpected: %+v", got)
	}

	// empty visibility keeps the current one
	got, err = f.coll.RenamePlaylist(ctx, p.ID, a, "Newer", "")
	if err != nil || got.Visibility != model.VisibilityPublic {
		t.Fatalf("keep visibility: %+v %v", got, err)
	}
}

func TestDeletePlaylist(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := newUserID()
	p, _ := f.coll.CreatePlaylist(ctx, a, "Tmp", model.VisibilityPublic, nil)

	if err := f.coll.DeletePlaylist(ctx, p.ID, a); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.coll.DeletePlaylist(ctx, p.ID, a); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second delete: want not found, got %v", err)
	}
}

func TestPersistenceErrorsAreWrapped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.writeErr = errors.New("connection refused")

	if _, err := f.coll.CreatePlaylist(ctx, newUserID(), "x", model.VisibilityPublic, nil); !errors.Is(err, errs.ErrPersistence) {
		t.Fatalf("want persistence, got %v", err)
	}
	if len(f.rec.Tags()) != 0 {
		t.Fatalf("failed writes must not invalidate: %v", f.rec.Tags())
	}
}

func TestImplicitCollection_EmptyAndPrivate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := newUserID()

	v, err := f.coll.ImplicitCollection(ctx, model.KindLiked, u)
	if err != nil {
		t.Fatalf("implicit: %v", err)
	}
	if v.Name != "Liked videos" || v.Ref.String() != "LL" || len(v.Videos) != 0 || v.Videos == nil {
		t.Fatalf("unexpected view: %+v", v)
	}
	if CanView(newUserID(), v) || CanView(uuid.Nil, v) || !CanView(u, v) {
		t.Fatal("implicit collections are owner-only")
	}
	if _, err := f.coll.ImplicitCollection(ctx, model.KindPlaylist, u); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("explicit kind: want validation, got %v", err)
	}
}

func TestListOwned_Order(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := newUserID()
	p1, _ := f.coll.CreatePlaylist(ctx, u, "first", model.VisibilityPublic, nil)
	p2, _ := f.coll.CreatePlaylist(ctx, u, "second", model.VisibilityPrivate, nil)
	_, _ = f.coll.CreatePlaylist(ctx, newUserID(), "someone else's", model.VisibilityPublic, nil)

	got, err := f.coll.ListOwned(ctx, u)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var refs []string
	for _, c := range got {
		refs = append(refs, c.Ref.String())
	}
	want := []string{"WL", "LL", p1.ID.String(), p2.ID.String()}
	if !reflect.DeepEqual(refs, want) {
		t.Fatalf("order: got %v want %v", refs, want)
	}
}

func TestCanView_PrivatePlaylist(t *testing.T) {
	owner := newUserID()
	private := &model.CollectionView{Ref: model.ExplicitRef(newUserID()), Visibility: model.VisibilityPrivate, OwnerID: owner}
	public := &model.CollectionView{Ref: model.ExplicitRef(newUserID()), Visibility: model.VisibilityPublic, OwnerID: owner}

	for i := 0; i < 20; i++ {
		if CanView(newUserID(), private) {
			t.Fatal("non-owner sees private playlist")
		}
	}
	if CanView(uuid.Nil, private) || !CanView(owner, private) {
		t.Fatal("private playlist visibility")
	}
	if !CanView(uuid.Nil, public) || !CanView(newUserID(), public) {
		t.Fatal("public playlist must be visible to all")
	}
	if CanView(owner, nil) {
		t.Fatal("nil collection")
	}
}

func TestChannelAndGetCollection_Visibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner, other := newUserID(), newUserID()
	pub, _ := f.coll.CreatePlaylist(ctx, owner, "pub", model.VisibilityPublic, nil)
	priv, _ := f.coll.CreatePlaylist(ctx, owner, "priv", model.VisibilityPrivate, nil)

	list, err := f.coll.ListChannelPlaylists(ctx, other, owner)
	if err != nil || len(list) != 1 || list[0].ID != pub.ID {
		t.Fatalf("channel for visitor: %+v %v", list, err)
	}
	list, _ = f.coll.ListChannelPlaylists(ctx, owner, owner)
	if len(list) != 2 {
		t.Fatalf("channel for owner: %+v", list)
	}

	if _, err := f.coll.GetCollection(ctx, other, model.ExplicitRef(priv.ID)); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("private read by visitor: want not found, got %v", err)
	}
	if _, err := f.coll.GetCollection(ctx, uuid.Nil, model.LikedRef()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("anonymous implicit read: want not found, got %v", err)
	}
	if v, err := f.coll.GetCollection(ctx, uuid.Nil, model.ExplicitRef(pub.ID)); err != nil || v.Name != "pub" {
		t.Fatalf("anonymous public read: %+v %v", v, err)
	}
}
