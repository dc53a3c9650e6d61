package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/invalidate"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
	"github.com/ncontiero/dk-tube-sub000/internal/repository"
)

// memStore backs every fake repository so cross-table effects stay consistent.
type memStore struct {
	videos    map[uuid.UUID]model.Video
	playlists map[uuid.UUID]model.Playlist
	edges     map[model.CollectionKey][]uuid.UUID
	history   map[[2]uuid.UUID]model.HistoryEntry

	writeErr error // returned by every write when set
	clock    time.Time
	writes   int
}

func newMemStore() *memStore {
	return &memStore{
		videos:    map[uuid.UUID]model.Video{},
		playlists: map[uuid.UUID]model.Playlist{},
		edges:     map[model.CollectionKey][]uuid.UUID{},
		history:   map[[2]uuid.UUID]model.HistoryEntry{},
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) write() error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	return nil
}

func edgeKey(k model.CollectionKey) model.CollectionKey {
	if k.Kind == model.KindPlaylist {
		k.OwnerID = uuid.Nil
	}
	return k
}

func (m *memStore) addVideo(t *testing.T, owner uuid.UUID, title string) model.Video {
	t.Helper()
	v := model.Video{ID: uuid.Must(uuid.NewV4()), UserID: owner, Title: title, MediaID: "dQw4w9WgXcQ", CreatedAt: m.tick()}
	m.videos[v.ID] = v
	return v
}

type fakeVideos struct{ *memStore }

var _ repository.VideoRepository = fakeVideos{}

func (f fakeVideos) Create(_ context.Context, v *model.Video) error {
	if err := f.write(); err != nil {
		return err
	}
	v.CreatedAt = f.tick()
	f.videos[v.ID] = *v
	return nil
}

func (f fakeVideos) GetByID(_ context.Context, id uuid.UUID) (*model.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &v, nil
}

func (f fakeVideos) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	if err := f.write(); err != nil {
		return err
	}
	v, ok := f.videos[id]
	if !ok || v.UserID != ownerID {
		return errs.ErrNotFound
	}
	delete(f.videos, id)
	for k, ids := range f.edges {
		f.edges[k] = without(ids, id)
	}
	return nil
}

func (f fakeVideos) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Video, error) {
	out := []model.Video{}
	for _, v := range f.videos {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeVideos) ListRecent(_ context.Context, limit int) ([]model.Video, error) {
	out := []model.Video{}
	for _, v := range f.videos {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePlaylists struct{ *memStore }

var _ repository.PlaylistRepository = fakePlaylists{}

func (f fakePlaylists) Create(_ context.Context, p *model.Playlist, initialVideo *uuid.UUID) error {
	if err := f.write(); err != nil {
		return err
	}
	if initialVideo != nil {
		if _, ok := f.videos[*initialVideo]; !ok {
			return errs.ErrNotFound
		}
		f.edges[edgeKey(model.CollectionKey{Kind: model.KindPlaylist, PlaylistID: p.ID})] = []uuid.UUID{*initialVideo}
	}
	p.CreatedAt = f.tick()
	p.UpdatedAt = p.CreatedAt
	f.playlists[p.ID] = *p
	return nil
}

func (f fakePlaylists) GetByID(_ context.Context, id uuid.UUID) (*model.Playlist, error) {
	p, ok := f.playlists[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	p.VideoCount = len(f.edges[model.CollectionKey{Kind: model.KindPlaylist, PlaylistID: id}])
	return &p, nil
}

func (f fakePlaylists) Update(_ context.Context, p *model.Playlist) error {
	if err := f.write(); err != nil {
		return err
	}
	cur, ok := f.playlists[p.ID]
	if !ok || cur.UserID != p.UserID {
		return errs.ErrNotFound
	}
	cur.Name, cur.Visibility, cur.UpdatedAt = p.Name, p.Visibility, f.tick()
	f.playlists[p.ID] = cur
	p.UpdatedAt = cur.UpdatedAt
	return nil
}

func (f fakePlaylists) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	if err := f.write(); err != nil {
		return err
	}
	p, ok := f.playlists[id]
	if !ok || p.UserID != ownerID {
		return errs.ErrNotFound
	}
	delete(f.playlists, id)
	delete(f.edges, model.CollectionKey{Kind: model.KindPlaylist, PlaylistID: id})
	return nil
}

func (f fakePlaylists) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Playlist, error) {
	out := []model.Playlist{}
	for _, p := range f.playlists {
		if p.UserID == userID {
			p.VideoCount = len(f.edges[model.CollectionKey{Kind: model.KindPlaylist, PlaylistID: p.ID}])
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeMembers struct{ *memStore }

var _ repository.MembershipRepository = fakeMembers{}

func (f fakeMembers) Members(_ context.Context, key model.CollectionKey) ([]model.Video, error) {
	out := []model.Video{}
	for _, id := range f.edges[edgeKey(key)] {
		out = append(out, f.videos[id])
	}
	return out, nil
}

func (f fakeMembers) Connect(_ context.Context, key model.CollectionKey, videoID uuid.UUID) error {
	if err := f.write(); err != nil {
		return err
	}
	if _, ok := f.videos[videoID]; !ok {
		return errs.ErrNotFound
	}
	k := edgeKey(key)
	for _, id := range f.edges[k] {
		if id == videoID {
			return nil
		}
	}
	f.edges[k] = append(f.edges[k], videoID)
	return nil
}

func (f fakeMembers) Disconnect(_ context.Context, key model.CollectionKey, videoID uuid.UUID) (bool, error) {
	if err := f.write(); err != nil {
		return false, err
	}
	k := edgeKey(key)
	before := len(f.edges[k])
	f.edges[k] = without(f.edges[k], videoID)
	return len(f.edges[k]) < before, nil
}

type fakeHistory struct{ *memStore }

var _ repository.HistoryRepository = fakeHistory{}

func (f fakeHistory) Upsert(_ context.Context, e *model.HistoryEntry) error {
	if err := f.write(); err != nil {
		return err
	}
	if _, ok := f.videos[e.VideoID]; !ok {
		return errs.ErrNotFound
	}
	e.UpdatedAt = f.tick()
	f.history[[2]uuid.UUID{e.UserID, e.VideoID}] = *e
	return nil
}

func (f fakeHistory) Delete(_ context.Context, userID, videoID uuid.UUID) error {
	if err := f.write(); err != nil {
		return err
	}
	k := [2]uuid.UUID{userID, videoID}
	if _, ok := f.history[k]; !ok {
		return errs.ErrNotFound
	}
	delete(f.history, k)
	return nil
}

func (f fakeHistory) ListByUser(_ context.Context, userID uuid.UUID) ([]model.HistoryEntry, error) {
	out := []model.HistoryEntry{}
	for _, e := range f.history {
		if e.UserID == userID {
			v := f.videos[e.VideoID]
			e.Video = &v
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f fakeHistory) Clear(_ context.Context, userID uuid.UUID) (int64, error) {
	if err := f.write(); err != nil {
		return 0, err
	}
	var n int64
	for k, e := range f.history {
		if e.UserID == userID {
			delete(f.history, k)
			n++
		}
	}
	return n, nil
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

type fixture struct {
	store *memStore
	rec   *invalidate.Recorder
	coll  *CollectionServiceImpl
	mem   *MembershipServiceImpl
	hist  *HistoryServiceImpl
}

func newFixture() *fixture {
	st := newMemStore()
	rec := &invalidate.Recorder{}
	inv := invalidate.NewRouter(rec, nil)
	return &fixture{
		store: st,
		rec:   rec,
		coll:  NewCollectionService(fakePlaylists{st}, fakeMembers{st}, inv),
		mem:   NewMembershipService(fakePlaylists{st}, fakeMembers{st}, inv),
		hist:  NewHistoryService(fakeHistory{st}, inv),
	}
}

func newUserID() uuid.UUID { return uuid.Must(uuid.NewV4()) }
