// Package grpcserver exposes the dktube.v1.Tube gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ncontiero/dk-tube-sub000/internal/api"
	"github.com/ncontiero/dk-tube-sub000/internal/convert"
	"github.com/ncontiero/dk-tube-sub000/internal/errs"
	"github.com/ncontiero/dk-tube-sub000/internal/identity"
	"github.com/ncontiero/dk-tube-sub000/internal/model"
	"github.com/ncontiero/dk-tube-sub000/internal/service"
)

// Users resolves the caller's internal account.
type Users interface {
	CurrentUser(ctx context.Context) (*model.User, error)
}

// Server wires services into gRPC handlers.
type Server struct {
	api.UnimplementedTubeServer
	users       Users
	collections service.CollectionService
	membership  service.MembershipService
	videos      service.VideoService
	history     service.HistoryService
	log         *zap.Logger
}

// New constructs a gRPC server with injected services.
func New(users Users, collections service.CollectionService, membership service.MembershipService,
	videos service.VideoService, history service.HistoryService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		users:       users,
		collections: collections,
		membership:  membership,
		videos:      videos,
		history:     history,
		log:         log,
	}
}

var _ api.TubeServer = (*Server)(nil)

// toStatus maps the error taxonomy onto gRPC codes with short messages.
func (s *Server) toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "no auth")
	case errors.Is(err, errs.ErrForbidden):
		return status.Error(codes.PermissionDenied, "not the owner")
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, errs.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, errs.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, "rate limited")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		s.log.Error(op, zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed", op)
	}
}

// actor returns the authenticated caller's internal id.
func (s *Server) actor(ctx context.Context) (uuid.UUID, error) {
	u, err := s.users.CurrentUser(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return u.ID, nil
}

// viewer is like actor but yields uuid.Nil for anonymous callers.
func (s *Server) viewer(ctx context.Context) (uuid.UUID, error) {
	if _, ok := identity.FromContext(ctx); !ok {
		return uuid.Nil, nil
	}
	return s.actor(ctx)
}

// --- Identity ---

// Me returns the caller's account, provisioning it on first call.
func (s *Server) Me(ctx context.Context, _ *api.Empty) (*api.MeResponse, error) {
	u, err := s.users.CurrentUser(ctx)
	if err != nil {
		return nil, s.toStatus("me", err)
	}
	return &api.MeResponse{User: convert.ToAPIUser(u)}, nil
}

// --- Collections ---

func (s *Server) CreatePlaylist(ctx context.Context, req *api.CreatePlaylistRequest) (*api.PlaylistResponse, error) {
	vis, err := convert.ParseVisibility(req.Visibility)
	if err != nil {
		return nil, s.toStatus("create playlist", err)
	}
	initial, err := convert.ParseOptionalID("initial_video_id", req.InitialVideoID)
	if err != nil {
		return nil, s.toStatus("create playlist", err)
	}
	uid, err := s.actor(ctx)
	if err != nil {
		return nil, s.toStatus("create playlist", err)
	}
	p, err := s.collections.CreatePlaylist(ctx, uid, req.Name, vis, initial)
	if err != nil {
		return nil, s.toStatus("create playlist", err)
	}
	return &api.PlaylistResponse{Playlist: convert.ToAPIPlaylist(p)}, nil
}

func (s *Server) RenamePlaylist(ctx context.Context, req *api.RenamePlaylistRequest) (*api.PlaylistResponse, error) {
	id, err := convert.ParseID("id", req.ID)
	if err != nil {
		return nil, s.toStatus("rename playlist", err)
	}
	vis, err := convert.ParseVisibility(req.Visibility)
	if err != nil {
		return nil, s.toStatus("rename playlist", err)
	}
	uid, err := s.actor(ctx)
	if err != nil {
		return nil, s.toStatus("rename playlist", err)
	}
	p, err := s.collections.RenamePlaylist(ctx, id, uid, req.Name, vis)
	if err != nil {
		return nil, s.toStatus("rename playlist", err)
	}
	return &api.PlaylistResponse{Playlist: convert.ToAPIPlaylist(p)}, nil
}

func (s *Server) DeletePlaylist(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	id, err := convert.ParseID("id", req.ID)
	if err != nil {
		return nil, s.toStatus("delete playlist", err)
	}
	uid, err := s.actor(ctx)
	if err != nil {
		return nil, s.toStatus("delete playlist", err)
	}
	if err := s.collections.DeletePlaylist(ctx, id, uid); err != nil {
		return nil, s.toStatus("delete playlist", err)
	}
	return &api.Empty{}, nil
}

// ListOwnedPlaylists returns the caller's feed: watch later, liked, then playlists.
func (s *Server) ListOwnedPlaylists(ctx context.Context, _ *api.Empty) (*api.ListOwnedPlaylistsResponse, error) {
	uid, err := s.actor(ctx)
	if err != nil {
		return nil, s.toStatus("list playlists", err)
	}
	cs, err := s.collections.ListOwned(ctx, uid)
	if err != nil {
		return nil, s.toStatus("list playlists", err)
	}
	return &api.ListOwnedPlaylistsResponse{Collections: convert.ToAPICollections(cs)}, nil
}

func (s *Server) ListChannelPlaylists(ctx context.Context, req *api.ListChannelRequest) (*api.ListPlaylistsResponse, error) {
	owner, err := convert.ParseID("user_id", req.UserID)
	if err != nil {
		return nil, s.toStatus("list channel playlists", err)
	}
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, s.toStatus("list channel playlists", err)
	}
	ps, err := s.collections.ListChannelPlaylists(ctx, viewer, owner)
	if err != nil {
		return nil, s.toStatus("list channel playlists", err)
	}
	return &api.ListPlaylistsResponse{Playlists: convert.ToAPIPlaylists(ps)}, nil
}

func (s *Server) GetCollection(ctx context.Context, req *api.GetCollectionRequest) (*api.CollectionResponse, error) {
	ref, err := convert.ParseRef(req.Ref)
	if err != nil {
		return nil, s.toStatus("get collection", err)
	}
	viewer, err := s.viewer(ctx)
	if err != nil {
		return nil, s.toStatus("get collection", err)
	}
	c, err := s.collections.GetCollection(ctx, viewer, ref)
	if err != nil {
		return nil, s.toStatus("get collection", err)
	}
	return &api.CollectionResponse{Collection: convert.ToAPICollection(c)}, nil
}

// --- Membership ---

func (s *Server) membershipArgs(ctx context.Context, req *api.MembershipRequest) (uuid.UUID, model.CollectionRef, uuid.UUID, error) {
	ref, err := convert.ParseRef(req.Ref)
	if err != nil {
		return uuid.Nil, ref, uuid.Nil, err
	}
	vid, err := convert.ParseID("video_id", req.VideoID)
	if err != nil {
		return uuid.Nil, ref, uuid.Nil, err
	}
	uid, err := s.actor(ctx)
	return uid, ref, vid, err
}

func (s *Server) ToggleMembership(ctx context.Context, req *api.MembershipRequest) (*api.ToggleMembershipResponse, error) {
	uid, ref, vid, err := s.membershipArgs(ctx, req)
	if err != nil {
		return nil, s.toStatus("toggle", err)
	}
	res, err := s.membership.Toggle(ctx, uid, ref, vid)
	if err != nil {
		return nil, s.toStatus("toggle", err)
	}
	return &api.ToggleMembershipResponse{Added: res.Added}, nil
}

func (s *Server) AddMembership(ctx context.Context, req *api.MembershipRequest) (*api.Empty, error) {
	uid, ref, vid, err := s.membershipArgs(ctx, req)
	if err != nil {
		return nil, s.toStatus("add", err)
	}
	if err := s.membership.Add(ctx, uid, ref, vid); err != nil {
		return nil, s.toStatus("add", err)
	}
	return &api.Empty{}, nil
}

func (s *Server) RemoveMembership(ctx context.Context, req *api.MembershipRequest) (*api.Empty, error) {
	uid, ref, vid, err := s.membershipArgs(ctx, req)
	if err != nil {
		return nil, s.toStatus("remove", err)
	}
	if err := s.membership.Remove(ctx, uid, ref, vid); err != nil {
		return nil, s.toStatus("remove", err)
	}
	return &api.Empty{}, nil
}

// --- Videos ---

func (s *Server) CreateVideo(ctx context.Context, req *api.CreateVideoRequest) (*api.VideoResponse, error) {
	uid, err := s.actor(ctx)
	if err != nil {
		return nil, s.toStatus("create video", err)
	}
	v, err := s.videos.CreateVideo(ctx, uid, model.NewVideo{MediaID: req.MediaID, Title: req.Title})
	if err != nil {
		return nil, s.toStatus("create video", err)
	}
	return &api.VideoResponse{Video: convert.ToAPIVideo(v)}, nil
}

func (s *Server) DeleteVideo(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	id, err := convert.ParseID("id", req.ID)
	if err != nil {
		return nil, s.toStatus("delete video", err)
	}
	uid, err := s.actor(ctx)
	if err != nil {
		return nil, s.toStatus("delete video", err)
	}
	if err := s.videos.DeleteVideo(ctx, id, uid); err != nil {
		return nil, s.toStatus("delete video", err)
	}
	return &api.Empty{}, nil
}

func (s *Server) GetVideo(ctx context.Context, req *api.IDRequest) (*api.VideoResponse, error) {
	id, err := convert.ParseID("id", req.ID)
	if err != nil {
		return nil, s.toStatus("get video", err)
	}
	v, err := s.videos.GetVideo(ctx, id)
	if err != nil {
		return nil, s.toStatus("get video", err)
	}
	return &api.VideoResponse{Video: convert.ToAPIVideo(v)}, nil
}

func (s *Server) ListChannelVideos(ctx context.Context, req *api.ListChannelRequest) (*api.ListVideosResponse, error) {
	owner, err := convert.ParseID("user_id", req.UserID)
	if err != nil {
		return nil, s.toStatus("list videos", err)
	}
	vs, err := s.videos.ListChannelVideos(ctx, owner)
	if err != nil {
		return nil, s.toStatus("list videos", err)
	}
	return &api.ListVideosResponse{Videos: convert.ToAPIVideos(vs)}, nil
}

func (s *Server) SearchVideos(ctx context.Context, req *api.SearchVideosRequest) (*api.ListVideosResponse, error) {
	vs, err := s.videos.SearchVideos(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, s.toStatus("search", err)
	}
	return &api.ListVideosResponse{Videos: convert.ToAPIVideos(vs)}, nil
}

// --- History ---

func (s *Server) SetHistory(ctx context.Context, req *api.SetHistoryRequest) (*api.HistoryEntryResponse, error) {
	vid, err := convert.ParseID("video_id", req.VideoID)
	if err != nil {
		return nil, s.toStatus("set history", err)
	}
	uid, err := s.actor(ctx)
	if err != nil {
		return nil, s.toStatus("set history", err)
	}
	e, err := s.history.SetHistory(ctx, uid, vid, req.SecondsWatched)
	if err != nil {
		return nil, s.toStatus("set history", err)
	}
	return &api.HistoryEntryResponse{Entry: convert.ToAPIHistoryEntry(e)}, nil
}

// RemoveHistory takes the video id in IDRequest.ID.
func (s *Server) RemoveHistory(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	vid, err := convert.ParseID("id", req.ID)
	if err != nil {
		return nil, s.toStatus("remove history", err)
	}
	uid, err := s.actor(ctx)
	if err != nil {
		return nil, s.toStatus("remove history", err)
	}
	if err := s.history.RemoveHistory(ctx, uid, vid); err != nil {
		return nil, s.toStatus("remove history", err)
	}
	return &api.Empty{}, nil
}

func (s *Server) ListHistory(ctx context.Context, _ *api.Empty) (*api.ListHistoryResponse, error) {
	uid, err := s.actor(ctx)
	if err != nil {
		return nil, s.toStatus("list history", err)
	}
	es, err := s.history.ListHistory(ctx, uid)
	if err != nil {
		return nil, s.toStatus("list history", err)
	}
	return &api.ListHistoryResponse{Entries: convert.ToAPIHistory(es)}, nil
}

func (s *Server) ClearHistory(ctx context.Context, _ *api.Empty) (*api.ClearHistoryResponse, error) {
	uid, err := s.actor(ctx)
	if err != nil {
		return nil, s.toStatus("clear history", err)
	}
	n, err := s.history.ClearHistory(ctx, uid)
	if err != nil {
		return nil, s.toStatus("clear history", err)
	}
	return &api.ClearHistoryResponse{Removed: n}, nil
}
