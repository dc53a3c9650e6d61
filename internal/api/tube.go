package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "dktube.v1.Tube"

// FullMethod returns "/dktube.v1.Tube/<method>".
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// TubeServer is the server API of dktube.v1.Tube.
type TubeServer interface {
	Me(context.Context, *Empty) (*MeResponse, error)

	CreatePlaylist(context.Context, *CreatePlaylistRequest) (*PlaylistResponse, error)
	RenamePlaylist(context.Context, *RenamePlaylistRequest) (*PlaylistResponse, error)
	DeletePlaylist(context.Context, *IDRequest) (*Empty, error)
	ListOwnedPlaylists(context.Context, *Empty) (*ListOwnedPlaylistsResponse, error)
	ListChannelPlaylists(context.Context, *ListChannelRequest) (*ListPlaylistsResponse, error)
	GetCollection(context.Context, *GetCollectionRequest) (*CollectionResponse, error)

	ToggleMembership(context.Context, *MembershipRequest) (*ToggleMembershipResponse, error)
	AddMembership(context.Context, *MembershipRequest) (*Empty, error)
	RemoveMembership(context.Context, *MembershipRequest) (*Empty, error)

	CreateVideo(context.Context, *CreateVideoRequest) (*VideoResponse, error)
	DeleteVideo(context.Context, *IDRequest) (*Empty, error)
	GetVideo(context.Context, *IDRequest) (*VideoResponse, error)
	ListChannelVideos(context.Context, *ListChannelRequest) (*ListVideosResponse, error)
	SearchVideos(context.Context, *SearchVideosRequest) (*ListVideosResponse, error)

	SetHistory(context.Context, *SetHistoryRequest) (*HistoryEntryResponse, error)
	RemoveHistory(context.Context, *IDRequest) (*Empty, error)
	ListHistory(context.Context, *Empty) (*ListHistoryResponse, error)
	ClearHistory(context.Context, *Empty) (*ClearHistoryResponse, error)
}

// UnimplementedTubeServer answers every method with codes.Unimplemented.
type UnimplementedTubeServer struct{}

func unimplemented(m string) error { return status.Errorf(codes.Unimplemented, "method %s not implemented", m) }

func (UnimplementedTubeServer) Me(context.Context, *Empty) (*MeResponse, error) {
	return nil, unimplemented("Me")
}
func (UnimplementedTubeServer) CreatePlaylist(context.Context, *CreatePlaylistRequest) (*PlaylistResponse, error) {
	return nil, unimplemented("CreatePlaylist")
}
func (UnimplementedTubeServer) RenamePlaylist(context.Context, *RenamePlaylistRequest) (*PlaylistResponse, error) {
	return nil, unimplemented("RenamePlaylist")
}
func (UnimplementedTubeServer) DeletePlaylist(context.Context, *IDRequest) (*Empty, error) {
	return nil, unimplemented("DeletePlaylist")
}
func (UnimplementedTubeServer) ListOwnedPlaylists(context.Context, *Empty) (*ListOwnedPlaylistsResponse, error) {
	return nil, unimplemented("ListOwnedPlaylists")
}
func (UnimplementedTubeServer) ListChannelPlaylists(context.Context, *ListChannelRequest) (*ListPlaylistsResponse, error) {
	return nil, unimplemented("ListChannelPlaylists")
}
func (UnimplementedTubeServer) GetCollection(context.Context, *GetCollectionRequest) (*CollectionResponse, error) {
	return nil, unimplemented("GetCollection")
}
func (UnimplementedTubeServer) ToggleMembership(context.Context, *MembershipRequest) (*ToggleMembershipResponse, error) {
	return nil, unimplemented("ToggleMembership")
}
func (UnimplementedTubeServer) AddMembership(context.Context, *MembershipRequest) (*Empty, error) {
	return nil, unimplemented("AddMembership")
}
func (UnimplementedTubeServer) RemoveMembership(context.Context, *MembershipRequest) (*Empty, error) {
	return nil, unimplemented("RemoveMembership")
}
func (UnimplementedTubeServer) CreateVideo(context.Context, *CreateVideoRequest) (*VideoResponse, error) {
	return nil, unimplemented("CreateVideo")
}
func (UnimplementedTubeServer) DeleteVideo(context.Context, *IDRequest) (*Empty, error) {
	return nil, unimplemented("DeleteVideo")
}
func (UnimplementedTubeServer) GetVideo(context.Context, *IDRequest) (*VideoResponse, error) {
	return nil, unimplemented("GetVideo")
}
func (UnimplementedTubeServer) ListChannelVideos(context.Context, *ListChannelRequest) (*ListVideosResponse, error) {
	return nil, unimplemented("ListChannelVideos")
}
func (UnimplementedTubeServer) SearchVideos(context.Context, *SearchVideosRequest) (*ListVideosResponse, error) {
	return nil, unimplemented("SearchVideos")
}
func (UnimplementedTubeServer) SetHistory(context.Context, *SetHistoryRequest) (*HistoryEntryResponse, error) {
	return nil, unimplemented("SetHistory")
}
func (UnimplementedTubeServer) RemoveHistory(context.Context, *IDRequest) (*Empty, error) {
	return nil, unimplemented("RemoveHistory")
}
func (UnimplementedTubeServer) ListHistory(context.Context, *Empty) (*ListHistoryResponse, error) {
	return nil, unimplemented("ListHistory")
}
func (UnimplementedTubeServer) ClearHistory(context.Context, *Empty) (*ClearHistoryResponse, error) {
	return nil, unimplemented("ClearHistory")
}

func unary[Req, Resp any](name string, call func(TubeServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TubeServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TubeServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// TubeServiceDesc describes dktube.v1.Tube for grpc.Server.RegisterService.
var TubeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TubeServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Me", TubeServer.Me),
		unary("CreatePlaylist", TubeServer.CreatePlaylist),
		unary("RenamePlaylist", TubeServer.RenamePlaylist),
		unary("DeletePlaylist", TubeServer.DeletePlaylist),
		unary("ListOwnedPlaylists", TubeServer.ListOwnedPlaylists),
		unary("ListChannelPlaylists", TubeServer.ListChannelPlaylists),
		unary("GetCollection", TubeServer.GetCollection),
		unary("ToggleMembership", TubeServer.ToggleMembership),
		unary("AddMembership", TubeServer.AddMembership),
		unary("RemoveMembership", TubeServer.RemoveMembership),
		unary("CreateVideo", TubeServer.CreateVideo),
		unary("DeleteVideo", TubeServer.DeleteVideo),
		unary("GetVideo", TubeServer.GetVideo),
		unary("ListChannelVideos", TubeServer.ListChannelVideos),
		unary("SearchVideos", TubeServer.SearchVideos),
		unary("SetHistory", TubeServer.SetHistory),
		unary("RemoveHistory", TubeServer.RemoveHistory),
		unary("ListHistory", TubeServer.ListHistory),
		unary("ClearHistory", TubeServer.ClearHistory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dktube/v1/tube",
}

// RegisterTubeServer registers srv on s.
func RegisterTubeServer(s grpc.ServiceRegistrar, srv TubeServer) {
	s.RegisterService(&TubeServiceDesc, srv)
}

// TubeClient is the client stub of dktube.v1.Tube. Calls use the JSON codec.
type TubeClient struct {
	cc grpc.ClientConnInterface
}

// NewTubeClient wraps a connection.
func NewTubeClient(cc grpc.ClientConnInterface) *TubeClient { return &TubeClient{cc: cc} }

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, append(CallOptions(), opts...)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TubeClient) Me(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*MeResponse, error) {
	return invoke[MeResponse](ctx, c.cc, "Me", in, opts)
}
func (c *TubeClient) CreatePlaylist(ctx context.Context, in *CreatePlaylistRequest, opts ...grpc.CallOption) (*PlaylistResponse, error) {
	return invoke[PlaylistResponse](ctx, c.cc, "CreatePlaylist", in, opts)
}
func (c *TubeClient) RenamePlaylist(ctx context.Context, in *RenamePlaylistRequest, opts ...grpc.CallOption) (*PlaylistResponse, error) {
	return invoke[PlaylistResponse](ctx, c.cc, "RenamePlaylist", in, opts)
}
func (c *TubeClient) DeletePlaylist(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeletePlaylist", in, opts)
}
func (c *TubeClient) ListOwnedPlaylists(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListOwnedPlaylistsResponse, error) {
	return invoke[ListOwnedPlaylistsResponse](ctx, c.cc, "ListOwnedPlaylists", in, opts)
}
func (c *TubeClient) ListChannelPlaylists(ctx context.Context, in *ListChannelRequest, opts ...grpc.CallOption) (*ListPlaylistsResponse, error) {
	return invoke[ListPlaylistsResponse](ctx, c.cc, "ListChannelPlaylists", in, opts)
}
func (c *TubeClient) GetCollection(ctx context.Context, in *GetCollectionRequest, opts ...grpc.CallOption) (*CollectionResponse, error) {
	return invoke[CollectionResponse](ctx, c.cc, "GetCollection", in, opts)
}
func (c *TubeClient) ToggleMembership(ctx context.Context, in *MembershipRequest, opts ...grpc.CallOption) (*ToggleMembershipResponse, error) {
	return invoke[ToggleMembershipResponse](ctx, c.cc, "ToggleMembership", in, opts)
}
func (c *TubeClient) AddMembership(ctx context.Context, in *MembershipRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "AddMembership", in, opts)
}
func (c *TubeClient) RemoveMembership(ctx context.Context, in *MembershipRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "RemoveMembership", in, opts)
}
func (c *TubeClient) CreateVideo(ctx context.Context, in *CreateVideoRequest, opts ...grpc.CallOption) (*VideoResponse, error) {
	return invoke[VideoResponse](ctx, c.cc, "CreateVideo", in, opts)
}
func (c *TubeClient) DeleteVideo(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteVideo", in, opts)
}
func (c *TubeClient) GetVideo(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*VideoResponse, error) {
	return invoke[VideoResponse](ctx, c.cc, "GetVideo", in, opts)
}
func (c *TubeClient) ListChannelVideos(ctx context.Context, in *ListChannelRequest, opts ...grpc.CallOption) (*ListVideosResponse, error) {
	return invoke[ListVideosResponse](ctx, c.cc, "ListChannelVideos", in, opts)
}
func (c *TubeClient) SearchVideos(ctx context.Context, in *SearchVideosRequest, opts ...grpc.CallOption) (*ListVideosResponse, error) {
	return invoke[ListVideosResponse](ctx, c.cc, "SearchVideos", in, opts)
}
func (c *TubeClient) SetHistory(ctx context.Context, in *SetHistoryRequest, opts ...grpc.CallOption) (*HistoryEntryResponse, error) {
	return invoke[HistoryEntryResponse](ctx, c.cc, "SetHistory", in, opts)
}
func (c *TubeClient) RemoveHistory(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "RemoveHistory", in, opts)
}
func (c *TubeClient) ListHistory(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListHistoryResponse, error) {
	return invoke[ListHistoryResponse](ctx, c.cc, "ListHistory", in, opts)
}
func (c *TubeClient) ClearHistory(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ClearHistoryResponse, error) {
	return invoke[ClearHistoryResponse](ctx, c.cc, "ClearHistory", in, opts)
}
