package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"github.com/ncontiero/dk-tube-sub000/internal/api"
)

type command func(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error

var commands = map[string]command{
	"me":            cmdMe,
	"playlists":     cmdPlaylists,
	"channel":       cmdChannel,
	"show":          cmdShow,
	"create":        cmdCreate,
	"rename":        cmdRename,
	"rm-playlist":   cmdDeletePlaylist,
	"toggle":        membershipCmd("toggle"),
	"add":           membershipCmd("add"),
	"remove":        membershipCmd("remove"),
	"videos":        cmdVideos,
	"video":         cmdVideo,
	"upload":        cmdUpload,
	"rm-video":      cmdDeleteVideo,
	"search":        cmdSearch,
	"history":       cmdHistory,
	"watch":         cmdWatch,
	"forget":        cmdForget,
	"clear-history": cmdClearHistory,
}

func flags(name string) *pflag.FlagSet {
	return pflag.NewFlagSet(name, pflag.ContinueOnError)
}

func cmdMe(ctx context.Context, cli *api.TubeClient, _ []string, out io.Writer) error {
	resp, err := cli.Me(ctx, &api.Empty{})
	if err != nil {
		return err
	}
	printJSON(out, resp.User)
	return nil
}

func cmdPlaylists(ctx context.Context, cli *api.TubeClient, _ []string, out io.Writer) error {
	resp, err := cli.ListOwnedPlaylists(ctx, &api.Empty{})
	if err != nil {
		return err
	}
	type row struct {
		Ref        string `json:"ref"`
		Name       string `json:"name"`
		Visibility string `json:"visibility"`
		Videos     int    `json:"videos"`
	}
	rows := make([]row, 0, len(resp.Collections))
	for _, c := range resp.Collections {
		rows = append(rows, row{Ref: c.Ref, Name: c.Name, Visibility: c.Visibility, Videos: len(c.Videos)})
	}
	printJSON(out, rows)
	return nil
}

func cmdChannel(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	fs := flags("channel")
	user := fs.String("user", "", "channel owner id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("user", *user); err != nil {
		return err
	}
	resp, err := cli.ListChannelPlaylists(ctx, &api.ListChannelRequest{UserID: *user})
	if err != nil {
		return err
	}
	printJSON(out, resp.Playlists)
	return nil
}

func cmdShow(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	fs := flags("show")
	ref := fs.String("ref", "", "WL, LL or playlist id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("ref", *ref); err != nil {
		return err
	}
	resp, err := cli.GetCollection(ctx, &api.GetCollectionRequest{Ref: *ref})
	if err != nil {
		return err
	}
	printJSON(out, resp.Collection)
	return nil
}

func cmdCreate(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	fs := flags("create")
	name := fs.String("name", "", "playlist name")
	vis := fs.String("visibility", "", "public or private (default private)")
	video := fs.String("video", "", "first video id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("name", *name); err != nil {
		return err
	}
	resp, err := cli.CreatePlaylist(ctx, &api.CreatePlaylistRequest{Name: *name, Visibility: *vis, InitialVideoID: *video})
	if err != nil {
		return err
	}
	printJSON(out, resp.Playlist)
	return nil
}

func cmdRename(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	fs := flags("rename")
	id := fs.String("id", "", "playlist id")
	name := fs.String("name", "", "new name")
	vis := fs.String("visibility", "", "public or private (default unchanged)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}
	if err := required("name", *name); err != nil {
		return err
	}
	resp, err := cli.RenamePlaylist(ctx, &api.RenamePlaylistRequest{ID: *id, Name: *name, Visibility: *vis})
	if err != nil {
		return err
	}
	printJSON(out, resp.Playlist)
	return nil
}

func cmdDeletePlaylist(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	return deleteByID(ctx, "rm-playlist", args, out, cli.DeletePlaylist)
}

func cmdDeleteVideo(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	return deleteByID(ctx, "rm-video", args, out, cli.DeleteVideo)
}

func deleteByID(ctx context.Context, name string, args []string, out io.Writer,
	call func(context.Context, *api.IDRequest, ...grpc.CallOption) (*api.Empty, error)) error {
	fs := flags(name)
	id := fs.String("id", "", "id to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}
	if _, err := call(ctx, &api.IDRequest{ID: *id}); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func membershipCmd(op string) command {
	return func(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
		fs := flags(op)
		ref := fs.String("ref", "", "WL, LL or playlist id")
		video := fs.String("video", "", "video id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := required("ref", *ref); err != nil {
			return err
		}
		if err := required("video", *video); err != nil {
			return err
		}
		req := &api.MembershipRequest{Ref: *ref, VideoID: *video}

		switch op {
		case "toggle":
			resp, err := cli.ToggleMembership(ctx, req)
			if err != nil {
				return err
			}
			if resp.Added {
				fmt.Fprintln(out, "added")
			} else {
				fmt.Fprintln(out, "removed")
			}
			return nil
		case "add":
			_, err := cli.AddMembership(ctx, req)
			if err != nil {
				return err
			}
		default:
			_, err := cli.RemoveMembership(ctx, req)
			if err != nil {
				return err
			}
		}
		fmt.Fprintln(out, "ok")
		return nil
	}
}

func cmdVideos(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	fs := flags("videos")
	user := fs.String("user", "", "channel owner id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("user", *user); err != nil {
		return err
	}
	resp, err := cli.ListChannelVideos(ctx, &api.ListChannelRequest{UserID: *user})
	if err != nil {
		return err
	}
	printJSON(out, resp.Videos)
	return nil
}

func cmdVideo(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	fs := flags("video")
	id := fs.String("id", "", "video id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}
	resp, err := cli.GetVideo(ctx, &api.IDRequest{ID: *id})
	if err != nil {
		return err
	}
	printJSON(out, resp.Video)
	return nil
}

func cmdUpload(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	fs := flags("upload")
	media := fs.String("media", "", "YouTube id or URL")
	title := fs.String("title", "", "video title")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("media", *media); err != nil {
		return err
	}
	if err := required("title", *title); err != nil {
		return err
	}
	resp, err := cli.CreateVideo(ctx, &api.CreateVideoRequest{MediaID: *media, Title: *title})
	if err != nil {
		return err
	}
	printJSON(out, resp.Video)
	return nil
}

func cmdSearch(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	fs := flags("search")
	q := fs.String("q", "", "query")
	limit := fs.Int("limit", 0, "max results (0 = server default)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	resp, err := cli.SearchVideos(ctx, &api.SearchVideosRequest{Query: *q, Limit: *limit})
	if err != nil {
		return err
	}
	printJSON(out, resp.Videos)
	return nil
}

func cmdHistory(ctx context.Context, cli *api.TubeClient, _ []string, out io.Writer) error {
	resp, err := cli.ListHistory(ctx, &api.Empty{})
	if err != nil {
		return err
	}
	printJSON(out, resp.Entries)
	return nil
}

func cmdWatch(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	fs := flags("watch")
	video := fs.String("video", "", "video id")
	secs := fs.Int("seconds", 0, "seconds watched")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("video", *video); err != nil {
		return err
	}
	resp, err := cli.SetHistory(ctx, &api.SetHistoryRequest{VideoID: *video, SecondsWatched: *secs})
	if err != nil {
		return err
	}
	printJSON(out, resp.Entry)
	return nil
}

func cmdForget(ctx context.Context, cli *api.TubeClient, args []string, out io.Writer) error {
	fs := flags("forget")
	video := fs.String("video", "", "video id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("video", *video); err != nil {
		return err
	}
	if _, err := cli.RemoveHistory(ctx, &api.IDRequest{ID: *video}); err != nil {
		return err
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func cmdClearHistory(ctx context.Context, cli *api.TubeClient, _ []string, out io.Writer) error {
	resp, err := cli.ClearHistory(ctx, &api.Empty{})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "removed %d\n", resp.Removed)
	return nil
}
