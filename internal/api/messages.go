package api

import "time"

type Empty struct{}

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type Video struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnail_url"`
	MediaID      string    `json:"media_id"`
	Duration     string    `json:"duration"`
	CreatedAt    time.Time `json:"created_at"`
}

type Playlist struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Visibility string    `json:"visibility"`
	VideoCount int       `json:"video_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Collection is an explicit playlist or an implicit collection ("LL", "WL").
type Collection struct {
	Ref        string     `json:"ref"`
	Name       string     `json:"name"`
	Visibility string     `json:"visibility"`
	OwnerID    string     `json:"owner_id"`
	Videos     []Video    `json:"videos"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

type HistoryEntry struct {
	VideoID        string    `json:"video_id"`
	SecondsWatched int       `json:"seconds_watched"`
	UpdatedAt      time.Time `json:"updated_at"`
	Video          *Video    `json:"video,omitempty"`
}

type MeResponse struct {
	User User `json:"user"`
}

type IDRequest struct {
	ID string `json:"id"`
}

type CreatePlaylistRequest struct {
	Name           string `json:"name"`
	Visibility     string `json:"visibility,omitempty"`
	InitialVideoID string `json:"initial_video_id,omitempty"`
}

type RenamePlaylistRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Visibility string `json:"visibility,omitempty"`
}

type PlaylistResponse struct {
	Playlist Playlist `json:"playlist"`
}

type ListOwnedPlaylistsResponse struct {
	Collections []Collection `json:"collections"`
}

type ListChannelRequest struct {
	UserID string `json:"user_id"`
}

type ListPlaylistsResponse struct {
	Playlists []Playlist `json:"playlists"`
}

type GetCollectionRequest struct {
	Ref string `json:"ref"`
}

type CollectionResponse struct {
	Collection Collection `json:"collection"`
}

type MembershipRequest struct {
	Ref     string `json:"ref"`
	VideoID string `json:"video_id"`
}

type ToggleMembershipResponse struct {
	Added bool `json:"added"`
}

type CreateVideoRequest struct {
	MediaID string `json:"media_id"`
	Title   string `json:"title"`
}

type VideoResponse struct {
	Video Video `json:"video"`
}

type ListVideosResponse struct {
	Videos []Video `json:"videos"`
}

type SearchVideosRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type SetHistoryRequest struct {
	VideoID        string `json:"video_id"`
	SecondsWatched int    `json:"seconds_watched"`
}

type HistoryEntryResponse struct {
	Entry HistoryEntry `json:"entry"`
}

type ListHistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

type ClearHistoryResponse struct {
	Removed int64 `json:"removed"`
}
