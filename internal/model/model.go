// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Identity is what the identity provider vouches for: an external subject and its profile.
type Identity struct {
	ExternalID string // provider subject, stable across sessions
	Email      string
	Username   string // optional; a fallback is generated when empty
	Name       string
	AvatarURL  string
}

// User is the internal account record keyed by the provider subject.
type User struct {
	ID         uuid.UUID // PK
	ExternalID string    // unique
	Username   string    // unique
	Name       string
	Email      string
	AvatarURL  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Video references an externally hosted media item. Immutable except for deletion.
type Video struct {
	ID           uuid.UUID
	UserID       uuid.UUID // owner, FK -> users.id (cascade)
	Title        string
	ThumbnailURL string
	MediaID      string // external media id
	Duration     string // display form, "H:MM:SS" or "MM:SS"
	CreatedAt    time.Time
}

// NewVideo is the input for creating a video.
type NewVideo struct {
	MediaID string
	Title   string
}

// Visibility is the public/private flag of an explicit playlist.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Playlist is an explicit, user-created collection.
type Playlist struct {
	ID         uuid.UUID
	UserID     uuid.UUID // owner
	Name       string
	Visibility Visibility
	VideoCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HistoryEntry is the per-(user, video) watch progress.
type HistoryEntry struct {
	UserID         uuid.UUID
	VideoID        uuid.UUID
	SecondsWatched int
	UpdatedAt      time.Time
	Video          *Video // populated on listing
}

// ToggleResult reports the membership state after a toggle.
type ToggleResult struct {
	Added bool
}
