package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var errInvalidModel = errors.New("invalid model")

// User is a listener keyed by Spotify user id.
type User struct {
	base
	SpotifyID   string
	DisplayName string
	Email       string
	Country     string
	Product     string
}

// NewUser creates a [User] from a Spotify profile.
func NewUser(sequence int, profile UserProfile) *User {
	return &User{
		base:        newBase(sequence),
		SpotifyID:   profile.ID,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		Country:     profile.Country,
		Product:     profile.Product,
	}
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.SpotifyID) == "" {
		return fmt.Errorf("%w: spotify id is required", errInvalidModel)
	}
	return nil
}

// MoodRequest is a message sent to the resolver and what it resolved to.
//
// ResolvedAction holds the playback mode when one was chosen, otherwise the intent action.
type MoodRequest struct {
	base
	UserID          string
	Message         string
	ResolvedAction  string
	ResolvedQuery   string
	IntentSource    string
	SimilarityScore *float64
}

// NewMoodRequest records message and the intent it resolved to.
func NewMoodRequest(message string, intent Intent, query string, mode Mode) *MoodRequest {
	action := string(intent.Action)
	if mode != "" {
		action = string(mode)
	}
	return &MoodRequest{
		base:           newBase(0),
		Message:        message,
		ResolvedAction: action,
		ResolvedQuery:  query,
		IntentSource:   string(intent.Source),
	}
}

func (m *MoodRequest) Validate() error {
	if strings.TrimSpace(m.Message) == "" {
		return fmt.Errorf("%w: message is required", errInvalidModel)
	}
	return nil
}

// ConnectedPlaylist is a playlist the listener can start by saying its name.
type ConnectedPlaylist struct {
	base
	Name string
	URI  string
}

// NewConnectedPlaylist creates a [ConnectedPlaylist].
func NewConnectedPlaylist(name, uri string) *ConnectedPlaylist {
	return &ConnectedPlaylist{base: newBase(0), Name: strings.TrimSpace(name), URI: strings.TrimSpace(uri)}
}

// NameKey is the case-insensitive lookup key for name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (p *ConnectedPlaylist) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: playlist name is required", errInvalidModel)
	}
	if !strings.HasPrefix(p.URI, "spotify:playlist:") {
		return fmt.Errorf("%w: playlist uri must start with spotify:playlist:", errInvalidModel)
	}
	return nil
}

// TrackPlay is one row of track history.
type TrackPlay struct {
	base
	UserID  string
	TrackID string
	Name    string
	Artists []string
	Album   string
	URI     string
	Action  string
}

// NewTrackPlay records that track was started with the given action (e.g. the playback mode).
func NewTrackPlay(userID string, track Track, action string) *TrackPlay {
	return &TrackPlay{
		base:    newBase(0),
		UserID:  userID,
		TrackID: track.ID,
		Name:    track.Name,
		Artists: track.Artists,
		Album:   track.Album,
		URI:     track.URI,
		Action:  action,
	}
}

// PlayedAt is when the track was started.
func (p *TrackPlay) PlayedAt() time.Time { return p.createdAt }

func (p *TrackPlay) Validate() error {
	if p.TrackID == "" || p.Name == "" {
		return fmt.Errorf("%w: track id and name are required", errInvalidModel)
	}
	return nil
}
