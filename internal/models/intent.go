package models

import "strings"

// Action is what the listener asked for.
type Action string

const (
	ActionPlayMusic          Action = "play_music"
	ActionSearchMusic        Action = "search_music"
	ActionGetRecommendations Action = "get_recommendations"
	ActionGetCurrentUser     Action = "get_current_user"
	ActionListDevices        Action = "list_devices"
	ActionUnknown            Action = "unknown"
)

// Actions lists every action in the order the intent tool schema enumerates them.
var Actions = []Action{
	ActionPlayMusic,
	ActionSearchMusic,
	ActionGetRecommendations,
	ActionGetCurrentUser,
	ActionListDevices,
	ActionUnknown,
}

// Valid reports whether a is one of [Actions].
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Source records which resolver path produced an [Intent].
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// ExtraMoodOrGenre flags a genre/mood request rather than a specific song.
const ExtraMoodOrGenre = "is_mood_or_genre"

// Intent is the structured form of one utterance. Treat it as immutable once resolved.
type Intent struct {
	Action Action         `json:"action"`
	Query  string         `json:"query"`
	Extras map[string]any `json:"extras"`
	Source Source         `json:"source"`
}

// UnknownIntent is the result when the primary path yields nothing usable.
func UnknownIntent() Intent {
	return Intent{Action: ActionUnknown, Query: "", Extras: map[string]any{}}
}

// IsMoodOrGenre reports whether the mood/genre flag is set, accepting a boolean or the string "true".
func (i Intent) IsMoodOrGenre() bool {
	switch v := i.Extras[ExtraMoodOrGenre].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

// WithSource returns a copy of i attributed to s.
func (i Intent) WithSource(s Source) Intent {
	extras := make(map[string]any, len(i.Extras))
	for k, v := range i.Extras {
		extras[k] = v
	}
	i.Extras = extras
	i.Source = s
	return i
}

// Mode is the playback strategy chosen for a resolved query.
type Mode string

const (
	ModeTrack    Mode = "track"
	ModeArtist   Mode = "artist"
	ModeMulti    Mode = "multi"
	ModePlaylist Mode = "playlist"
)

// PlaybackContext is what the transport reports after starting playback.
type PlaybackContext struct {
	DeviceID    string   `json:"device_id"`
	Shuffle     bool     `json:"shuffle"`
	TrackCount  int      `json:"track_count,omitempty"`
	Artists     []string `json:"artists,omitempty"`
	ArtistURI   string   `json:"artist_uri,omitempty"`
	PlaylistURI string   `json:"playlist_uri,omitempty"`
	Queued      int      `json:"queued,omitempty"`
}
