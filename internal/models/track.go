package models

// Track is a catalog track as returned by search and top-tracks.
//
// Popularity is nil when the catalog omitted it; Rank is only set for top tracks.
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	URI         string   `json:"uri"`
	Artists     []string `json:"artists"`
	ArtistURIs  []string `json:"artist_uris"`
	Album       string   `json:"album"`
	AlbumURI    string   `json:"album_uri"`
	DurationMS  int      `json:"duration_ms"`
	Popularity  *int     `json:"popularity,omitempty"`
	PreviewURL  string   `json:"preview_url,omitempty"`
	ExternalURL string   `json:"external_url"`
	Rank        int      `json:"rank,omitempty"`
}

// PrimaryArtist returns the first credited artist, or "".
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// PrimaryArtistURI returns the catalog reference of the first credited artist, or "".
func (t Track) PrimaryArtistURI() string {
	if len(t.ArtistURIs) == 0 {
		return ""
	}
	return t.ArtistURIs[0]
}

// PopularityOrZero treats an absent popularity as 0.
func (t Track) PopularityOrZero() int {
	if t.Popularity == nil {
		return 0
	}
	return *t.Popularity
}

// Recommendation is a [Track] annotated with its similarity to a taste profile.
type Recommendation struct {
	Track
	SimilarityScore float64 `json:"similarity_score"`
}

// Device is a Spotify Connect playback device.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent *int   `json:"volume_percent,omitempty"`
}

// UserProfile is the authenticated listener's Spotify profile.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Country     string `json:"country,omitempty"`
	Product     string `json:"product,omitempty"`
	Followers   int    `json:"followers"`
	ImageURL    string `json:"image_url,omitempty"`
}

// TimeRange selects the affinity window used by top-tracks.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// Valid reports whether r is one of the catalog's accepted windows.
func (r TimeRange) Valid() bool {
	switch r {
	case ShortTerm, MediumTerm, LongTerm:
		return true
	}
	return false
}
