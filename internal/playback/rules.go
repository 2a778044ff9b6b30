package playback

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
)

// Decision is the tagged result of classification: one of [PlaylistDecision], [MultiDecision],
// [ArtistDecision] or [TrackDecision].
type Decision interface {
	Mode() models.Mode
	Shuffle() bool
	decision()
}

// PlaylistDecision plays a connected playlist.
type PlaylistDecision struct {
	Name string
	URI  string
}

// MultiDecision plays a set of track URIs. Artists is empty when they came from a catalog playlist.
type MultiDecision struct {
	URIs    []string
	Artists []string
}

// ArtistDecision plays the catalog of the top track's primary artist.
type ArtistDecision struct {
	Artist    string
	ArtistURI string
	Track     models.Track
}

// TrackDecision plays the top-ranked track.
type TrackDecision struct {
	Track models.Track
}

func (PlaylistDecision) Mode() models.Mode { return models.ModePlaylist }
func (MultiDecision) Mode() models.Mode    { return models.ModeMulti }
func (ArtistDecision) Mode() models.Mode   { return models.ModeArtist }
func (TrackDecision) Mode() models.Mode    { return models.ModeTrack }

func (PlaylistDecision) Shuffle() bool { return true }
func (MultiDecision) Shuffle() bool    { return true }
func (ArtistDecision) Shuffle() bool   { return true }
func (TrackDecision) Shuffle() bool    { return false }

func (PlaylistDecision) decision() {}
func (MultiDecision) decision()    {}
func (ArtistDecision) decision()   {}
func (TrackDecision) decision()    {}

// Catalog is the search side of the music catalog.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)
	// SearchPlaylistURIs returns the track URIs of the best-matching playlist, or none.
	SearchPlaylistURIs(ctx context.Context, query string, limit int) ([]string, error)
}

// PlaylistStore finds connected playlists. FindByNameCI returns nil, nil when nothing matches.
type PlaylistStore interface {
	FindByNameCI(name string) (*models.ConnectedPlaylist, error)
}

// Situation is everything a [Rule] may inspect. The candidate pool is searched lazily so that
// rules ahead of the first search never touch the catalog.
type Situation struct {
	Query  string
	Intent models.Intent

	catalog     Catalog
	playlists   PlaylistStore
	searchLimit int

	pool        []models.Track
	searched    bool
	artistNamed bool
}

// Pool returns the ranked candidate pool, searching on first use.
//
// An empty search result is terminal and reported as [shared.ErrNoTracksFound].
func (s *Situation) Pool(ctx context.Context) ([]models.Track, error) {
	if s.searched {
		return s.pool, nil
	}

	results, err := s.catalog.SearchTracks(ctx, s.Query, s.searchLimit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w for: '%s'", shared.ErrNoTracksFound, s.Query)
	}

	s.pool = Rank(results, s.Query)
	s.searched = true
	s.artistNamed = intersects(tokens(s.pool[0].PrimaryArtist()), tokens(s.Query))
	return s.pool, nil
}

// Top returns the best-ranked candidate.
func (s *Situation) Top(ctx context.Context) (models.Track, error) {
	pool, err := s.Pool(ctx)
	if err != nil {
		return models.Track{}, err
	}
	return pool[0], nil
}

// ArtistNamed reports whether any word of the top track's primary artist appears in the query.
func (s *Situation) ArtistNamed(ctx context.Context) (bool, error) {
	if _, err := s.Pool(ctx); err != nil {
		return false, err
	}
	return s.artistNamed, nil
}

// widen appends tracks not already in the pool.
func (s *Situation) widen(tracks []models.Track) {
	seen := make(map[string]struct{}, len(s.pool))
	for _, t := range s.pool {
		seen[t.ID] = struct{}{}
	}
	for _, t := range tracks {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		s.pool = append(s.pool, t)
	}
}

// Rule inspects a situation and returns a decision, or nil to defer to the next rule.
type Rule struct {
	Name  string
	Apply func(ctx context.Context, s *Situation) (Decision, error)
}

// minDistinctArtists is how many artists a widened pool needs before it is played as a mix.
const minDistinctArtists = 2

// DefaultRules returns the classification rules in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "connected_playlist", Apply: connectedPlaylistRule},
		{Name: "mood_or_genre", Apply: moodOrGenreRule},
		{Name: "artist_only", Apply: artistOnlyRule},
		{Name: "track", Apply: trackRule},
	}
}

func connectedPlaylistRule(_ context.Context, s *Situation) (Decision, error) {
	if s.playlists == nil {
		return nil, nil
	}
	p, err := s.playlists.FindByNameCI(strings.TrimSpace(s.Query))
	if err != nil {
		return nil, fmt.Errorf("connected playlist lookup failed: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	return PlaylistDecision{Name: p.Name, URI: p.URI}, nil
}

func moodOrGenreRule(ctx context.Context, s *Situation) (Decision, error) {
	named, err := s.ArtistNamed(ctx)
	if err != nil {
		return nil, err
	}
	mood := s.Intent.IsMoodOrGenre()
	if named && !mood {
		return nil, nil
	}

	uris, err := s.catalog.SearchPlaylistURIs(ctx, s.Query, s.searchLimit)
	if err != nil {
		return nil, err
	}
	if len(uris) > 0 {
		return MultiDecision{URIs: uris, Artists: []string{}}, nil
	}
	if mood {
		return nil, nil
	}

	extra, err := s.catalog.SearchTracks(ctx, s.Query+" mix", s.searchLimit)
	if err != nil {
		return nil, err
	}
	s.widen(extra)

	artists := distinctArtists(s.pool)
	if len(artists) < minDistinctArtists {
		return nil, nil
	}

	uris = make([]string, 0, len(s.pool))
	for _, t := range s.pool {
		if t.URI != "" {
			uris = append(uris, t.URI)
		}
	}
	return MultiDecision{URIs: uris, Artists: artists}, nil
}

func artistOnlyRule(ctx context.Context, s *Situation) (Decision, error) {
	named, err := s.ArtistNamed(ctx)
	if err != nil || !named {
		return nil, err
	}
	top, _ := s.Top(ctx)
	if intersects(tokens(top.Name), tokens(s.Query)) || top.PrimaryArtistURI() == "" {
		return nil, nil
	}
	return ArtistDecision{Artist: top.PrimaryArtist(), ArtistURI: top.PrimaryArtistURI(), Track: top}, nil
}

func trackRule(ctx context.Context, s *Situation) (Decision, error) {
	top, err := s.Top(ctx)
	if err != nil {
		return nil, err
	}
	return TrackDecision{Track: top}, nil
}

// distinctArtists lists every credited artist in pool in first-seen order.
func distinctArtists(pool []models.Track) []string {
	seen := make(map[string]struct{})
	var artists []string
	for _, t := range pool {
		for _, a := range t.Artists {
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			artists = append(artists, a)
		}
	}
	return artists
}
