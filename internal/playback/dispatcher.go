package playback

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
)

// Transport starts playback on a device. An empty deviceID lets the implementation pick one.
type Transport interface {
	PlayTrack(ctx context.Context, track models.Track, deviceID string) (models.PlaybackContext, error)
	PlayArtist(ctx context.Context, track models.Track, deviceID string) (models.PlaybackContext, error)
	PlayMulti(ctx context.Context, uris []string, deviceID string) (models.PlaybackContext, error)
	PlayPlaylist(ctx context.Context, uri, deviceID string) (models.PlaybackContext, error)
	// QueueSimilar queues up to n tracks related to track and returns how many were queued.
	QueueSimilar(ctx context.Context, track models.Track, n int, deviceID string) (int, error)
}

// Classifier walks an ordered rule list until one returns a [Decision].
type Classifier struct {
	catalog     Catalog
	playlists   PlaylistStore
	rules       []Rule
	searchLimit int
}

// NewClassifier creates a [Classifier] over [DefaultRules]. playlists may be nil.
func NewClassifier(catalog Catalog, playlists PlaylistStore, searchLimit int) *Classifier {
	if searchLimit <= 0 {
		searchLimit = 10
	}
	return &Classifier{catalog: catalog, playlists: playlists, rules: DefaultRules(), searchLimit: searchLimit}
}

// Classify returns the first decision produced by the rules for query, along with the
// situation it was made in.
func (c *Classifier) Classify(ctx context.Context, intent models.Intent, query string) (Decision, *Situation, error) {
	s := &Situation{
		Query:       query,
		Intent:      intent,
		catalog:     c.catalog,
		playlists:   c.playlists,
		searchLimit: c.searchLimit,
	}

	for _, rule := range c.rules {
		d, err := rule.Apply(ctx, s)
		if err != nil {
			return nil, s, err
		}
		if d != nil {
			return d, s, nil
		}
	}
	// trackRule always decides once the pool exists
	return nil, s, fmt.Errorf("%w for: '%s'", shared.ErrNoTracksFound, query)
}

// Outcome is a completed dispatch.
type Outcome struct {
	Query    string
	Decision Decision
	Playback models.PlaybackContext
}

// Mode is the chosen playback mode.
func (o *Outcome) Mode() models.Mode { return o.Decision.Mode() }

// Response renders the outcome as {status, mode, ...mode fields, shuffle, device_id}.
func (o *Outcome) Response() map[string]any {
	resp := map[string]any{
		"status":    "playing",
		"mode":      o.Decision.Mode(),
		"shuffle":   o.Playback.Shuffle,
		"device_id": o.Playback.DeviceID,
	}

	switch d := o.Decision.(type) {
	case PlaylistDecision:
		resp["playlist"] = d.Name
		resp["uri"] = d.URI
	case MultiDecision:
		resp["track_count"] = o.Playback.TrackCount
		resp["artists"] = d.Artists
	case ArtistDecision:
		resp["artist"] = d.Artist
		resp["artist_uri"] = d.ArtistURI
	case TrackDecision:
		resp["track"] = d.Track.Name
		resp["artists"] = d.Track.Artists
		resp["uri"] = d.Track.URI
		if o.Playback.Queued > 0 {
			resp["queued"] = o.Playback.Queued
		}
	}
	return resp
}

// Options configures a [Dispatcher].
type Options struct {
	SearchLimit  int
	QueueSimilar bool
	SimilarCount int
	Logger       *log.Logger
}

// Dispatcher classifies a resolved intent and starts playback.
type Dispatcher struct {
	classifier *Classifier
	transport  Transport
	opts       Options
	logger     *log.Logger
}

// NewDispatcher creates a [Dispatcher]. playlists may be nil when no playlists are connected.
func NewDispatcher(catalog Catalog, transport Transport, playlists PlaylistStore, opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Dispatcher{
		classifier: NewClassifier(catalog, playlists, opts.SearchLimit),
		transport:  transport,
		opts:       opts,
		logger:     logger,
	}
}

// Dispatch normalizes the query, classifies it and starts playback on deviceID.
func (d *Dispatcher) Dispatch(ctx context.Context, intent models.Intent, raw, deviceID string) (*Outcome, error) {
	query := Normalize(intent, raw)
	if query == "" {
		return nil, fmt.Errorf("%w: empty play request", shared.ErrValidation)
	}

	decision, _, err := d.classifier.Classify(ctx, intent, query)
	if err != nil {
		return nil, err
	}
	d.logger.Info("dispatching", "query", query, "mode", decision.Mode(), "source", intent.Source)

	pc, err := d.execute(ctx, decision, deviceID)
	if err != nil {
		return nil, err
	}
	return &Outcome{Query: query, Decision: decision, Playback: pc}, nil
}

func (d *Dispatcher) execute(ctx context.Context, decision Decision, deviceID string) (models.PlaybackContext, error) {
	switch dec := decision.(type) {
	case PlaylistDecision:
		return d.transport.PlayPlaylist(ctx, dec.URI, deviceID)
	case MultiDecision:
		return d.transport.PlayMulti(ctx, dec.URIs, deviceID)
	case ArtistDecision:
		return d.transport.PlayArtist(ctx, dec.Track, deviceID)
	case TrackDecision:
		pc, err := d.transport.PlayTrack(ctx, dec.Track, deviceID)
		if err != nil || !d.opts.QueueSimilar || d.opts.SimilarCount <= 0 {
			return pc, err
		}
		queued, qerr := d.transport.QueueSimilar(ctx, dec.Track, d.opts.SimilarCount, pc.DeviceID)
		if qerr != nil {
			d.logger.Warn("failed to queue similar tracks", "track", dec.Track.ID, "error", qerr)
		}
		pc.Queued = queued
		return pc, nil
	default:
		return models.PlaybackContext{}, fmt.Errorf("%w: unhandled decision %T", shared.ErrNotImplemented, decision)
	}
}
