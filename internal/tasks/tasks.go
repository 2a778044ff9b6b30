// package tasks wires the resolver, dispatcher and recommender into the operations the CLI, HTTP API and TUI expose.
//
// The core abstraction is Assistant. Persistence is best-effort and runs on a background [Recorder].
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodplay/internal/intent"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/playback"
	"github.com/desertthunder/moodplay/internal/repositories"
	"github.com/desertthunder/moodplay/internal/shared"
)

const (
	defaultTopTracksLimit = 50
	defaultRecentLimit    = 5
)

// Music is the streaming provider surface the assistant drives.
type Music interface {
	playback.Catalog
	playback.Transport

	PlayURI(ctx context.Context, uri, deviceID string) (models.PlaybackContext, error)
	TopTracks(ctx context.Context, limit int, timeRange models.TimeRange) ([]models.Track, error)
	CurrentUser(ctx context.Context) (*models.UserProfile, error)
	Devices(ctx context.Context) ([]models.Device, error)
}

// Stores groups the repositories the assistant records to.
type Stores struct {
	Users     *repositories.UserRepository
	Requests  *repositories.MoodRequestRepository
	Playlists *repositories.PlaylistRepository
	History   *repositories.TrackHistoryRepository
}

// NewStores builds every repository on db. A nil db yields nil, which disables persistence.
func NewStores(db *sql.DB) *Stores {
	if db == nil {
		return nil
	}
	return &Stores{
		Users:     repositories.NewUserRepository(db),
		Requests:  repositories.NewMoodRequestRepository(db),
		Playlists: repositories.NewPlaylistRepository(db),
		History:   repositories.NewTrackHistoryRepository(db),
	}
}

// Options configures an [Assistant].
type Options struct {
	Playback  playback.Options
	Recommend shared.RecommendConfig
	QueueSize int
	Logger    *log.Logger
}

// OptionsFromConfig maps the [playback] and [recommend] config sections onto [Options].
func OptionsFromConfig(cfg *shared.Config, logger *log.Logger) Options {
	return Options{
		Playback: playback.Options{
			SearchLimit:  cfg.Playback.SearchLimit,
			QueueSimilar: cfg.Playback.QueueSimilar,
			SimilarCount: cfg.Playback.SimilarCount,
			Logger:       logger,
		},
		Recommend: cfg.Recommend,
		Logger:    logger,
	}
}

// PlayResult is a dispatched utterance together with the intent it resolved to.
type PlayResult struct {
	Intent  models.Intent
	Outcome *playback.Outcome
}

// Assistant runs utterances through resolve → dispatch and serves recommendations.
type Assistant struct {
	music      Music
	resolver   intent.Resolver
	dispatcher *playback.Dispatcher
	stores     *Stores
	recorder   *Recorder
	opts       Options
	logger     *log.Logger

	mu     sync.RWMutex
	userID string
}

// NewAssistant creates an Assistant. stores may be nil. Call [Assistant.Close] to flush pending records.
func NewAssistant(music Music, resolver intent.Resolver, stores *Stores, opts Options) *Assistant {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if opts.Playback.Logger == nil {
		opts.Playback.Logger = logger
	}

	var playlists playback.PlaylistStore
	if stores != nil && stores.Playlists != nil {
		playlists = stores.Playlists
	}

	return &Assistant{
		music:      music,
		resolver:   resolver,
		dispatcher: playback.NewDispatcher(music, music, playlists, opts.Playback),
		stores:     stores,
		recorder:   NewRecorder(opts.QueueSize, shared.WithLogger(logger, "component", "recorder")),
		opts:       opts,
		logger:     logger,
	}
}

// Close waits for queued records to be written.
func (a *Assistant) Close() {
	a.recorder.Close()
}

// Ask resolves message and records it.
func (a *Assistant) Ask(ctx context.Context, message string) (models.Intent, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Intent{}, fmt.Errorf("%w: message is required", shared.ErrValidation)
	}

	in, err := a.resolver.Resolve(ctx, message)
	if err != nil {
		return models.Intent{}, err
	}

	a.recordRequest(models.NewMoodRequest(message, in, in.Query, ""))
	return in, nil
}

// Play resolves message, picks a playback mode and starts playback on deviceID.
//
// The request is recorded with the chosen mode as its action.
func (a *Assistant) Play(ctx context.Context, message, deviceID string) (*PlayResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", shared.ErrValidation)
	}

	in, err := a.resolver.Resolve(ctx, message)
	if err != nil {
		return nil, err
	}

	outcome, err := a.dispatcher.Dispatch(ctx, in, message, normalizeDevice(deviceID))
	if err != nil {
		return nil, err
	}

	a.recordRequest(models.NewMoodRequest(message, in, outcome.Query, outcome.Mode()))
	switch d := outcome.Decision.(type) {
	case playback.TrackDecision:
		a.recordPlay(d.Track, outcome.Mode())
	case playback.ArtistDecision:
		a.recordPlay(d.Track, outcome.Mode())
	}

	return &PlayResult{Intent: in, Outcome: outcome}, nil
}

// PlayTrack plays one spotify:track: URI.
func (a *Assistant) PlayTrack(ctx context.Context, uri, deviceID string) (models.PlaybackContext, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "spotify:track:") || uri == "spotify:track:" {
		return models.PlaybackContext{}, shared.ErrInvalidTrackURI
	}
	return a.music.PlayURI(ctx, uri, normalizeDevice(deviceID))
}

// TopTracks returns the listener's top tracks. A zero limit uses 50 and an empty range medium_term.
func (a *Assistant) TopTracks(ctx context.Context, limit int, timeRange models.TimeRange) ([]models.Track, error) {
	if limit == 0 {
		limit = defaultTopTracksLimit
	}
	if timeRange == "" {
		timeRange = models.MediumTerm
	}
	return a.music.TopTracks(ctx, limit, timeRange)
}

// Devices lists the listener's playback devices.
func (a *Assistant) Devices(ctx context.Context) ([]models.Device, error) {
	return a.music.Devices(ctx)
}

// Me fetches the listener's profile and remembers it for later records.
func (a *Assistant) Me(ctx context.Context) (*models.UserProfile, error) {
	profile, err := a.music.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	a.RememberUser(*profile)
	return profile, nil
}

// RememberUser upserts profile in the background. Later records are attributed to it.
func (a *Assistant) RememberUser(profile models.UserProfile) {
	if a.stores == nil || a.stores.Users == nil {
		return
	}
	a.recorder.Record("user", func() error {
		user, err := a.stores.Users.Upsert(profile)
		if err != nil {
			return err
		}
		a.mu.Lock()
		a.userID = user.ID()
		a.mu.Unlock()
		return nil
	})
}

// LatestRequest returns the newest recorded request, or nil.
func (a *Assistant) LatestRequest() (*models.MoodRequest, error) {
	if a.stores == nil || a.stores.Requests == nil {
		return nil, nil
	}
	return a.stores.Requests.Latest()
}

// RecentRequests returns up to limit recorded requests, newest first.
func (a *Assistant) RecentRequests(limit int) ([]*models.MoodRequest, error) {
	if a.stores == nil || a.stores.Requests == nil {
		return []*models.MoodRequest{}, nil
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return a.stores.Requests.Recent(limit)
}

// History returns up to limit tracks started through dispatch, newest first.
func (a *Assistant) History(limit int) ([]*models.TrackPlay, error) {
	if a.stores == nil || a.stores.History == nil {
		return []*models.TrackPlay{}, nil
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return a.stores.History.Recent(limit)
}

// Playlists lists connected playlists.
func (a *Assistant) Playlists() ([]*models.ConnectedPlaylist, error) {
	if a.stores == nil || a.stores.Playlists == nil {
		return []*models.ConnectedPlaylist{}, nil
	}
	return a.stores.Playlists.List(nil)
}

// ConnectPlaylist makes uri playable by saying name.
func (a *Assistant) ConnectPlaylist(name, uri string) (*models.ConnectedPlaylist, error) {
	if a.stores == nil || a.stores.Playlists == nil {
		return nil, fmt.Errorf("%w: no database configured", shared.ErrServiceUnavailable)
	}

	playlist := models.NewConnectedPlaylist(name, uri)
	if err := playlist.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	existing, err := a.stores.Playlists.FindByNameCI(playlist.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: playlist %q is already connected", shared.ErrValidation, existing.Name)
	}

	if err := a.stores.Playlists.Create(playlist); err != nil {
		return nil, err
	}
	a.logger.Info("connected playlist", "name", playlist.Name, "uri", playlist.URI)
	return playlist, nil
}

// DisconnectPlaylist removes the playlist connected under name.
func (a *Assistant) DisconnectPlaylist(name string) error {
	if a.stores == nil || a.stores.Playlists == nil {
		return fmt.Errorf("%w: no database configured", shared.ErrServiceUnavailable)
	}

	playlist, err := a.stores.Playlists.FindByNameCI(name)
	if err != nil {
		return err
	}
	if playlist == nil {
		return fmt.Errorf("%w: playlist %q", shared.ErrRecordNotFound, name)
	}
	return a.stores.Playlists.Delete(playlist.ID())
}

func (a *Assistant) currentUser() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.userID
}

func (a *Assistant) recordRequest(req *models.MoodRequest) {
	if a.stores == nil || a.stores.Requests == nil {
		return
	}
	a.recorder.Record("mood_request", func() error {
		req.UserID = a.currentUser()
		return a.stores.Requests.Create(req)
	})
}

func (a *Assistant) recordPlay(track models.Track, mode models.Mode) {
	if a.stores == nil || a.stores.History == nil {
		return
	}
	a.recorder.Record("track_history", func() error {
		return a.stores.History.Create(models.NewTrackPlay(a.currentUser(), track, string(mode)))
	})
}

// normalizeDevice treats the OpenAPI placeholder "string" as no device.
func normalizeDevice(id string) string {
	id = strings.TrimSpace(id)
	if id == "string" {
		return ""
	}
	return id
}
