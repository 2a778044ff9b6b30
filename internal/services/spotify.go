// Spotify Web API implementation of the catalog and playback transport
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	trackURIPrefix    = "spotify:track:"
	artistURIPrefix   = "spotify:artist:"
	playlistURIPrefix = "spotify:playlist:"
)

// SpotifyScopes are the OAuth scopes the assistant needs for search, playback and top tracks.
var SpotifyScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-top-read",
	"user-read-private",
	"user-read-email",
}

type followers struct {
	Total int `json:"total"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track. Popularity and PreviewURL are pointers because
// Spotify omits or nulls them for some markets.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	Explicit     bool            `json:"explicit"`
	Popularity   *int            `json:"popularity"`
	PreviewURL   *string         `json:"preview_url"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	TotalTracks int            `json:"total_tracks"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in search results).
type SpotifySimplePlaylist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyDevice represents a Spotify Connect device.
type SpotifyDevice struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent *int   `json:"volume_percent"`
}

type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyOption configures a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithBaseURL points the service at a different Web API root.
func WithBaseURL(u string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the client used for API calls and token refreshes.
func WithHTTPClient(c *http.Client) SpotifyOption {
	return func(s *SpotifyService) { s.baseClient = c }
}

// WithRateLimit paces outgoing API calls to rps requests per second.
func WithRateLimit(rps float64) SpotifyOption {
	return func(s *SpotifyService) {
		if rps > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithTokenCallback is called with every token the service obtains, including refreshes.
func WithTokenCallback(fn func(*oauth2.Token)) SpotifyOption {
	return func(s *SpotifyService) { s.onToken = fn }
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) SpotifyOption {
	return func(s *SpotifyService) { s.logger = l }
}

// SpotifyService is the catalog and playback transport backed by the Spotify Web API.
// Uses [oauth2] for authentication with automatic token refresh.
type SpotifyService struct {
	config     *oauth2.Config
	baseURL    string
	baseClient *http.Client
	limiter    *rate.Limiter
	onToken    func(*oauth2.Token)
	logger     *log.Logger

	mu         sync.RWMutex
	source     oauth2.TokenSource
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8000/callback"
	}

	s := &SpotifyService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       SpotifyScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyAuthURL,
				TokenURL: spotifyTokenURL,
			},
		},
		baseURL:    spotifyBaseURL,
		baseClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(nil)
	}
	return s, nil
}

// Authenticate performs OAuth2 authentication with Spotify.
//
// Expects either an "access_token" (optionally with "refresh_token" and an RFC 3339
// "token_expiry") or an "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		cfg := shared.SpotifyConfig{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenExpiry:  credentials["token_expiry"],
		}
		s.setToken(ctx, cfg.Token())
		return nil
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		_, err := s.Exchange(ctx, authCode)
		return err
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// Exchange trades an authorization code for a token and authenticates the service with it.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(s.clientContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	s.setToken(ctx, token)
	if s.onToken != nil {
		s.onToken(token)
	}
	return token, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Config returns the OAuth2 configuration, for callback handlers that run the code exchange themselves.
func (s *SpotifyService) Config() *oauth2.Config {
	return s.config
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Authenticated reports whether a token has been set.
func (s *SpotifyService) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source != nil
}

// Token returns the current token, refreshing it if it has expired.
func (s *SpotifyService) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	src := s.source
	s.mu.RUnlock()
	if src == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return src.Token()
}

func (s *SpotifyService) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)
}

func (s *SpotifyService) setToken(ctx context.Context, token *oauth2.Token) {
	// Refreshes outlive the request that authenticated the service.
	refreshCtx := s.clientContext(context.WithoutCancel(ctx))
	src := oauth2.ReuseTokenSource(token, &notifyingSource{
		src:  s.config.TokenSource(refreshCtx, token),
		last: token.AccessToken,
		fn:   s.onToken,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = src
	s.httpClient = oauth2.NewClient(refreshCtx, src)
}

// notifyingSource reports tokens that differ from the last one seen.
type notifyingSource struct {
	src  oauth2.TokenSource
	fn   func(*oauth2.Token)
	mu   sync.Mutex
	last string
}

func (n *notifyingSource) Token() (*oauth2.Token, error) {
	token, err := n.src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}

	n.mu.Lock()
	changed := token.AccessToken != n.last
	n.last = token.AccessToken
	n.mu.Unlock()

	if changed && n.fn != nil {
		n.fn(token)
	}
	return token, nil
}

// request describes one Web API call.
type request struct {
	method   string
	endpoint string
	query    url.Values
	body     any
	notFound error // returned for 404, defaults to [shared.ErrTrackNotFound]
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, r request, result any) error {
	s.mu.RLock()
	client := s.httpClient
	s.mu.RUnlock()
	if client == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	apiURL := s.baseURL + r.endpoint
	if len(r.query) > 0 {
		apiURL += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) || ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return s.statusError(resp, r)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (s *SpotifyService) statusError(resp *http.Response, r request) error {
	msg := http.StatusText(resp.StatusCode)
	var apiErr spotifyError
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil {
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
	}

	s.logger.Warn("spotify API error", "method", r.method, "endpoint", r.endpoint, "status", resp.StatusCode, "message", msg)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, msg)
	case http.StatusNotFound:
		notFound := r.notFound
		if notFound == nil {
			notFound = shared.ErrTrackNotFound
		}
		return fmt.Errorf("%w: %s", notFound, msg)
	default:
		return fmt.Errorf("%w: spotify status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, request{method: http.MethodGet, endpoint: "/me"}, &user); err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
		Followers:   user.Followers.Total,
	}
	if len(user.Images) > 0 {
		profile.ImageURL = user.Images[0].URL
	}
	return profile, nil
}

// Devices lists the listener's Spotify Connect devices.
func (s *SpotifyService) Devices(ctx context.Context) ([]models.Device, error) {
	var response struct {
		Devices []SpotifyDevice `json:"devices"`
	}
	if err := s.doRequest(ctx, request{method: http.MethodGet, endpoint: "/me/player/devices"}, &response); err != nil {
		return nil, err
	}

	devices := make([]models.Device, 0, len(response.Devices))
	for _, d := range response.Devices {
		devices = append(devices, models.Device{
			ID:            d.ID,
			Name:          d.Name,
			Type:          d.Type,
			IsActive:      d.IsActive,
			VolumePercent: d.VolumePercent,
		})
	}
	s.logger.Debug("listed devices", "count", len(devices))
	return devices, nil
}

// SearchTracks searches the catalog for tracks matching query.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	var response struct {
		Tracks struct {
			Items []*SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	q := url.Values{"q": {query}, "type": {"track"}, "limit": {strconv.Itoa(clampLimit(limit))}}
	if err := s.doRequest(ctx, request{method: http.MethodGet, endpoint: "/search", query: q}, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		if item != nil {
			tracks = append(tracks, formatTrack(*item))
		}
	}
	s.logger.Info("searched tracks", "query", query, "results", len(tracks))
	return tracks, nil
}

// SearchPlaylistURIs returns up to limit track URIs from the best-matching catalog playlist.
// No matching playlist yields no URIs and no error.
func (s *SpotifyService) SearchPlaylistURIs(ctx context.Context, query string, limit int) ([]string, error) {
	var response struct {
		Playlists struct {
			Items []*SpotifySimplePlaylist `json:"items"`
		} `json:"playlists"`
	}

	q := url.Values{"q": {query}, "type": {"playlist"}, "limit": {"1"}}
	if err := s.doRequest(ctx, request{method: http.MethodGet, endpoint: "/search", query: q}, &response); err != nil {
		return nil, err
	}

	for _, p := range response.Playlists.Items {
		if p == nil || p.ID == "" {
			continue
		}
		return s.PlaylistTrackURIs(ctx, p.ID, limit)
	}
	return nil, nil
}

// PlaylistTrackURIs returns up to limit track URIs of a playlist, given its id or URI.
func (s *SpotifyService) PlaylistTrackURIs(ctx context.Context, playlist string, limit int) ([]string, error) {
	id := strings.TrimPrefix(playlist, playlistURIPrefix)
	var response struct {
		Items []struct {
			Track *SpotifyTrack `json:"track"`
		} `json:"items"`
	}

	r := request{
		method:   http.MethodGet,
		endpoint: "/playlists/" + url.PathEscape(id) + "/tracks",
		query:    url.Values{"limit": {strconv.Itoa(clampLimit(limit))}},
		notFound: shared.ErrPlaylistNotFound,
	}
	if err := s.doRequest(ctx, r, &response); err != nil {
		return nil, err
	}

	var uris []string
	for _, item := range response.Items {
		if item.Track != nil && strings.HasPrefix(item.Track.URI, trackURIPrefix) {
			uris = append(uris, item.Track.URI)
		}
	}
	return uris, nil
}

// TopTracks returns the listener's top tracks for timeRange, ranked from 1.
func (s *SpotifyService) TopTracks(ctx context.Context, limit int, timeRange models.TimeRange) ([]models.Track, error) {
	if limit < 1 || limit > 50 {
		return nil, fmt.Errorf("%w: limit must be between 1 and 50, got %d", shared.ErrValidation, limit)
	}
	if !timeRange.Valid() {
		return nil, fmt.Errorf("%w: unknown time_range %q", shared.ErrValidation, timeRange)
	}

	var response struct {
		Items []SpotifyTrack `json:"items"`
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}, "time_range": {string(timeRange)}}
	if err := s.doRequest(ctx, request{method: http.MethodGet, endpoint: "/me/top/tracks", query: q}, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, len(response.Items))
	for i, item := range response.Items {
		tracks[i] = formatTrack(item)
		tracks[i].Rank = i + 1
	}
	s.logger.Info("fetched top tracks", "count", len(tracks), "time_range", timeRange)
	return tracks, nil
}

// ArtistTopTracks returns an artist's most popular tracks in the listener's market.
func (s *SpotifyService) ArtistTopTracks(ctx context.Context, artistID string) ([]models.Track, error) {
	id := strings.TrimPrefix(artistID, artistURIPrefix)
	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}

	r := request{
		method:   http.MethodGet,
		endpoint: "/artists/" + url.PathEscape(id) + "/top-tracks",
		query:    url.Values{"market": {"from_token"}},
	}
	if err := s.doRequest(ctx, r, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, len(response.Tracks))
	for i, item := range response.Tracks {
		tracks[i] = formatTrack(item)
	}
	return tracks, nil
}

// resolveDevice returns deviceID, or the active device, or the first available one.
// The placeholder "string" sent by generated API clients counts as empty.
func (s *SpotifyService) resolveDevice(ctx context.Context, deviceID string) (string, error) {
	if deviceID != "" && !strings.EqualFold(deviceID, "string") {
		return deviceID, nil
	}

	devices, err := s.Devices(ctx)
	if err != nil {
		return "", err
	}
	for _, d := range devices {
		if d.IsActive {
			s.logger.Info("using active device", "name", d.Name, "id", d.ID)
			return d.ID, nil
		}
	}
	if len(devices) > 0 {
		s.logger.Info("no active device, using first available", "name", devices[0].Name, "id", devices[0].ID)
		return devices[0].ID, nil
	}
	return "", fmt.Errorf("%w: open Spotify on a device and try again", shared.ErrNoDevice)
}

type playBody struct {
	URIs       []string `json:"uris,omitempty"`
	ContextURI string   `json:"context_uri,omitempty"`
}

// start resolves the device, starts playback and sets shuffle.
func (s *SpotifyService) start(ctx context.Context, body playBody, shuffle bool, deviceID string) (models.PlaybackContext, error) {
	device, err := s.resolveDevice(ctx, deviceID)
	if err != nil {
		return models.PlaybackContext{}, err
	}

	r := request{
		method:   http.MethodPut,
		endpoint: "/me/player/play",
		query:    url.Values{"device_id": {device}},
		body:     body,
		notFound: shared.ErrNoDevice,
	}
	if err := s.doRequest(ctx, r, nil); err != nil {
		return models.PlaybackContext{}, err
	}
	if err := s.SetShuffle(ctx, shuffle, device); err != nil {
		return models.PlaybackContext{}, err
	}
	return models.PlaybackContext{DeviceID: device, Shuffle: shuffle}, nil
}

// PlayTrack plays a single track first, with shuffle off.
func (s *SpotifyService) PlayTrack(ctx context.Context, track models.Track, deviceID string) (models.PlaybackContext, error) {
	pc, err := s.start(ctx, playBody{URIs: []string{track.URI}}, false, deviceID)
	if err != nil {
		return pc, err
	}
	s.logger.Info("playing track", "name", track.Name, "artists", track.Artists, "device", pc.DeviceID)
	return pc, nil
}

// PlayArtist plays the primary artist's catalog with shuffle on.
func (s *SpotifyService) PlayArtist(ctx context.Context, track models.Track, deviceID string) (models.PlaybackContext, error) {
	artistURI := track.PrimaryArtistURI()
	if artistURI == "" {
		return models.PlaybackContext{}, fmt.Errorf("%w: no artist URI for track %q", shared.ErrValidation, track.Name)
	}

	pc, err := s.start(ctx, playBody{ContextURI: artistURI}, true, deviceID)
	if err != nil {
		return pc, err
	}
	pc.ArtistURI = artistURI
	s.logger.Info("playing artist", "uri", artistURI, "device", pc.DeviceID)
	return pc, nil
}

// PlayMulti plays a set of tracks from several artists with shuffle on.
func (s *SpotifyService) PlayMulti(ctx context.Context, uris []string, deviceID string) (models.PlaybackContext, error) {
	if len(uris) == 0 {
		return models.PlaybackContext{}, fmt.Errorf("%w: no tracks to play", shared.ErrValidation)
	}

	pc, err := s.start(ctx, playBody{URIs: uris}, true, deviceID)
	if err != nil {
		return pc, err
	}
	pc.TrackCount = len(uris)
	s.logger.Info("playing multi-track", "tracks", len(uris), "device", pc.DeviceID)
	return pc, nil
}

// PlayPlaylist plays a playlist context with shuffle on.
func (s *SpotifyService) PlayPlaylist(ctx context.Context, uri, deviceID string) (models.PlaybackContext, error) {
	if !strings.HasPrefix(uri, playlistURIPrefix) {
		return models.PlaybackContext{}, fmt.Errorf("%w: invalid playlist URI %q", shared.ErrValidation, uri)
	}

	pc, err := s.start(ctx, playBody{ContextURI: uri}, true, deviceID)
	if err != nil {
		return pc, err
	}
	pc.PlaylistURI = uri
	s.logger.Info("playing playlist", "uri", uri, "device", pc.DeviceID)
	return pc, nil
}

// PlayURI plays one track by its spotify:track: URI.
func (s *SpotifyService) PlayURI(ctx context.Context, uri, deviceID string) (models.PlaybackContext, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, trackURIPrefix) || len(uri) == len(trackURIPrefix) {
		return models.PlaybackContext{}, shared.ErrInvalidTrackURI
	}
	return s.start(ctx, playBody{URIs: []string{uri}}, false, deviceID)
}

// SetShuffle toggles shuffle on a device.
func (s *SpotifyService) SetShuffle(ctx context.Context, state bool, deviceID string) error {
	r := request{
		method:   http.MethodPut,
		endpoint: "/me/player/shuffle",
		query:    url.Values{"state": {strconv.FormatBool(state)}, "device_id": {deviceID}},
		notFound: shared.ErrNoDevice,
	}
	return s.doRequest(ctx, r, nil)
}

// Queue appends a track to the device's playback queue.
func (s *SpotifyService) Queue(ctx context.Context, uri, deviceID string) error {
	r := request{
		method:   http.MethodPost,
		endpoint: "/me/player/queue",
		query:    url.Values{"uri": {uri}, "device_id": {deviceID}},
		notFound: shared.ErrNoDevice,
	}
	return s.doRequest(ctx, r, nil)
}

// QueueSimilar queues up to n of the primary artist's top tracks after track.
func (s *SpotifyService) QueueSimilar(ctx context.Context, track models.Track, n int, deviceID string) (int, error) {
	artistURI := track.PrimaryArtistURI()
	if artistURI == "" || n <= 0 {
		return 0, nil
	}

	similar, err := s.ArtistTopTracks(ctx, artistURI)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, t := range similar {
		if queued == n {
			break
		}
		if t.ID == track.ID || t.URI == "" {
			continue
		}
		if err := s.Queue(ctx, t.URI, deviceID); err != nil {
			return queued, err
		}
		queued++
	}
	return queued, nil
}

// formatTrack maps a Spotify track onto [models.Track].
func formatTrack(t SpotifyTrack) models.Track {
	track := models.Track{
		ID:          t.ID,
		Name:        t.Name,
		URI:         t.URI,
		Artists:     make([]string, 0, len(t.Artists)),
		ArtistURIs:  make([]string, 0, len(t.Artists)),
		Album:       t.Album.Name,
		AlbumURI:    t.Album.URI,
		DurationMS:  t.DurationMS,
		Popularity:  t.Popularity,
		ExternalURL: t.ExternalURLs.Spotify,
	}
	for _, a := range t.Artists {
		track.Artists = append(track.Artists, a.Name)
		if a.URI != "" {
			track.ArtistURIs = append(track.ArtistURIs, a.URI)
		}
	}
	if t.PreviewURL != nil {
		track.PreviewURL = *t.PreviewURL
	}
	return track
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > 50:
		return 50
	}
	return limit
}
