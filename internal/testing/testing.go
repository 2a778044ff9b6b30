// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/services"
	"github.com/desertthunder/moodplay/internal/shared"
	"golang.org/x/oauth2"
)

// MockMusic is a test double for [services.MusicService].
//
// Searches and PlaylistURIs are keyed by query. When Err is set every catalog and playback call returns it.
type MockMusic struct {
	Searches     map[string][]models.Track
	PlaylistURIs map[string][]string
	Top          []models.Track
	User         *models.UserProfile
	DeviceList   []models.Device
	Err          error

	mu            sync.Mutex
	calls         []string
	authenticated bool
}

var _ services.MusicService = (*MockMusic)(nil)

// Calls returns the recorded playback and search calls in order.
func (m *MockMusic) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockMusic) record(format string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

func (m *MockMusic) Name() string { return "mock" }

func (m *MockMusic) Authenticate(ctx context.Context, credentials map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticated = credentials["access_token"] != ""
	return nil
}

func (m *MockMusic) GetAuthURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *MockMusic) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "bad" {
		return nil, fmt.Errorf("%w: invalid code", shared.ErrAuthFailed)
	}
	m.mu.Lock()
	m.authenticated = true
	m.mu.Unlock()
	return &oauth2.Token{AccessToken: "access-" + code, RefreshToken: "refresh-" + code}, nil
}

func (m *MockMusic) Config() *oauth2.Config { return &oauth2.Config{ClientID: "mock"} }

func (m *MockMusic) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

func (m *MockMusic) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	m.record("search %s", query)
	if m.Err != nil {
		return nil, m.Err
	}
	tracks := m.Searches[query]
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return append([]models.Track{}, tracks...), nil
}

func (m *MockMusic) SearchPlaylistURIs(ctx context.Context, query string, limit int) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.PlaylistURIs[query], nil
}

func (m *MockMusic) PlayTrack(ctx context.Context, track models.Track, deviceID string) (models.PlaybackContext, error) {
	m.record("play_track %s", track.URI)
	return m.playback(deviceID, false)
}

func (m *MockMusic) PlayArtist(ctx context.Context, track models.Track, deviceID string) (models.PlaybackContext, error) {
	m.record("play_artist %s", track.PrimaryArtistURI())
	pc, err := m.playback(deviceID, true)
	pc.ArtistURI = track.PrimaryArtistURI()
	return pc, err
}

func (m *MockMusic) PlayMulti(ctx context.Context, uris []string, deviceID string) (models.PlaybackContext, error) {
	m.record("play_multi %s", strings.Join(uris, ","))
	pc, err := m.playback(deviceID, true)
	pc.TrackCount = len(uris)
	return pc, err
}

func (m *MockMusic) PlayPlaylist(ctx context.Context, uri, deviceID string) (models.PlaybackContext, error) {
	m.record("play_playlist %s", uri)
	pc, err := m.playback(deviceID, true)
	pc.PlaylistURI = uri
	return pc, err
}

func (m *MockMusic) PlayURI(ctx context.Context, uri, deviceID string) (models.PlaybackContext, error) {
	m.record("play_uri %s", uri)
	return m.playback(deviceID, false)
}

func (m *MockMusic) QueueSimilar(ctx context.Context, track models.Track, n int, deviceID string) (int, error) {
	m.record("queue_similar %s %d", track.ID, n)
	return 0, m.Err
}

func (m *MockMusic) TopTracks(ctx context.Context, limit int, timeRange models.TimeRange) ([]models.Track, error) {
	if !timeRange.Valid() {
		return nil, fmt.Errorf("%w: invalid time_range %q", shared.ErrValidation, timeRange)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	tracks := m.Top
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return append([]models.Track{}, tracks...), nil
}

func (m *MockMusic) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.User == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return m.User, nil
}

func (m *MockMusic) Devices(ctx context.Context) ([]models.Device, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Device{}, m.DeviceList...), nil
}

func (m *MockMusic) playback(deviceID string, shuffle bool) (models.PlaybackContext, error) {
	if m.Err != nil {
		return models.PlaybackContext{}, m.Err
	}
	if deviceID == "" {
		deviceID = "device-1"
	}
	return models.PlaybackContext{DeviceID: deviceID, Shuffle: shuffle}, nil
}

// Track builds a catalog track whose artist URIs are derived from the artist names.
func Track(id, name string, popularity int, artists ...string) models.Track {
	uris := make([]string, len(artists))
	for i, a := range artists {
		uris[i] = "spotify:artist:" + strings.ToLower(strings.ReplaceAll(a, " ", ""))
	}
	return models.Track{
		ID:         id,
		Name:       name,
		URI:        "spotify:track:" + id,
		Artists:    artists,
		ArtistURIs: uris,
		DurationMS: 180000 + popularity*1000,
		Popularity: &popularity,
	}
}

// NewTestDB opens an in-memory database with migrations applied and closes it on cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
