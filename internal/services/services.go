// package services defines interfaces for the HTTP APIs the assistant talks to
//
// Spotify (catalog, playback), OpenAI and Gemini (intent tool calls)
package services

import (
	"context"

	"github.com/desertthunder/moodplay/internal/intent"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/playback"
	"golang.org/x/oauth2"
)

// Service defines the interface for authenticated third-party providers.
type Service interface {
	// Authenticate performs OAuth or API key authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends [Service] for providers using the authorization code flow.
type OAuthService interface {
	Service
	GetAuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Config() *oauth2.Config
	Authenticated() bool
}

// MusicService is everything the assistant needs from a streaming provider: search for
// dispatch, playback transport, and the listener's account data.
type MusicService interface {
	OAuthService
	playback.Catalog
	playback.Transport

	// PlayURI plays one track by catalog URI.
	PlayURI(ctx context.Context, uri, deviceID string) (models.PlaybackContext, error)
	TopTracks(ctx context.Context, limit int, timeRange models.TimeRange) ([]models.Track, error)
	CurrentUser(ctx context.Context) (*models.UserProfile, error)
	Devices(ctx context.Context) ([]models.Device, error)
}

var (
	_ MusicService      = (*SpotifyService)(nil)
	_ intent.ToolCaller = (*OpenAIToolCaller)(nil)
	_ intent.ToolCaller = (*GeminiToolCaller)(nil)
)
