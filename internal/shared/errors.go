package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrLLMUnavailable     = fmt.Errorf("language model unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrNoTracksFound      = fmt.Errorf("no tracks found")
	ErrNoDevice           = fmt.Errorf("no playback device available")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrInvalidTrackURI = fmt.Errorf("%w: invalid track URI, use spotify:track:xxx", ErrValidation)
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// State errors
	ErrProfileNotBuilt = fmt.Errorf("taste profile not built")

	// Persistence errors
	ErrRecordNotFound = fmt.Errorf("record not found")
)
