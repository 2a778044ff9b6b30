// Package services implements the external collaborators of the assistant.
//
// # Spotify
//
// [SpotifyService] implements [MusicService]: catalog search for the playback dispatcher,
// the playback transport, top tracks, devices and the current user.
//
// Authentication uses [oauth2] with automatic token refresh. Tokens obtained through an
// exchange or a refresh are reported to the callback set with [WithTokenCallback], which the
// CLI uses to save them to the config file.
//
// Outgoing calls are paced by a [rate.Limiter] (see [WithRateLimit]).
//
// When no device id is given, playback goes to the active device, then the first available
// one. With no devices at all the call fails with [shared.ErrNoDevice].
//
// # Language models
//
// [OpenAIToolCaller] and [GeminiToolCaller] implement [intent.ToolCaller]. Both force the model to
// call exactly one function and return its raw JSON arguments.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : 401, or the token could not be refreshed
//   - [shared.ErrTrackNotFound], [shared.ErrPlaylistNotFound] : 404 on lookups
//   - [shared.ErrNoDevice] : no playback device
//   - [shared.ErrAPIRequest] : any other failed request, with the upstream message
//   - [shared.ErrLLMUnavailable] : the language model failed; callers fall back to keywords
package services
