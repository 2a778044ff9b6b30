// Package server provides the moodplay HTTP API, its middleware, and the OAuth callback used by the CLI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally and dispatches on method per path,
// so one path can serve GET and POST.
//
// # API
//
// [API] registers the endpoints backed by a tasks.Assistant. Errors are written as {"detail": "..."}
// with the status chosen by [StatusFor]. [NewHandler] adds [Recover], [Logging] and [CORS].
//
// [Server] serves until its context is cancelled and then shuts down gracefully.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback for `moodplay auth`.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
