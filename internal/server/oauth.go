package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/desertthunder/moodplay/internal/shared"
	"golang.org/x/oauth2"
)

// OAuthResult is the outcome of one authorization callback: a token or an error.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// Exchanger trades an authorization code for a token, e.g. [services.OAuthService].
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>moodplay</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121212; color: #b3b3b3; }
        .card { text-align: center; padding: 2rem; }
        h1 { margin: 0 0 1rem 0; color: {{if .OK}}#1DB954{{else}}#E22134{{end}}; }
    </style>
</head>
<body>
    <div class="card">
        <h1>{{.Heading}}</h1>
        <p>{{.Detail}}</p>
    </div>
</body>
</html>
`))

type callbackView struct {
	OK      bool
	Heading string
	Detail  string
}

// OAuthHandler serves the single `/callback` hit of a CLI login and hands the token back
// through [OAuthHandler.Result]. It implements [Handler].
type OAuthHandler struct {
	exchanger Exchanger
	state     string
	results   chan OAuthResult
	once      sync.Once

	mu   sync.Mutex
	used bool
}

// NewOAuthHandler creates a handler that accepts state and exchanges codes through exchanger.
func NewOAuthHandler(exchanger Exchanger, state string) *OAuthHandler {
	return &OAuthHandler{
		exchanger: exchanger,
		state:     state,
		results:   make(chan OAuthResult, 1),
	}
}

func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP checks state, exchanges the code and publishes the result. Only the first request
// is processed.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.claim() {
		h.render(w, http.StatusBadRequest, callbackView{Heading: "Already handled", Detail: "This login has already completed."})
		return
	}

	q := r.URL.Query()
	if q.Get("state") != h.state {
		h.fail(w, http.StatusBadRequest, fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed))
		return
	}

	code := q.Get("code")
	if code == "" {
		h.fail(w, http.StatusBadRequest, fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, q.Get("error"), q.Get("error_description")))
		return
	}

	token, err := h.exchanger.Exchange(r.Context(), code)
	if err != nil {
		err = fmt.Errorf("token exchange failed: %w", err)
		h.fail(w, StatusFor(err), err)
		return
	}

	h.Send(OAuthResult{Token: token})
	h.render(w, http.StatusOK, callbackView{
		OK:      true,
		Heading: "✓ Connected to Spotify",
		Detail:  "You can close this window and return to the terminal.",
	})
}

func (h *OAuthHandler) claim() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.used {
		return false
	}
	h.used = true
	return true
}

func (h *OAuthHandler) fail(w http.ResponseWriter, status int, err error) {
	h.Send(OAuthResult{err: err})
	h.render(w, status, callbackView{Heading: "Authorization failed", Detail: err.Error()})
}

func (h *OAuthHandler) render(w http.ResponseWriter, status int, view callbackView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	callbackPage.Execute(w, view)
}

// Send publishes result. Only the first call has any effect.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result yields exactly one result and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}
