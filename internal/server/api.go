package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/services"
	"github.com/desertthunder/moodplay/internal/shared"
	"github.com/desertthunder/moodplay/internal/tasks"
)

const (
	appName       = "moodplay"
	maxBodyBytes  = 1 << 20
	stateLifetime = 10 * time.Minute
)

// API serves the assistant over HTTP.
type API struct {
	assistant *tasks.Assistant
	auth      services.OAuthService
	logger    *log.Logger

	mu     sync.Mutex
	states map[string]time.Time
}

// NewAPI creates the HTTP API for assistant. auth backs /auth and /callback.
func NewAPI(assistant *tasks.Assistant, auth services.OAuthService, logger *log.Logger) *API {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &API{
		assistant: assistant,
		auth:      auth,
		logger:    logger,
		states:    map[string]time.Time{},
	}
}

// Register adds every endpoint to r.
func (a *API) Register(r Router) {
	r.Handle(http.MethodGet, "/{$}", http.HandlerFunc(a.root))
	r.Handle(http.MethodGet, "/health", http.HandlerFunc(a.health))
	r.Handle(http.MethodGet, "/auth", http.HandlerFunc(a.authorize))
	r.Handle(http.MethodGet, "/callback", http.HandlerFunc(a.callback))
	r.Handle(http.MethodGet, "/me", http.HandlerFunc(a.me))
	r.Handle(http.MethodGet, "/devices", http.HandlerFunc(a.devices))
	r.Handle(http.MethodGet, "/top-tracks", http.HandlerFunc(a.topTracks))
	r.Handle(http.MethodPost, "/ask", http.HandlerFunc(a.ask))
	r.Handle(http.MethodPost, "/play", http.HandlerFunc(a.play))
	r.Handle(http.MethodPost, "/play-track", http.HandlerFunc(a.playTrack))
	r.Handle(http.MethodGet, "/recommend", http.HandlerFunc(a.recommend))
	r.Handle(http.MethodGet, "/latest-command", http.HandlerFunc(a.latestCommand))
	r.Handle(http.MethodGet, "/mood-requests", http.HandlerFunc(a.moodRequests))
	r.Handle(http.MethodGet, "/playlists", http.HandlerFunc(a.listPlaylists))
	r.Handle(http.MethodPost, "/playlists", http.HandlerFunc(a.connectPlaylist))
	r.Handle(http.MethodDelete, "/playlists", http.HandlerFunc(a.disconnectPlaylist))
}

// NewHandler builds a router with logging, CORS and panic recovery around api.
func NewHandler(api *API, logger *log.Logger) http.Handler {
	r := NewBasicRouter()
	r.Use(Recover(logger), Logging(logger), CORS())
	api.Register(r)
	return r
}

func (a *API) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "running"})
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "app": appName})
}

func (a *API) authorize(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateState()
	if err != nil {
		a.fail(w, r, err)
		return
	}

	a.mu.Lock()
	now := time.Now()
	for s, issued := range a.states {
		if now.Sub(issued) > stateLifetime {
			delete(a.states, s)
		}
	}
	a.states[state] = now
	a.mu.Unlock()

	http.Redirect(w, r, a.auth.GetAuthURL(state), http.StatusTemporaryRedirect)
}

func (a *API) consumeState(state string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	issued, ok := a.states[state]
	delete(a.states, state)
	return ok && time.Since(issued) <= stateLifetime
}

func (a *API) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		writeError(w, http.StatusBadRequest, "Spotify auth error: "+e)
		return
	}
	code := q.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Missing authorization code.")
		return
	}
	if !a.consumeState(q.Get("state")) {
		writeError(w, http.StatusBadRequest, "Invalid state parameter.")
		return
	}

	if _, err := a.auth.Exchange(r.Context(), code); err != nil {
		a.fail(w, r, err)
		return
	}
	a.logger.Info("spotify token obtained via callback")

	if _, err := a.assistant.Me(r.Context()); err != nil {
		a.logger.Warn("failed to load profile after authentication", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "authenticated"})
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	profile, err := a.assistant.Me(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (a *API) devices(w http.ResponseWriter, r *http.Request) {
	devices, err := a.assistant.Devices(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices})
}

func (a *API) topTracks(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	timeRange := models.TimeRange(queryString(r, "time_range", string(models.MediumTerm)))

	tracks, err := a.assistant.TopTracks(r.Context(), limit, timeRange)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":      len(tracks),
		"time_range": timeRange,
		"tracks":     tracks,
	})
}

type askRequest struct {
	Message string `json:"message"`
}

func (a *API) ask(w http.ResponseWriter, r *http.Request) {
	var body askRequest
	if err := decodeJSON(w, r, &body); err != nil {
		a.fail(w, r, err)
		return
	}

	in, err := a.assistant.Ask(r.Context(), body.Message)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

type playRequest struct {
	Message  string `json:"message"`
	DeviceID string `json:"device_id"`
}

func (a *API) play(w http.ResponseWriter, r *http.Request) {
	var body playRequest
	if err := decodeJSON(w, r, &body); err != nil {
		a.fail(w, r, err)
		return
	}

	result, err := a.assistant.Play(r.Context(), body.Message, body.DeviceID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Outcome.Response())
}

type playTrackRequest struct {
	URI      string `json:"uri"`
	DeviceID string `json:"device_id"`
}

func (a *API) playTrack(w http.ResponseWriter, r *http.Request) {
	var body playTrackRequest
	if err := decodeJSON(w, r, &body); err != nil {
		a.fail(w, r, err)
		return
	}

	pc, err := a.assistant.PlayTrack(r.Context(), body.URI, body.DeviceID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "playing",
		"uri":       body.URI,
		"device_id": pc.DeviceID,
		"shuffle":   pc.Shuffle,
	})
}

func (a *API) recommend(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	topN, err := queryInt(r, "top_n", 0)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	result, err := a.assistant.Recommend(r.Context(), tasks.RecommendRequest{
		Limit:     limit,
		TimeRange: models.TimeRange(queryString(r, "time_range", string(models.MediumTerm))),
		TopN:      topN,
	}, nil)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) latestCommand(w http.ResponseWriter, r *http.Request) {
	latest, err := a.assistant.LatestRequest()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if latest == nil {
		writeJSON(w, http.StatusOK, map[string]any{"latest": nil})
		return
	}

	item := moodRequestJSON(latest)
	delete(item, "intent_source")
	writeJSON(w, http.StatusOK, map[string]any{"latest": item})
}

func (a *API) moodRequests(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 5)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	requests, err := a.assistant.RecentRequests(limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	items := make([]map[string]any, 0, len(requests))
	for _, req := range requests {
		items = append(items, moodRequestJSON(req))
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": items})
}

func (a *API) listPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := a.assistant.Playlists()
	if err != nil {
		a.fail(w, r, err)
		return
	}

	items := make([]map[string]any, 0, len(playlists))
	for _, p := range playlists {
		items = append(items, playlistJSON(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlists": items})
}

type connectPlaylistRequest struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

func (a *API) connectPlaylist(w http.ResponseWriter, r *http.Request) {
	var body connectPlaylistRequest
	if err := decodeJSON(w, r, &body); err != nil {
		a.fail(w, r, err)
		return
	}

	playlist, err := a.assistant.ConnectPlaylist(body.Name, body.URI)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlistJSON(playlist))
}

func (a *API) disconnectPlaylist(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		a.fail(w, r, fmt.Errorf("%w: name is required", shared.ErrValidation))
		return
	}
	if err := a.assistant.DisconnectPlaylist(name); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail writes err as {"detail": ...} with the status its class maps to.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

// StatusFor maps an error to the HTTP status for its class.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrTokenExpired),
		errors.Is(err, shared.ErrAuthFailed),
		errors.Is(err, shared.ErrMissingCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrTrackNotFound),
		errors.Is(err, shared.ErrNoTracksFound),
		errors.Is(err, shared.ErrPlaylistNotFound),
		errors.Is(err, shared.ErrNoDevice),
		errors.Is(err, shared.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAPIRequest),
		errors.Is(err, shared.ErrLLMUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", shared.ErrValidation, err)
	}
	return nil
}

func queryString(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", shared.ErrValidation, key)
	}
	return n, nil
}

func moodRequestJSON(m *models.MoodRequest) map[string]any {
	return map[string]any{
		"id":              m.ID(),
		"message":         m.Message,
		"resolved_action": nullable(m.ResolvedAction),
		"resolved_query":  nullable(m.ResolvedQuery),
		"intent_source":   nullable(m.IntentSource),
		"created_at":      m.CreatedAt().Format(time.RFC3339),
	}
}

func playlistJSON(p *models.ConnectedPlaylist) map[string]any {
	return map[string]any{
		"id":         p.ID(),
		"name":       p.Name,
		"uri":        p.URI,
		"created_at": p.CreatedAt().Format(time.RFC3339),
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
