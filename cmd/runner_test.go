package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
	tu "github.com/desertthunder/moodplay/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			music := &tu.MockMusic{}
			db := tu.NewTestDB(t)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Music:      music,
				DB:         db,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.music != music {
				t.Error("expected music to be set")
			}
			if runner.db != db || runner.ownsDB {
				t.Error("expected db to be set and not owned")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
				continue
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "serve", "ask", "play", "recommend", "history", "playlists", "tui"} {
			if !names[want] {
				t.Errorf("expected %q to be registered", want)
			}
		}
	})

	t.Run("saveTokens", func(t *testing.T) {
		t.Run("saves tokens successfully", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")

			config := shared.DefaultConfig()
			config.Credentials.Spotify.ClientID = "test_id"
			config.Credentials.Spotify.ClientSecret = "test_secret"

			if err := shared.SaveConfig(configPath, config); err != nil {
				t.Fatalf("failed to create test config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Config: config, ConfigPath: configPath})

			token := &oauth2.Token{AccessToken: "new_access_token", RefreshToken: "new_refresh_token"}
			if err := runner.saveTokens(token); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loadedConfig, err := shared.LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to reload config: %v", err)
			}
			if loadedConfig.Credentials.Spotify.AccessToken != "new_access_token" {
				t.Errorf("expected access token to be updated, got %s", loadedConfig.Credentials.Spotify.AccessToken)
			}
			if loadedConfig.Credentials.Spotify.RefreshToken != "new_refresh_token" {
				t.Errorf("expected refresh token to be updated, got %s", loadedConfig.Credentials.Spotify.RefreshToken)
			}
		})

		t.Run("handles nil config error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/tmp/test.toml"})
			runner.config = nil

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
			if err == nil || !strings.Contains(err.Error(), "config is nil") {
				t.Errorf("expected nil config error, got %v", err)
			}
		})

		t.Run("handles empty configPath", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{Config: config})

			if err := runner.saveTokens(&oauth2.Token{AccessToken: "new_token", RefreshToken: "new_refresh"}); err != nil {
				t.Fatalf("expected no error with empty path, got %v", err)
			}
			if config.Credentials.Spotify.AccessToken != "new_token" {
				t.Error("expected config to be updated in memory")
			}
		})

		t.Run("handles SaveConfig failure", func(t *testing.T) {
			invalidPath := filepath.Join(t.TempDir(), "missing", "impossible", "config.toml")
			runner := NewRunner(RunnerOpts{Config: shared.DefaultConfig(), ConfigPath: invalidPath})

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
			if err == nil || !strings.Contains(err.Error(), "failed to save config") {
				t.Errorf("expected save config error, got %v", err)
			}
		})

		t.Run("handles Update error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config:     shared.DefaultConfig(),
				ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
			})

			err := runner.saveTokens(nil)
			if err == nil || !strings.Contains(err.Error(), "failed to update spotify configuration") {
				t.Fatalf("expected update error, got %v", err)
			}
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument in chain, got %v", err)
			}
		})
	})
}

// testApp mirrors the root command in main with the runner's commands attached.
func testApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name: "moodplay",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.toml"},
			&cli.BoolFlag{Name: "verbose"},
		},
		Before:   r.Init,
		After:    r.Close,
		Commands: r.register(),
	}
}

func catalog() *tu.MockMusic {
	return &tu.MockMusic{
		Searches: map[string][]models.Track{
			"Hurt NewJeans": {tu.Track("t1", "Hurt", 80, "NewJeans")},
			"NewJeans":      {tu.Track("t2", "Ditto", 90, "NewJeans")},
		},
		Top: []models.Track{
			tu.Track("t1", "Hurt", 80, "NewJeans"),
			tu.Track("t2", "Ditto", 90, "NewJeans"),
		},
		User: &models.UserProfile{ID: "listener", DisplayName: "Listener", Country: "US"},
		DeviceList: []models.Device{
			{ID: "device-1", Name: "Kitchen", Type: "Speaker", IsActive: true},
			{ID: "device-2", Name: "Laptop", Type: "Computer"},
		},
	}
}

type harness struct {
	runner *Runner
	music  *tu.MockMusic
	output *bytes.Buffer
}

func newHarness(t *testing.T, music *tu.MockMusic) *harness {
	t.Helper()

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Music:      music,
		DB:         tu.NewTestDB(t),
		Logger:     shared.NewLogger(io.Discard),
		Output:     output,
	})
	return &harness{runner: runner, music: music, output: output}
}

// run executes args against a fresh root command and returns what was written.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	h.output.Reset()
	err := testApp(h.runner).Run(context.Background(), append([]string{"moodplay"}, args...))
	return h.output.String(), err
}

func TestCommands(t *testing.T) {
	t.Run("ask prints the resolved intent", func(t *testing.T) {
		h := newHarness(t, catalog())

		out, err := h.run(t, "ask", "--json=false", "play", "Hurt", "NewJeans")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Action: play_music", "Query: Hurt NewJeans", "Source: fallback"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got %s", want, out)
			}
		}
	})

	t.Run("ask requires a message", func(t *testing.T) {
		h := newHarness(t, catalog())

		if _, err := h.run(t, "ask"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("play writes the playback response", func(t *testing.T) {
		h := newHarness(t, catalog())

		out, err := h.run(t, "play", "--json", "--pretty=false", "Hurt", "NewJeans")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var resp map[string]any
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		if resp["status"] != "playing" || resp["mode"] != "track" || resp["track"] != "Hurt" || resp["device_id"] != "device-1" {
			t.Errorf("unexpected response %v", resp)
		}
		if calls := h.music.Calls(); calls[len(calls)-1] != "play_track spotify:track:t1" {
			t.Errorf("unexpected calls %v", calls)
		}
	})

	t.Run("play prints a summary on the chosen device", func(t *testing.T) {
		h := newHarness(t, catalog())

		out, err := h.run(t, "play", "--device", "speaker", "NewJeans")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"▶ Playing (artist)", "device_id: speaker", "Intent: play_music via fallback"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got %s", want, out)
			}
		}
	})

	t.Run("history lists played tracks", func(t *testing.T) {
		h := newHarness(t, catalog())

		if _, err := h.run(t, "play", "Hurt", "NewJeans"); err != nil {
			t.Fatalf("play failed: %v", err)
		}

		out, err := h.run(t, "history", "--json=false")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "1. NewJeans - Hurt [track]") {
			t.Errorf("expected played track, got %s", out)
		}

		out, err = h.run(t, "requests", "--latest", "--json=false")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, `"Hurt NewJeans"`) || !strings.Contains(out, "track") {
			t.Errorf("expected latest request, got %s", out)
		}
	})

	t.Run("requests json", func(t *testing.T) {
		h := newHarness(t, catalog())

		if _, err := h.run(t, "ask", "play", "NewJeans"); err != nil {
			t.Fatalf("ask failed: %v", err)
		}

		out, err := h.run(t, "requests", "--json", "--pretty=false")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var resp struct {
			Requests []map[string]any `json:"requests"`
		}
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		if len(resp.Requests) != 1 || resp.Requests[0]["message"] != "play NewJeans" || resp.Requests[0]["intent_source"] != "fallback" {
			t.Errorf("unexpected requests %v", resp.Requests)
		}
	})

	t.Run("playlists connect, list and disconnect", func(t *testing.T) {
		h := newHarness(t, catalog())

		out, err := h.run(t, "playlists", "connect", "Focus", "Mix", "spotify:playlist:abc")
		if err != nil {
			t.Fatalf("connect failed: %v", err)
		}
		if !strings.Contains(out, `Connected "Focus Mix"`) {
			t.Errorf("unexpected connect output %s", out)
		}

		if _, err := h.run(t, "playlists", "connect", "focus mix", "spotify:playlist:def"); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected duplicate name to fail validation, got %v", err)
		}

		out, err = h.run(t, "playlists", "list", "--json=false")
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(out, "• Focus Mix") || !strings.Contains(out, "URI: spotify:playlist:abc") {
			t.Errorf("unexpected list output %s", out)
		}

		if _, err := h.run(t, "playlists", "disconnect", "FOCUS", "MIX"); err != nil {
			t.Fatalf("disconnect failed: %v", err)
		}
		if _, err := h.run(t, "playlists", "disconnect", "focus", "mix"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("playlists connect requires a uri", func(t *testing.T) {
		h := newHarness(t, catalog())

		if _, err := h.run(t, "playlists", "connect", "Focus"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("play-track validates the uri", func(t *testing.T) {
		h := newHarness(t, catalog())

		if _, err := h.run(t, "play-track", "spotify:album:x"); !errors.Is(err, shared.ErrInvalidTrackURI) {
			t.Errorf("expected ErrInvalidTrackURI, got %v", err)
		}

		out, err := h.run(t, "play-track", "spotify:track:t9")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "▶ Playing spotify:track:t9 on device-1") {
			t.Errorf("unexpected output %s", out)
		}
	})

	t.Run("top-tracks writes a csv report", func(t *testing.T) {
		h := newHarness(t, catalog())
		path := filepath.Join(t.TempDir(), "top.csv")

		out, err := h.run(t, "top-tracks", "--format", "csv", "--output", path, "--time-range", "short_term")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "2 tracks written to") {
			t.Errorf("unexpected output %s", out)
		}

		tu.AssertFileExists(t, path)
		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "1,t1,Hurt,NewJeans") {
			t.Errorf("unexpected report %s", content)
		}
	})

	t.Run("top-tracks rejects an unknown range", func(t *testing.T) {
		h := newHarness(t, catalog())

		if _, err := h.run(t, "top-tracks", "--time-range", "forever"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("devices", func(t *testing.T) {
		h := newHarness(t, catalog())

		out, err := h.run(t, "devices", "--json=false")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Found 2 devices") || !strings.Contains(out, "• Kitchen [Speaker] (active)") {
			t.Errorf("unexpected output %s", out)
		}
	})

	t.Run("not authenticated suggests logging in", func(t *testing.T) {
		music := catalog()
		music.Err = shared.ErrNotAuthenticated
		h := newHarness(t, music)

		_, err := h.run(t, "devices")
		if !errors.Is(err, shared.ErrNotAuthenticated) || !strings.Contains(err.Error(), "moodplay auth login") {
			t.Errorf("expected login hint, got %v", err)
		}
	})

	t.Run("me", func(t *testing.T) {
		h := newHarness(t, catalog())

		out, err := h.run(t, "me", "--json=false")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Listener") || !strings.Contains(out, "Country: US") {
			t.Errorf("unexpected output %s", out)
		}
	})

	t.Run("auth status", func(t *testing.T) {
		h := newHarness(t, catalog())

		out, err := h.run(t, "auth", "status")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Not authenticated") {
			t.Errorf("unexpected output %s", out)
		}

		h.music.Authenticate(context.Background(), map[string]string{"access_token": "a"})
		out, err = h.run(t, "auth", "status")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "✓ Authenticated as Listener (listener)") {
			t.Errorf("unexpected output %s", out)
		}
	})

	t.Run("without spotify credentials", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "")

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})
		configPath := filepath.Join(t.TempDir(), "config.toml")

		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientID = ""
		config.Credentials.Spotify.ClientSecret = ""
		if err := shared.SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		err := testApp(runner).Run(context.Background(), []string{"moodplay", "--config", configPath, "devices"})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if runner.configPath != configPath {
			t.Errorf("expected config path %s, got %s", configPath, runner.configPath)
		}
	})
}

func TestSetup(t *testing.T) {
	wd := tu.MustGetwd(t)
	dir := t.TempDir()
	tu.MustChdir(t, dir)
	t.Cleanup(func() { tu.MustChdir(t, wd) })

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		ConfigPath: filepath.Join(dir, "config.toml"),
		Logger:     shared.NewLogger(io.Discard),
		Output:     output,
	})
	app := func(args ...string) error {
		output.Reset()
		return testApp(runner).Run(context.Background(), append([]string{"moodplay"}, args...))
	}

	t.Run("database creates the config and migrates", func(t *testing.T) {
		if err := app("setup", "database"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
		tu.AssertFileExists(t, filepath.Join(dir, "moodplay.db"))
		if !strings.Contains(output.String(), "✓ Config file created") || !strings.Contains(output.String(), "✓ Database ready") {
			t.Errorf("unexpected output %s", output.String())
		}
	})

	t.Run("status lists applied migrations", func(t *testing.T) {
		if err := app("setup", "status"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "✓ 0001") {
			t.Errorf("expected first migration applied, got %s", output.String())
		}
	})

	t.Run("rollback", func(t *testing.T) {
		if err := app("setup", "rollback"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Rolled back") {
			t.Errorf("unexpected output %s", output.String())
		}
	})
}

func TestNewToolCaller(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		openai   string
		gemini   string
		wantNil  bool
		wantErr  error
	}{
		{name: "empty provider", provider: "", wantNil: true},
		{name: "none", provider: "None", wantNil: true},
		{name: "openai", provider: "openai", openai: "sk-test"},
		{name: "openai without key", provider: "openai", wantNil: true, wantErr: shared.ErrMissingCredentials},
		{name: "gemini without key", provider: "gemini", wantNil: true, wantErr: shared.ErrMissingCredentials},
		{name: "unknown provider", provider: "claude", wantNil: true, wantErr: shared.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := shared.DefaultConfig()
			config.LLM.Provider = tt.provider
			config.Credentials.OpenAI.APIKey = tt.openai
			config.Credentials.Gemini.APIKey = tt.gemini

			caller, err := newToolCaller(context.Background(), config, http.DefaultClient)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (caller == nil) != tt.wantNil {
				t.Errorf("caller = %v, want nil %v", caller, tt.wantNil)
			}
		})
	}
}

// A language model that cannot be reached leaves the keyword resolver in charge.
func TestUnreachableModelFallsBack(t *testing.T) {
	tests := []struct {
		name      string
		transport http.RoundTripper
	}{
		{name: "transport error", transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))},
		{name: "unreadable body", transport: tu.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       &tu.FCloser{},
		}, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := shared.DefaultConfig()
			config.LLM.Provider = "openai"
			config.Credentials.OpenAI.APIKey = "sk-test"

			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
				Music:      catalog(),
				DB:         tu.NewTestDB(t),
				HTTPClient: &http.Client{Transport: tt.transport},
				Logger:     shared.NewLogger(io.Discard),
				Output:     output,
			})

			err := testApp(runner).Run(context.Background(), []string{"moodplay", "ask", "--pretty=false", "--json", "play", "NewJeans"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var in models.Intent
			if err := json.Unmarshal(output.Bytes(), &in); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, output.String())
			}
			if in.Action != models.ActionPlayMusic || in.Query != "NewJeans" || in.Source != models.SourceFallback {
				t.Errorf("unexpected intent %+v", in)
			}
		})
	}
}

func TestDescribeResponse(t *testing.T) {
	got := describeResponse(map[string]any{
		"status":    "playing",
		"mode":      "track",
		"track":     "Hurt",
		"artists":   []string{"NewJeans", "Guest"},
		"uri":       "spotify:track:t1",
		"shuffle":   false,
		"device_id": "",
	})

	want := [][2]string{
		{"track", "Hurt"},
		{"artists", "NewJeans, Guest"},
		{"uri", "spotify:track:t1"},
		{"shuffle", "false"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %v, want %v", i, got[i], want[i])
		}
	}
}
