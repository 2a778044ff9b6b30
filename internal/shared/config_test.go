package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./moodplay.db" {
			t.Errorf("expected database path ./moodplay.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8000 {
			t.Errorf("expected server port 8000, got %d", config.Server.Port)
		}
		if config.Credentials.Spotify.RedirectURI != "http://localhost:8000/callback" {
			t.Errorf("unexpected redirect uri %s", config.Credentials.Spotify.RedirectURI)
		}
		if config.LLM.Model != "gpt-4o-mini" {
			t.Errorf("expected model gpt-4o-mini, got %s", config.LLM.Model)
		}
		if config.Playback.SearchLimit != 10 {
			t.Errorf("expected search limit 10, got %d", config.Playback.SearchLimit)
		}
		if config.Recommend.TopN != 10 {
			t.Errorf("expected top_n 10, got %d", config.Recommend.TopN)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[llm]
provider = "gemini"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Address() != "0.0.0.0:8080" {
			t.Errorf("expected address 0.0.0.0:8080, got %s", config.Server.Address())
		}
		if config.LLM.Provider != "gemini" {
			t.Errorf("expected provider gemini, got %s", config.LLM.Provider)
		}
		if config.Playback.SearchLimit != 10 {
			t.Errorf("expected default search limit to survive, got %d", config.Playback.SearchLimit)
		}
	})

	t.Run("LoadConfig rejects invalid toml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		os.WriteFile(configPath, []byte("[database\npath ="), 0644)

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		config := DefaultConfig()
		env := map[string]string{
			"SPOTIFY_CLIENT_ID": "env_id",
			"OPENAI_API_KEY":    "sk-env",
		}
		config.ApplyEnv(func(k string) string { return env[k] })

		if config.Credentials.Spotify.ClientID != "env_id" {
			t.Errorf("expected env client id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.OpenAI.APIKey != "sk-env" {
			t.Errorf("expected env api key, got %s", config.Credentials.OpenAI.APIKey)
		}
		if config.Credentials.Spotify.ClientSecret != "your_spotify_client_secret" {
			t.Errorf("unset env should not override, got %s", config.Credentials.Spotify.ClientSecret)
		}
	})

	t.Run("Token round trip", func(t *testing.T) {
		var sc SpotifyConfig
		if sc.Token() != nil {
			t.Fatal("expected nil token when nothing is stored")
		}

		expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		if err := sc.Update(&oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: expiry}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := sc.Update(&oauth2.Token{AccessToken: "b"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		token := sc.Token()
		if token.AccessToken != "b" || token.RefreshToken != "r" {
			t.Errorf("expected refreshed access token with kept refresh token, got %+v", token)
		}
		if !token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, token.Expiry)
		}

		if err := sc.Update(nil); err == nil {
			t.Error("expected error for nil token")
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Credentials.Spotify.AccessToken = "saved"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.Credentials.Spotify.AccessToken != "saved" {
			t.Errorf("expected saved token, got %q", loaded.Credentials.Spotify.AccessToken)
		}
	})
}
