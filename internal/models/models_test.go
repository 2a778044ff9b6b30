package models

import "testing"

func TestIntent(t *testing.T) {
	t.Run("IsMoodOrGenre", func(t *testing.T) {
		tc := []struct {
			name   string
			extras map[string]any
			want   bool
		}{
			{"nil extras", nil, false},
			{"bool true", map[string]any{ExtraMoodOrGenre: true}, true},
			{"bool false", map[string]any{ExtraMoodOrGenre: false}, false},
			{"string true", map[string]any{ExtraMoodOrGenre: "True"}, true},
			{"other type", map[string]any{ExtraMoodOrGenre: 1}, false},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := (Intent{Extras: tt.extras}).IsMoodOrGenre(); got != tt.want {
					t.Errorf("IsMoodOrGenre() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("WithSource copies extras", func(t *testing.T) {
		orig := Intent{Action: ActionPlayMusic, Extras: map[string]any{"k": 1}}
		tagged := orig.WithSource(SourceFallback)
		tagged.Extras["k"] = 2

		if orig.Extras["k"] != 1 {
			t.Error("original extras should not change")
		}
		if tagged.Source != SourceFallback || orig.Source != "" {
			t.Errorf("unexpected sources: %q, %q", tagged.Source, orig.Source)
		}
	})

	t.Run("Action.Valid", func(t *testing.T) {
		for _, a := range Actions {
			if !a.Valid() {
				t.Errorf("%s should be valid", a)
			}
		}
		if Action("dance").Valid() {
			t.Error("dance should not be valid")
		}
	})
}

func TestEntities(t *testing.T) {
	t.Run("MoodRequest prefers mode over action", func(t *testing.T) {
		intent := Intent{Action: ActionPlayMusic, Source: SourcePrimary}
		if got := NewMoodRequest("play x", intent, "x", ModeArtist).ResolvedAction; got != "artist" {
			t.Errorf("expected artist, got %s", got)
		}
		if got := NewMoodRequest("play x", intent, "x", "").ResolvedAction; got != "play_music" {
			t.Errorf("expected play_music, got %s", got)
		}
	})

	t.Run("ConnectedPlaylist.Validate", func(t *testing.T) {
		if err := NewConnectedPlaylist(" Focus ", "spotify:playlist:abc").Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if err := NewConnectedPlaylist("Focus", "spotify:track:abc").Validate(); err == nil {
			t.Error("expected error for non-playlist uri")
		}
		if NameKey("  Late Night ") != "late night" {
			t.Error("NameKey should trim and lowercase")
		}
	})

	t.Run("Track helpers", func(t *testing.T) {
		var empty Track
		if empty.PrimaryArtist() != "" || empty.PrimaryArtistURI() != "" || empty.PopularityOrZero() != 0 {
			t.Error("empty track helpers should return zero values")
		}
		pop := 70
		track := Track{Artists: []string{"BTS", "Halsey"}, ArtistURIs: []string{"spotify:artist:1"}, Popularity: &pop}
		if track.PrimaryArtist() != "BTS" || track.PopularityOrZero() != 70 {
			t.Errorf("unexpected helpers for %+v", track)
		}
	})
}
