package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes key value pairs", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("resolved intent", "action", "play_music")

		out := buf.String()
		if !strings.Contains(out, "resolved intent") || !strings.Contains(out, "action=play_music") {
			t.Errorf("unexpected log output: %q", out)
		}
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		tc := []struct {
			in   string
			want log.Level
		}{
			{"", log.InfoLevel},
			{"debug", log.DebugLevel},
			{"WARN", log.WarnLevel},
			{"nonsense", log.InfoLevel},
		}
		for _, tt := range tc {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	})
}

func TestGenerators(t *testing.T) {
	t.Run("GenerateID is unique", func(t *testing.T) {
		if GenerateID() == GenerateID() {
			t.Error("expected distinct ids")
		}
	})

	t.Run("GenerateState is url safe", func(t *testing.T) {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.ContainsAny(state, "+/=") {
			t.Errorf("state should be url safe, got %q", state)
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		ms   int
		want string
	}{
		{0, "0:00"},
		{61_000, "1:01"},
		{215_999, "3:35"},
	}
	for _, tt := range tc {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %s, want %s", tt.ms, got, tt.want)
		}
	}
}

func TestBrowserCommand(t *testing.T) {
	t.Setenv("BROWSER", "")
	orig := getRuntime
	defer func() { getRuntime = orig }()

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if _, err := browserCommand("http://localhost"); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("darwin uses open", func(t *testing.T) {
		getRuntime = func() string { return "darwin" }
		cmd, err := browserCommand("http://localhost")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(cmd.Path, "open") && cmd.Args[0] != "open" {
			t.Errorf("expected open, got %v", cmd.Args)
		}
	})

	t.Run("BROWSER overrides", func(t *testing.T) {
		t.Setenv("BROWSER", "lynx")
		cmd, _ := browserCommand("http://localhost")
		if cmd.Args[0] != "lynx" {
			t.Errorf("expected lynx, got %v", cmd.Args)
		}
	})
}
