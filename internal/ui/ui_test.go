package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/playback"
	"github.com/desertthunder/moodplay/internal/shared"
	"github.com/desertthunder/moodplay/internal/tasks"
	th "github.com/desertthunder/moodplay/internal/testing"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAssistant struct {
	messages []string
	devices  []string
	playErr  error
	recErr   error
	updates  []tasks.ProgressUpdate
}

func (f *fakeAssistant) Play(_ context.Context, message, deviceID string) (*tasks.PlayResult, error) {
	f.messages = append(f.messages, message)
	f.devices = append(f.devices, deviceID)
	if f.playErr != nil {
		return nil, f.playErr
	}
	return &tasks.PlayResult{
		Intent: models.Intent{Action: models.ActionPlayMusic, Query: message, Source: models.SourceFallback},
		Outcome: &playback.Outcome{
			Query:    message,
			Decision: playback.MultiDecision{URIs: []string{"spotify:track:1"}, Artists: []string{"NewJeans"}},
			Playback: models.PlaybackContext{DeviceID: "device-1", Shuffle: true},
		},
	}, nil
}

func (f *fakeAssistant) Recommend(_ context.Context, _ tasks.RecommendRequest, progress chan<- tasks.ProgressUpdate) (*tasks.RecommendResult, error) {
	for _, u := range f.updates {
		progress <- u
	}
	if f.recErr != nil {
		return nil, f.recErr
	}
	recs := []models.Recommendation{
		{Track: th.Track("c1", "Attention", 80, "NewJeans"), SimilarityScore: 0.91},
		{Track: th.Track("c2", "Ditto", 70, "NewJeans"), SimilarityScore: 0.42},
	}
	return &tasks.RecommendResult{Total: 2, BasedOn: 30, TimeRange: models.MediumTerm, Recommendations: recs}, nil
}

func newTestModel(t *testing.T, a Assistant) *Model {
	t.Helper()
	m := NewModel(context.Background(), a, "dev", shared.NewLogger(&strings.Builder{}))
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// run executes cmd and any batched commands, returning the messages in order.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, run(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func messagesOf(msgs []tea.Msg, kind MsgKind) []Msg {
	var out []Msg
	for _, msg := range msgs {
		if m, ok := msg.(Msg); ok && m.kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func press(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }
func runes(s string) tea.KeyMsg      { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestPrompt(t *testing.T) {
	t.Run("enter plays the trimmed message on the device", func(t *testing.T) {
		a := &fakeAssistant{}
		m := newTestModel(t, a)
		m.input.SetValue("  lofi  ")

		_, cmd := m.Update(press(tea.KeyEnter))
		if !m.playing {
			t.Fatal("expected model to be playing")
		}
		if m.input.Value() != "" {
			t.Errorf("expected input to be cleared, got %q", m.input.Value())
		}

		done := messagesOf(run(cmd), MsgPlayComplete)
		if len(done) != 1 {
			t.Fatalf("expected 1 play result, got %d", len(done))
		}
		if a.messages[0] != "lofi" || a.devices[0] != "dev" {
			t.Errorf("unexpected play call %q on %q", a.messages[0], a.devices[0])
		}

		m.Update(done[0])
		if m.playing {
			t.Error("expected playing to stop")
		}
		if len(m.results.Items()) != 1 {
			t.Fatalf("expected 1 result, got %d", len(m.results.Items()))
		}
		if m.status != `Playing multi for "lofi"` {
			t.Errorf("unexpected status %q", m.status)
		}
		if view := m.View(); !strings.Contains(view, "lofi") {
			t.Errorf("view missing result, got: %s", view)
		}
	})

	t.Run("empty message does nothing", func(t *testing.T) {
		a := &fakeAssistant{}
		m := newTestModel(t, a)
		m.input.SetValue("   ")

		_, cmd := m.Update(press(tea.KeyEnter))
		if cmd != nil || m.playing {
			t.Error("expected no play for an empty message")
		}
	})

	t.Run("play errors are shown", func(t *testing.T) {
		m := newTestModel(t, &fakeAssistant{playErr: shared.ErrNoTracksFound})
		m.input.SetValue("zzzz")

		_, cmd := m.Update(press(tea.KeyEnter))
		for _, msg := range run(cmd) {
			m.Update(msg)
		}

		if !errors.Is(m.err, shared.ErrNoTracksFound) {
			t.Errorf("expected ErrNoTracksFound, got %v", m.err)
		}
		if view := m.View(); !strings.Contains(view, "Error:") {
			t.Errorf("view missing error, got: %s", view)
		}
		if len(m.results.Items()) != 0 {
			t.Error("failed plays should not be listed")
		}
	})

	t.Run("esc clears input and error", func(t *testing.T) {
		m := newTestModel(t, &fakeAssistant{})
		m.input.SetValue("half typed")
		m.err = shared.ErrNoDevice

		m.Update(press(tea.KeyEsc))
		if m.input.Value() != "" || m.err != nil {
			t.Errorf("expected cleared prompt, got %q %v", m.input.Value(), m.err)
		}
	})

	t.Run("typing q does not quit", func(t *testing.T) {
		m := newTestModel(t, &fakeAssistant{})
		m.Update(runes("q"))
		if m.input.Value() != "q" {
			t.Errorf("expected q to be typed, got %q", m.input.Value())
		}
	})

	t.Run("ctrl+c quits", func(t *testing.T) {
		m := newTestModel(t, &fakeAssistant{})
		_, cmd := m.Update(press(tea.KeyCtrlC))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("results are capped", func(t *testing.T) {
		a := &fakeAssistant{}
		m := newTestModel(t, a)
		for range maxResults + 3 {
			result, _ := a.Play(context.Background(), "lofi", "")
			m.Update(playCompleteMsg("lofi", result, nil))
		}
		if n := len(m.results.Items()); n != maxResults {
			t.Errorf("expected %d results, got %d", maxResults, n)
		}
	})
}

func TestRecommendView(t *testing.T) {
	t.Run("ctrl+r builds recommendations with progress", func(t *testing.T) {
		a := &fakeAssistant{updates: []tasks.ProgressUpdate{
			{Phase: tasks.SearchCandidates, Step: 1, Total: 2, Message: "Searching NewJeans"},
		}}
		m := newTestModel(t, a)

		_, cmd := m.Update(press(tea.KeyCtrlR))
		if m.view != RecommendView || !m.loading {
			t.Fatalf("expected loading recommend view, got view=%d loading=%v", m.view, m.loading)
		}

		msgs := run(cmd)
		progress := messagesOf(msgs, MsgProgressUpdate)
		if len(progress) != 1 {
			t.Fatalf("expected 1 progress update, got %d", len(progress))
		}

		_, next := m.Update(progress[0])
		if next == nil {
			t.Error("expected progress to re-arm")
		} else if rest := run(next); len(rest) != 0 {
			t.Errorf("expected closed progress channel, got %v", rest)
		}
		if view := m.View(); !strings.Contains(view, "Searching artists (1/2)") {
			t.Errorf("view missing progress, got: %s", view)
		}

		done := messagesOf(msgs, MsgRecommendComplete)
		if len(done) != 1 {
			t.Fatalf("expected 1 recommend result, got %d", len(done))
		}
		m.Update(done[0])

		if m.loading {
			t.Error("expected loading to stop")
		}
		if len(m.recs.Items()) != 2 {
			t.Fatalf("expected 2 recommendations, got %d", len(m.recs.Items()))
		}
		view := m.View()
		if !strings.Contains(view, "1. Attention") || !strings.Contains(view, "based on 30 tracks") {
			t.Errorf("view missing recommendations, got: %s", view)
		}
	})

	t.Run("errors are shown", func(t *testing.T) {
		m := newTestModel(t, &fakeAssistant{recErr: shared.ErrProfileNotBuilt})

		_, cmd := m.Update(press(tea.KeyCtrlR))
		for _, msg := range messagesOf(run(cmd), MsgRecommendComplete) {
			m.Update(msg)
		}

		if view := m.View(); !strings.Contains(view, "Recommendations failed") {
			t.Errorf("view missing error, got: %s", view)
		}
	})

	t.Run("empty before the first run", func(t *testing.T) {
		m := newTestModel(t, &fakeAssistant{})
		m.Update(press(tea.KeyTab))

		if m.view != RecommendView {
			t.Fatal("expected tab to switch views")
		}
		if view := m.View(); !strings.Contains(view, "No recommendations yet") {
			t.Errorf("unexpected view: %s", view)
		}
	})

	t.Run("esc goes back and q quits", func(t *testing.T) {
		m := newTestModel(t, &fakeAssistant{})
		m.Update(press(tea.KeyTab))

		m.Update(press(tea.KeyEsc))
		if m.view != PromptView {
			t.Error("expected esc to return to the prompt")
		}

		m.Update(press(tea.KeyTab))
		_, cmd := m.Update(runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestItems(t *testing.T) {
	a := &fakeAssistant{}
	result, _ := a.Play(context.Background(), "lofi", "")

	play := playItem{message: "play lofi", result: result}
	if got := play.Description(); got != `multi • "lofi" • fallback • device device-1` {
		t.Errorf("unexpected play description %q", got)
	}

	track := th.Track("c1", "Attention", 80, "NewJeans", "Guest")
	track.Album = "New Jeans"
	rec := recommendationItem{rank: 3, rec: models.Recommendation{Track: track, SimilarityScore: 0.5}}
	if rec.Title() != "3. Attention" {
		t.Errorf("unexpected title %q", rec.Title())
	}
	if got := rec.Description(); got != "NewJeans, Guest • New Jeans • 0.500" {
		t.Errorf("unexpected recommendation description %q", got)
	}
}
