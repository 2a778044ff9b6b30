package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodplay/internal/shared"
	"github.com/desertthunder/moodplay/internal/tasks"
)

// maxResults caps the play history shown in [PromptView].
const maxResults = 20

// Assistant is the part of [tasks.Assistant] the TUI drives.
type Assistant interface {
	Play(ctx context.Context, message, deviceID string) (*tasks.PlayResult, error)
	Recommend(ctx context.Context, req tasks.RecommendRequest, progress chan<- tasks.ProgressUpdate) (*tasks.RecommendResult, error)
}

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PromptView ViewState = iota
	RecommendView
)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	assistant Assistant
	deviceID  string
	logger    *log.Logger
	width     int
	height    int
	input     textinput.Model
	spinner   spinner.Model
	playing   bool
	loading   bool
	status    string
	results   list.Model
	recs      list.Model
	progress  tasks.ProgressUpdate
	recResult *tasks.RecommendResult
	recErr    error
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model that plays on deviceID ("" for the active device).
func NewModel(ctx context.Context, assistant Assistant, deviceID string, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	ti := textinput.New()
	ti.Placeholder = "What do you want to hear?"
	ti.Prompt = styles.prompt.Render("♪ ")
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.spinner

	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.Title = "Now Playing"
	results.SetShowHelp(false)
	results.SetFilteringEnabled(false)

	recs := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	recs.Title = "Recommendations"
	recs.SetShowHelp(false)

	return &Model{
		ctx:       ctx,
		view:      PromptView,
		assistant: assistant,
		deviceID:  deviceID,
		logger:    logger,
		input:     ti,
		spinner:   sp,
		results:   results,
		recs:      recs,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the cursor blinking in the prompt.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-8, 20)
		m.results.SetSize(msg.Width-4, msg.Height-10)
		m.recs.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case PromptView:
			return m.handlePromptKeys(msg)
		case RecommendView:
			return m.handleRecommendKeys(msg)
		}

	case spinner.TickMsg:
		if !m.playing && !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PromptView:
		return m.renderPrompt()
	case RecommendView:
		return m.renderRecommendations()
	default:
		return ""
	}
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlayComplete:
		p := msg.data.(playPayload)
		m.playing = false
		if p.err != nil {
			m.logger.Warn("play failed", "message", p.message, "error", p.err)
			m.err = p.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Playing %s", describeOutcome(p.result))
		cmd := m.results.InsertItem(0, playItem{message: p.message, result: p.result})
		if n := len(m.results.Items()); n > maxResults {
			m.results.RemoveItem(n - 1)
		}
		return m, cmd

	case MsgProgressUpdate:
		p := msg.data.(progressPayload)
		m.progress = p.update
		return m, waitForProgress(p.source)

	case MsgRecommendComplete:
		p := msg.data.(recommendPayload)
		m.loading = false
		m.recErr = p.err
		m.recResult = p.result
		if p.err != nil {
			m.logger.Warn("recommend failed", "error", p.err)
			return m, nil
		}
		items := make([]list.Item, len(p.result.Recommendations))
		for i, rec := range p.result.Recommendations {
			items[i] = recommendationItem{rank: i + 1, rec: rec}
		}
		m.recs.Title = fmt.Sprintf("Recommendations (%s, based on %d tracks)", p.result.TimeRange, p.result.BasedOn)
		return m, m.recs.SetItems(items)
	}
	return m, nil
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		message := strings.TrimSpace(m.input.Value())
		if message == "" || m.playing {
			return m, nil
		}
		m.input.Reset()
		m.status = fmt.Sprintf("Looking for %q", message)
		m.err = nil
		m.playing = true
		return m, tea.Batch(m.spinner.Tick, m.play(message))
	case key.Matches(msg, m.keys.recommend):
		return m.startRecommend()
	case key.Matches(msg, m.keys.toggle):
		m.view = RecommendView
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.input.Reset()
		m.err = nil
		m.status = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleRecommendKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.recs.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.recs, cmd = m.recs.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r", "ctrl+r":
		return m.startRecommend()
	case "esc", "tab":
		m.view = PromptView
		return m, nil
	}

	var cmd tea.Cmd
	m.recs, cmd = m.recs.Update(msg)
	return m, cmd
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PromptView:
		m.input, cmd = m.input.Update(msg)
	case RecommendView:
		m.recs, cmd = m.recs.Update(msg)
	}
	return m, cmd
}

func (m *Model) startRecommend() (tea.Model, tea.Cmd) {
	m.view = RecommendView
	if m.loading {
		return m, nil
	}
	m.loading = true
	m.recErr = nil
	m.progress = tasks.ProgressUpdate{}

	progress := make(chan tasks.ProgressUpdate, 50)
	return m, tea.Batch(m.spinner.Tick, m.recommend(progress), waitForProgress(progress))
}

func (m *Model) play(message string) tea.Cmd {
	ctx, assistant, deviceID := m.ctx, m.assistant, m.deviceID
	return func() tea.Msg {
		result, err := assistant.Play(ctx, message, deviceID)
		return playCompleteMsg(message, result, err)
	}
}

// recommend closes progress once the run finishes.
func (m *Model) recommend(progress chan tasks.ProgressUpdate) tea.Cmd {
	ctx, assistant := m.ctx, m.assistant
	return func() tea.Msg {
		defer close(progress)
		result, err := assistant.Recommend(ctx, tasks.RecommendRequest{}, progress)
		return recommendCompleteMsg(result, err)
	}
}

// waitForProgress relays one update from progress. The update handler re-arms it until progress is closed.
func waitForProgress(progress <-chan tasks.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return nil
		}
		return progressUpdateMsg(update, progress)
	}
}

func describeOutcome(result *tasks.PlayResult) string {
	out := result.Outcome
	if out.Query == "" {
		return string(out.Mode())
	}
	return fmt.Sprintf("%s for %q", out.Mode(), out.Query)
}

func (m *Model) renderPrompt() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("moodplay"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.playing:
		fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), m.status)
	case m.err != nil:
		fmt.Fprintf(&b, "%s\n\n", styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.status != "":
		fmt.Fprintf(&b, "%s\n\n", styles.ok.Render("✓ "+m.status))
	}

	if len(m.results.Items()) > 0 {
		b.WriteString(m.results.View())
		b.WriteString("\n\n")
	}

	helpKeys := []key.Binding{m.keys.submit, m.keys.recommend, m.keys.toggle, m.keys.back, m.keys.quit}
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderRecommendations() string {
	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.refresh, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.loading {
		title := styles.title.Render("Building Recommendations")
		phase := "Starting..."
		switch m.progress.Phase {
		case tasks.FetchProfile:
			if m.progress.Message != "" {
				phase = m.progress.Message
			}
		case tasks.SearchCandidates:
			phase = fmt.Sprintf("Searching artists (%d/%d)", m.progress.Step, m.progress.Total)
		default:
			phase = m.progress.Message
		}
		return fmt.Sprintf("%s\n\n%s %s\n\n%s", title, m.spinner.View(), phase, helpView)
	}

	if m.recErr != nil {
		return fmt.Sprintf("%s\n\n%s",
			styles.err.Render(fmt.Sprintf("Recommendations failed: %v", m.recErr)),
			styles.help.Render("Press r to retry, esc to go back"))
	}

	if m.recResult == nil {
		return fmt.Sprintf("%s\n\n%s\n\n%s",
			styles.title.Render("Recommendations"),
			styles.warn.Render("No recommendations yet"),
			helpView)
	}

	return fmt.Sprintf("%s\n\n%s", m.recs.View(), helpView)
}
