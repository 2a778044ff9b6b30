package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodplay/internal/shared"
	"github.com/desertthunder/moodplay/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive prompt. Logs go to --log-file while it owns the terminal.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	logger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create TUI logger: %w", err)
	}
	shared.SetLogLevel(logger, r.logger.GetLevel())
	r.SetLogger(logger)

	if r.ownsMusic && r.assistant == nil {
		r.music = r.newSpotify(ctx)
		r.ownsMusic = r.music != nil
	}

	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, a, cmd.String("device"), shared.WithLogger(logger, "component", "tui"))
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
