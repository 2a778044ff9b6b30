package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/moodplay/internal/formatter"
	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
	"github.com/desertthunder/moodplay/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Ask resolves a message into an intent and prints it.
func (r *Runner) Ask(ctx context.Context, cmd *cli.Command) error {
	msg := message(cmd)
	if msg == "" {
		return fmt.Errorf("%w: message is required", shared.ErrMissingArgument)
	}

	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	in, err := a.Ask(ctx, msg)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(in, cmd.Bool("pretty"))
	}

	r.writePlain("Action: %s\n", in.Action)
	if in.Query != "" {
		r.writePlain("Query: %s\n", in.Query)
	}
	if in.IsMoodOrGenre() {
		r.writePlain("Mood or genre: yes\n")
	}
	return r.writePlain("Source: %s\n", in.Source)
}

// Play resolves a message, picks a playback mode and starts playback.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	msg := message(cmd)
	if msg == "" {
		return fmt.Errorf("%w: message is required", shared.ErrMissingArgument)
	}

	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("playing", "message", msg, "device", cmd.String("device"))

	var result *tasks.PlayResult
	err = r.withReauth(ctx, func() error {
		result, err = a.Play(ctx, msg, cmd.String("device"))
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Outcome.Response(), cmd.Bool("pretty"))
	}

	out := result.Outcome
	r.writePlain("▶ Playing (%s)", out.Mode())
	if out.Query != "" {
		r.writePlain(" %q", out.Query)
	}
	r.writePlain("\n")
	for _, field := range describeResponse(out.Response()) {
		r.writePlain("  %s: %s\n", field[0], field[1])
	}
	r.writePlain("  Intent: %s via %s\n", result.Intent.Action, result.Intent.Source)
	return nil
}

// describeResponse picks the printable mode fields out of a play response, in a stable order.
func describeResponse(resp map[string]any) [][2]string {
	var out [][2]string
	for _, key := range []string{"track", "artist", "artists", "track_count", "playlist", "uri", "queued", "shuffle", "device_id"} {
		v, ok := resp[key]
		if !ok {
			continue
		}
		var s string
		switch v := v.(type) {
		case []string:
			s = strings.Join(v, ", ")
		default:
			s = fmt.Sprint(v)
		}
		if s == "" {
			continue
		}
		out = append(out, [2]string{key, s})
	}
	return out
}

// PlayTrack plays one track by URI.
func (r *Runner) PlayTrack(ctx context.Context, cmd *cli.Command) error {
	uri := cmd.Args().First()
	if uri == "" {
		return fmt.Errorf("%w: track URI is required", shared.ErrMissingArgument)
	}

	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	var pc models.PlaybackContext
	err = r.withReauth(ctx, func() error {
		pc, err = a.PlayTrack(ctx, uri, cmd.String("device"))
		return err
	})
	if err != nil {
		return err
	}
	return r.writePlain("▶ Playing %s on %s\n", uri, cmp.Or(pc.DeviceID, "the active device"))
}

// Recommend builds a taste profile from the listener's top tracks and prints ranked recommendations.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	timeRange := models.TimeRange(cmd.String("time-range"))
	if !timeRange.Valid() {
		return fmt.Errorf("%w: invalid time range %q", shared.ErrInvalidArgument, timeRange)
	}

	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	req := tasks.RecommendRequest{
		Limit:     cmd.Int("limit"),
		TimeRange: timeRange,
		TopN:      cmd.Int("top-n"),
	}

	var result *tasks.RecommendResult
	err = r.withReauth(ctx, func() error {
		result, err = r.recommendWithProgress(ctx, a, req, cmd.String("output") == "")
		return err
	})
	if err != nil {
		return err
	}

	report := formatter.FromRecommendations(result.Recommendations, string(result.TimeRange), result.BasedOn)
	return r.writeReport(report, cmd.String("format"), cmd.String("output"))
}

// recommendWithProgress runs a recommendation, logging each phase. The fetch phase is echoed when echo is set.
func (r *Runner) recommendWithProgress(ctx context.Context, a *tasks.Assistant, req tasks.RecommendRequest, echo bool) (*tasks.RecommendResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logger.Debug("recommend progress", "phase", update.Phase, "step", update.Step, "total", update.Total)
			if echo && update.Phase == tasks.FetchProfile {
				r.writePlain("📥 %s\n", update.Message)
			}
		}
	}()

	result, err := a.Recommend(ctx, req, progressCh)
	close(progressCh)
	<-done
	return result, err
}

// TopTracks prints the listener's top tracks.
func (r *Runner) TopTracks(ctx context.Context, cmd *cli.Command) error {
	timeRange := models.TimeRange(cmd.String("time-range"))
	if !timeRange.Valid() {
		return fmt.Errorf("%w: invalid time range %q", shared.ErrInvalidArgument, timeRange)
	}

	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	var tracks []models.Track
	err = r.withReauth(ctx, func() error {
		tracks, err = a.TopTracks(ctx, cmd.Int("limit"), timeRange)
		return err
	})
	if err != nil {
		return err
	}

	return r.writeReport(formatter.FromTopTracks(tracks, string(timeRange)), cmd.String("format"), cmd.String("output"))
}

// writeReport writes report to path, or prints it. Markdown printed to a terminal is styled with glamour.
func (r *Runner) writeReport(report *formatter.Report, format, path string) error {
	if path != "" {
		if err := formatter.WriteExport(report, format, path); err != nil {
			return err
		}
		r.logger.Info("report written", "path", path, "tracks", len(report.Tracks))
		return r.writePlain("✓ %d tracks written to %s\n", len(report.Tracks), path)
	}

	data, err := formatter.Format(report, format)
	if err != nil {
		return err
	}

	if (format == formatter.FormatMarkdown || format == "md") && r.output == os.Stdout {
		rendered, err := formatter.RenderMarkdown(data, 0)
		if err != nil {
			r.logger.Warn("failed to style markdown", "error", err)
		} else {
			return r.writePlain("%s", rendered)
		}
	}
	return r.writePlain("%s", data)
}

// Devices lists the listener's playback devices.
func (r *Runner) Devices(ctx context.Context, cmd *cli.Command) error {
	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	var devices []models.Device
	err = r.withReauth(ctx, func() error {
		devices, err = a.Devices(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"devices": devices}, cmd.Bool("pretty"))
	}

	if len(devices) == 0 {
		return r.writePlain("No devices found. Open Spotify on a device and try again.\n")
	}

	r.writePlain("Found %d devices:\n\n", len(devices))
	for _, d := range devices {
		active := ""
		if d.IsActive {
			active = " (active)"
		}
		r.writePlain("• %s [%s]%s\n", d.Name, d.Type, active)
		r.writePlain("  ID: %s\n", d.ID)
	}
	return nil
}

// Me prints the authenticated profile.
func (r *Runner) Me(ctx context.Context, cmd *cli.Command) error {
	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	var profile *models.UserProfile
	err = r.withReauth(ctx, func() error {
		profile, err = a.Me(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", profile.DisplayName)
	r.writePlain("  ID: %s\n", profile.ID)
	if profile.Email != "" {
		r.writePlain("  Email: %s\n", profile.Email)
	}
	if profile.Country != "" {
		r.writePlain("  Country: %s\n", profile.Country)
	}
	if profile.Product != "" {
		r.writePlain("  Product: %s\n", profile.Product)
	}
	return nil
}
