package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/moodplay/internal/models"
	"github.com/desertthunder/moodplay/internal/shared"
	"github.com/urfave/cli/v3"
)

// History prints recently played tracks, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	plays, err := a.History(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		items := make([]map[string]any, 0, len(plays))
		for _, p := range plays {
			items = append(items, map[string]any{
				"track_id":  p.TrackID,
				"name":      p.Name,
				"artists":   p.Artists,
				"album":     p.Album,
				"uri":       p.URI,
				"action":    p.Action,
				"played_at": p.PlayedAt().Format(time.RFC3339),
			})
		}
		return r.writeJSON(map[string]any{"history": items}, cmd.Bool("pretty"))
	}

	if len(plays) == 0 {
		return r.writePlain("No tracks played yet.\n")
	}

	r.writePlainHeader("Recently Played")
	for i, p := range plays {
		r.writePlain("%d. %s - %s [%s]\n", i+1, strings.Join(p.Artists, ", "), p.Name, p.Action)
		r.writePlain("   %s • %s\n", p.URI, p.PlayedAt().Local().Format(time.DateTime))
	}
	return nil
}

// Requests prints recent mood requests, or only the latest with --latest.
func (r *Runner) Requests(ctx context.Context, cmd *cli.Command) error {
	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("latest") {
		latest, err := a.LatestRequest()
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			if latest == nil {
				return r.writeJSON(map[string]any{"latest": nil}, cmd.Bool("pretty"))
			}
			return r.writeJSON(map[string]any{"latest": requestJSON(latest)}, cmd.Bool("pretty"))
		}
		if latest == nil {
			return r.writePlain("No requests yet.\n")
		}
		r.writePlain("%q\n", latest.Message)
		return r.writePlain("  %s %s\n", latest.ResolvedAction, latest.ResolvedQuery)
	}

	requests, err := a.RecentRequests(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		items := make([]map[string]any, 0, len(requests))
		for _, req := range requests {
			items = append(items, requestJSON(req))
		}
		return r.writeJSON(map[string]any{"requests": items}, cmd.Bool("pretty"))
	}

	if len(requests) == 0 {
		return r.writePlain("No requests yet.\n")
	}

	r.writePlainHeader("Recent Requests")
	for i, req := range requests {
		r.writePlain("%d. %q\n", i+1, req.Message)
		r.writePlain("   %s", req.ResolvedAction)
		if req.ResolvedQuery != "" {
			r.writePlain(" %q", req.ResolvedQuery)
		}
		r.writePlain(" via %s • %s\n", req.IntentSource, req.CreatedAt().Local().Format(time.DateTime))
	}
	return nil
}

// PlaylistsList prints connected playlists.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	playlists, err := a.Playlists()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		items := make([]map[string]string, 0, len(playlists))
		for _, p := range playlists {
			items = append(items, map[string]string{"name": p.Name, "uri": p.URI})
		}
		return r.writeJSON(map[string]any{"playlists": items}, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No connected playlists. Add one with: moodplay playlists connect <name> <uri>\n")
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for _, p := range playlists {
		r.writePlain("• %s\n", p.Name)
		r.writePlain("  URI: %s\n", p.URI)
	}
	return nil
}

// PlaylistsConnect stores a name → playlist URI mapping.
func (r *Runner) PlaylistsConnect(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("%w: usage: playlists connect <name> <uri>", shared.ErrMissingArgument)
	}
	name := strings.Join(args[:len(args)-1], " ")
	uri := args[len(args)-1]

	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	playlist, err := a.ConnectPlaylist(name, uri)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Connected %q → %s\n", playlist.Name, playlist.URI)
}

// PlaylistsDisconnect removes a connected playlist by name, ignoring case.
func (r *Runner) PlaylistsDisconnect(ctx context.Context, cmd *cli.Command) error {
	name := message(cmd)
	if name == "" {
		return fmt.Errorf("%w: playlist name is required", shared.ErrMissingArgument)
	}

	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	if err := a.DisconnectPlaylist(name); err != nil {
		return err
	}
	return r.writePlain("✓ Disconnected %q\n", name)
}

func requestJSON(m *models.MoodRequest) map[string]any {
	return map[string]any{
		"message":         m.Message,
		"resolved_action": m.ResolvedAction,
		"resolved_query":  m.ResolvedQuery,
		"intent_source":   m.IntentSource,
		"created_at":      m.CreatedAt().Format(time.RFC3339),
	}
}
