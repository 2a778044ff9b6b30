// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func deviceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Usage:   "Spotify Connect device ID (defaults to the active device)",
	}
}

func jsonFlags(pretty bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: pretty,
		},
	}
}

func reportFlags(limit int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Number of top tracks to read",
			Value: limit,
		},
		&cli.StringFlag{
			Name:    "time-range",
			Aliases: []string{"t"},
			Usage:   "Top tracks window: short_term, medium_term or long_term",
			Value:   "medium_term",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, csv, json or markdown",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the report to a file instead of stdout",
		},
	}
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "List migrations and whether they have been applied",
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles Spotify authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify using OAuth2 and save the tokens",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check whether a Spotify token is available and valid",
				Action: r.AuthStatus,
			},
		},
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Address to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

func askCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Resolve a message into an intent without playing anything",
		ArgsUsage: "<message>",
		Flags:     jsonFlags(true),
		Action:    r.Ask,
	}
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play a mood, genre, artist or song",
		ArgsUsage: "<message>",
		Flags:     append([]cli.Flag{deviceFlag()}, jsonFlags(true)...),
		Action:    r.Play,
	}
}

func playTrackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play-track",
		Usage:     "Play one track by spotify:track: URI",
		ArgsUsage: "<uri>",
		Flags:     []cli.Flag{deviceFlag()},
		Action:    r.PlayTrack,
	}
}

func recommendCommand(r *Runner) *cli.Command {
	flags := append(reportFlags(50), &cli.IntFlag{
		Name:  "top-n",
		Usage: "Number of recommendations (defaults to recommend.top_n)",
	})
	return &cli.Command{
		Name:    "recommend",
		Aliases: []string{"rec"},
		Usage:   "Recommend tracks similar to your top tracks",
		Flags:   flags,
		Action:  r.Recommend,
	}
}

func topTracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "top-tracks",
		Usage:  "Show your top tracks",
		Flags:  reportFlags(50),
		Action: r.TopTracks,
	}
}

func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "devices",
		Usage:  "List Spotify Connect devices",
		Flags:  jsonFlags(true),
		Action: r.Devices,
	}
}

func meCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "me",
		Usage:  "Show the authenticated Spotify profile",
		Flags:  jsonFlags(true),
		Action: r.Me,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recently played tracks",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of tracks",
				Value: 20,
			},
		}, jsonFlags(true)...),
		Action: r.History,
	}
}

func requestsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "requests",
		Usage: "Show recent mood requests",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of requests",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  "latest",
				Usage: "Show only the latest request",
			},
		}, jsonFlags(true)...),
		Action: r.Requests,
	}
}

// playlistsCommand manages connected playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Manage connected playlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List connected playlists",
				Flags:  jsonFlags(true),
				Action: r.PlaylistsList,
			},
			{
				Name:      "connect",
				Usage:     "Connect a playlist so asking for its name plays it",
				ArgsUsage: "<name> <spotify:playlist:uri>",
				Action:    r.PlaylistsConnect,
			},
			{
				Name:      "disconnect",
				Usage:     "Disconnect a playlist by name",
				ArgsUsage: "<name>",
				Action:    r.PlaylistsDisconnect,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive prompt",
		Flags: []cli.Flag{
			deviceFlag(),
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/moodplay-tui.log",
			},
		},
		Action: r.TUI,
	}
}
