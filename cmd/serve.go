package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/desertthunder/moodplay/internal/server"
	"github.com/desertthunder/moodplay/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	a, err := r.getAssistant(ctx)
	if err != nil {
		return err
	}

	addr := r.config.Server.Address()
	if cmd.IsSet("host") || cmd.IsSet("port") {
		host, port := r.config.Server.Host, r.config.Server.Port
		if cmd.IsSet("host") {
			host = cmd.String("host")
		}
		if cmd.IsSet("port") {
			port = cmd.Int("port")
		}
		if port <= 0 || port > 65535 {
			return fmt.Errorf("%w: invalid port %d", shared.ErrInvalidArgument, port)
		}
		addr = net.JoinHostPort(host, strconv.Itoa(port))
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	api := server.NewAPI(a, r.music, logger)

	r.writePlain("Listening on http://%s (Ctrl+C to stop)\n", addr)
	return server.New(addr, server.NewHandler(api, logger), logger).Run(ctx)
}
