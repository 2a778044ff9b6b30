package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodplay/internal/server"
	"github.com/desertthunder/moodplay/internal/services"
	"github.com/desertthunder/moodplay/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const authTimeout = 2 * time.Minute

// AuthLogin performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server for the callback, opens the browser for user authorization, and saves the tokens to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.music == nil {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in %s",
			shared.ErrMissingCredentials, r.configPath)
	}

	token, err := r.doOAuth(ctx, r.music, "authorization")
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	if r.configPath != "" {
		r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	}
	r.writePlain("You can now use: moodplay play \"something upbeat\"\n")
	return nil
}

// AuthStatus reports whether a token is available and still accepted by Spotify.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.music == nil {
		return r.writePlain("✗ Spotify credentials not configured\n")
	}
	if !r.music.Authenticated() {
		return r.writePlain("✗ Not authenticated. Run: moodplay auth login\n")
	}

	profile, err := r.music.CurrentUser(ctx)
	if err != nil {
		r.writePlain("✗ Saved token was rejected: %v\n", err)
		return nil
	}
	return r.writePlain("✓ Authenticated as %s (%s)\n", profile.DisplayName, profile.ID)
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverCtx, stop := context.WithCancel(ctx)
	srv := server.New(r.config.Server.Address(), router, r.logger)

	var serveErr error
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		r.logger.Infof("starting OAuth server for %s at %v", prefix, r.config.Server.Address())
		serveErr = srv.Run(serverCtx)
	}()
	defer func() {
		stop()
		<-serverDone
	}()

	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
	case <-serverDone:
		return nil, fmt.Errorf("server error: %w", serveErr)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// withReauth runs fn and, when Spotify reports an expired token, reauthorizes and runs it once more.
func (r *Runner) withReauth(ctx context.Context, fn func() error) error {
	err := fn()
	if !errors.Is(err, shared.ErrTokenExpired) || r.music == nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return fmt.Errorf("%w (run: moodplay auth login)", err)
		}
		return err
	}

	r.writePlainln("⚠ Authentication token expired. Starting reauthorization...\n")

	token, reauthErr := r.doOAuth(ctx, r.music, "reauthorization")
	if reauthErr != nil {
		return fmt.Errorf("reauthorization failed: %w", reauthErr)
	}
	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Successfully reauthenticated. Retrying operation...\n")
	return fn()
}
