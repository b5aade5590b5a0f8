package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/replay/internal/server"
	"github.com/desertthunder/replay/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization,
// and waits for the callback to be validated and exchanged.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.service == nil {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	authURL, err := r.session.Begin()
	if err != nil {
		return fmt.Errorf("failed to start login: %w", err)
	}

	handler := server.NewCallbackHandler(r.session)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(handler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var flowErr error

	select {
	case flowErr = <-handler.Done():
		// Callback delivered and consumed
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if flowErr != nil {
		return fmt.Errorf("authorization failed: %w", flowErr)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("You can now use: replay history sync\n")

	return nil
}

// AuthStatus reports the current authorization state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}

	if r.service == nil {
		r.writePlain("State: not configured\n")
		r.writePlain("Set Spotify credentials in config.toml, then run 'replay auth login'\n")
		return nil
	}

	if !r.session.Authenticated() {
		if _, err := r.session.Restore(); err != nil {
			return fmt.Errorf("failed to restore session: %w", err)
		}
	}

	if !r.session.Authenticated() {
		pending, err := r.session.ResumePending()
		if err != nil {
			return fmt.Errorf("failed to check pending login: %w", err)
		}
		if pending {
			r.writePlain("State: %s\n", r.session.State())
			r.writePlain("Authorization: a login was started but never completed\n")
			r.writePlain("Run 'replay auth login' to start over\n")
			return nil
		}
	}

	r.writePlain("State: %s\n", r.session.State())
	if r.session.Authenticated() {
		r.writePlain("Authorization: ✓ Authorized\n")
	} else {
		r.writePlain("Authorization: ✗ Not authorized\n")
		r.writePlain("Run 'replay auth login' to authorize\n")
	}

	return nil
}

// AuthLogout discards the stored access token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.session.Invalidate(); err != nil {
		return fmt.Errorf("failed to clear stored token: %w", err)
	}

	r.writePlain("✓ Logged out\n")
	return nil
}
