package main

import (
	"context"
	"os"

	"github.com/desertthunder/replay/internal/repositories"
	"github.com/desertthunder/replay/internal/services"
	"github.com/desertthunder/replay/internal/session"
	"github.com/desertthunder/replay/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService services.OAuthService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			spotifyService = svc
		} else {
			logger.Warn("failed to create Spotify service", "error", err)
		}
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}

	store := repositories.NewAuthRepository(db)
	authSession := session.New(spotifyService, store, logger)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Service: spotifyService,
		Session: authSession,
		Store:   store,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "replay",
		Usage:    "Browse your Spotify listening history",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
