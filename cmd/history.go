package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/replay/internal/formatter"
	"github.com/desertthunder/replay/internal/history"
	"github.com/desertthunder/replay/internal/shared"
	"github.com/desertthunder/replay/internal/tasks"
	"github.com/urfave/cli/v3"
)

// HistorySync runs one fetch-and-normalize cycle and reports the result.
func (r *Runner) HistorySync(ctx context.Context, cmd *cli.Command) error {
	result, err := r.runSync(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ Synced %d plays", len(result.Records))
	if result.Dropped > 0 {
		r.writePlain(" (%d duplicates dropped)", result.Dropped)
	}
	r.writePlain("\n")

	if oldest, ok := result.Records.Oldest(); ok {
		r.writePlain("  Oldest play: %s\n", oldest.PlayedAt.Local().Format("Jan 2 15:04"))
	}

	return nil
}

// HistoryList syncs and prints recent plays filtered by time window.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	window := history.ParseWindow(cmd.String("window"))
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	saveFile := cmd.String("save")
	saveFormat := cmd.String("format")

	result, err := r.runSync(ctx)
	if err != nil {
		return err
	}

	view := window.Apply(result.Records, time.Now())

	if saveFile != "" {
		if err := formatter.WriteExport(view, saveFile, saveFormat); err != nil {
			return fmt.Errorf("failed to save history: %w", err)
		}
		r.logger.Info("history saved", "file", saveFile, "format", saveFormat, "plays", len(view))
	}

	if useJSON {
		return r.writeJSON(view, pretty)
	}

	r.writePlainHeader(fmt.Sprintf("%s: %d plays", window.Label(), len(view)))

	for i, rec := range view {
		r.writePlain("%d. %s\n", i+1, rec.Track.Name)
		r.writePlain("   Artists: %s\n", artistNames(rec.Track))
		if rec.Track.Album.Name != "" {
			r.writePlain("   Album: %s\n", rec.Track.Album.Name)
		}
		r.writePlain("   Played: %s\n", rec.PlayedAt.Local().Format("Jan 2 15:04"))
	}

	return nil
}

// HistoryStats syncs and prints aggregate listening stats.
func (r *Runner) HistoryStats(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	result, err := r.runSync(ctx)
	if err != nil {
		return err
	}

	stats := history.Summarize(result.Records, time.Now())

	if useJSON {
		return r.writeJSON(stats, true)
	}

	r.writePlainHeader("Listening Stats")
	r.writePlain("Total plays: %d\n", stats.TotalPlays)
	r.writePlain("Unique artists: %d\n", stats.UniqueArtists)
	r.writePlain("Unique albums: %d\n", stats.UniqueAlbums)
	r.writePlain("Days of history: %d\n", stats.DaysOfHistory)

	return nil
}

// runSync restores the session if needed and executes one engine cycle,
// streaming progress messages to the output writer.
func (r *Runner) runSync(ctx context.Context) (*tasks.SyncResult, error) {
	if r.service == nil {
		return nil, fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	if !r.session.Authenticated() {
		ok, err := r.session.Restore()
		if err != nil {
			return nil, fmt.Errorf("failed to restore session: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: run 'replay auth login' first", shared.ErrNotAuthenticated)
		}
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	drained := make(chan struct{})
	go func() {
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
		close(drained)
	}()

	result, err := r.engine.Sync(ctx, progress)
	close(progress)
	<-drained

	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			r.writePlainln("⚠ Access token no longer accepted. Run 'replay auth login' to reauthorize.")
		}
		return nil, err
	}

	return result, nil
}

func artistNames(track history.Track) string {
	names := ""
	for i, artist := range track.Artists {
		if i > 0 {
			names += ", "
		}
		names += artist.Name
	}
	return names
}
