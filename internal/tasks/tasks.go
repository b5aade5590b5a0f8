package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/replay/internal/history"
	"github.com/desertthunder/replay/internal/services"
	"github.com/desertthunder/replay/internal/shared"
)

// SyncResult contains all data from one completed sync cycle.
type SyncResult struct {
	Records history.Set // Normalized listening history, newest first
	Fetched int         // Raw record count before dedupe
	Dropped int         // Records removed as duplicates
}

// Engine defines the history sync operation.
type Engine interface {
	// Sync runs one fetch cycle against the streaming service and
	// returns the normalized history set.
	Sync(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error)
}

// Invalidator discards a no-longer-accepted session token. Implemented
// by session.Session.
type Invalidator interface {
	Invalidate() error
}

// HistoryEngine implements [Engine] over a streaming service client.
//
// Each cycle replaces the previous result wholesale; partial fetches
// are never surfaced. A rejected token invalidates the session so the
// caller can prompt for a fresh login.
type HistoryEngine struct {
	svc     services.Service
	session Invalidator
	logger  *log.Logger
}

// NewHistoryEngine creates a new HistoryEngine with the provided service and session.
func NewHistoryEngine(svc services.Service, session Invalidator, logger *log.Logger) *HistoryEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &HistoryEngine{
		svc:     svc,
		session: session,
		logger:  logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *HistoryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Sync performs one full fetch-and-normalize cycle.
//
// On [shared.ErrTokenExpired] the session is invalidated before the
// error is returned; no records from the failed cycle leak out.
func (e *HistoryEngine) Sync(ctx context.Context, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: streaming service not initialized", shared.ErrServiceUnavailable)
	}

	cycle := shared.GenerateID()
	e.logger.Debug("starting sync cycle", "cycle", cycle, "service", e.svc.Name())

	e.sendProgress(progress, fetchHistoryUpdate(e.svc.Name()))

	records, err := e.svc.RecentlyPlayed(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			e.logger.Warn("token rejected, invalidating session", "cycle", cycle)
			if invErr := e.invalidate(); invErr != nil {
				e.logger.Error("failed to invalidate session", "error", invErr)
			}
		}
		return nil, fmt.Errorf("sync cycle failed: %w", err)
	}

	e.sendProgress(progress, normalizeUpdate(len(records)))

	set := history.Normalize(records)

	result := &SyncResult{
		Records: set,
		Fetched: len(records),
		Dropped: len(records) - len(set),
	}

	e.logger.Debug("sync cycle complete", "cycle", cycle,
		"fetched", result.Fetched, "kept", len(set), "dropped", result.Dropped)
	e.sendProgress(progress, completeUpdate(len(set)))

	return result, nil
}

func (e *HistoryEngine) invalidate() error {
	if e.session == nil {
		return nil
	}
	return e.session.Invalidate()
}
