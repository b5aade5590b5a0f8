package ui

import (
	"github.com/desertthunder/replay/internal/tasks"
)

// syncCompleteMsg reports the outcome of a sync cycle started by Init
// or the refresh key.
type syncCompleteMsg struct {
	result *tasks.SyncResult
	err    error
}

// progressUpdateMsg carries one engine progress event into Update.
type progressUpdateMsg tasks.ProgressUpdate
