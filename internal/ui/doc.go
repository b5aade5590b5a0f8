// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a history-browsing workflow:
//  1. [SyncView] : Run a sync cycle with live progress
//  2. [HistoryListView] : Browse plays, newest first, filtered by time window
//  3. [StatsView] : Aggregate listening stats for the full set
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the HistoryEngine, providing non-blocking status reporting during syncs.
//
// Window filters are bound to a/t/y/w/m and re-evaluated against the
// wall clock on every switch; r refreshes, s toggles stats. Keyboard
// navigation uses vim-style bindings (j/k, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
