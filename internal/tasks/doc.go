// Package tasks orchestrates history sync cycles with real-time progress reporting.
//
// # Core Operation
//
// The [Engine] interface defines a single operation:
//
//	[Engine.Sync] : One fetch-and-normalize cycle
//	  - Fetches recently played records from the streaming service
//	  - Deduplicates by play timestamp and sorts newest first
//	  - Replaces the previous cycle's result wholesale
//
// A cycle either completes or fails as a unit; no partial history is
// surfaced. A token rejection invalidates the session through the
// [Invalidator] so the caller can start a fresh login.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, and messages for UI rendering.
// Updates use select with default to prevent blocking.
package tasks
