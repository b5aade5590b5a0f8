// Package repositories provides the sqlite persistence layer.
//
// The application persists exactly two values across restarts: the
// bearer access token and the pending CSRF state of an in-flight login.
// Both live in the single-row auth_slot table seeded by the migration
// runner; [AuthRepository] implements the session's Store contract over
// that row. Listening history is never persisted, each sync cycle
// replaces the in-memory set wholesale.
package repositories
