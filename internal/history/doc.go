// Package history defines the canonical listening-history model and the
// pure transforms applied to it.
//
// Raw pages fetched from a streaming service arrive as an ordered slice
// of [PlayRecord] that may contain duplicates across page boundaries.
// [Normalize] collapses them into a [Set]: unique by played-at
// timestamp (the API's own uniqueness key for a play event) and sorted
// most-recent first.
//
// [Window] derives filtered views of a Set relative to "now", with day
// boundaries aligned to local midnight. Views are recomputed on every
// call; window boundaries are time-dependent and must not go stale
// across a session left open overnight.
package history
