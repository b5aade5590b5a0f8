package history

import (
	"sort"
	"time"
)

// Artist identifies a performing artist on a track.
type Artist struct {
	Name string `json:"name"`
}

// Album identifies the album a track belongs to, with cover art URLs in
// the order the service returned them (largest first for Spotify).
type Album struct {
	Name      string   `json:"name"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// Track is a service-agnostic reference to a playable track.
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
	Album   Album    `json:"album"`
}

// PlayRecord is a single play event: a track and the moment it was played.
type PlayRecord struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"played_at"`
}

// Set is the canonical listening history: unique by PlayedAt and sorted
// descending (most recent first).
type Set []PlayRecord

// Normalize collapses a raw union of fetched pages into a [Set].
//
// Deduplication is keyed on PlayedAt with the first occurrence in input
// order winning, then the survivors are sorted most-recent first.
// Normalize is a pure function and idempotent: applying it to its own
// output yields an equal Set.
func Normalize(raw []PlayRecord) Set {
	seen := make(map[int64]bool, len(raw))
	set := make(Set, 0, len(raw))

	for _, rec := range raw {
		key := rec.PlayedAt.UnixNano()
		if seen[key] {
			continue
		}
		seen[key] = true
		set = append(set, rec)
	}

	sort.SliceStable(set, func(i, j int) bool {
		return set[i].PlayedAt.After(set[j].PlayedAt)
	})

	return set
}

// Oldest returns the least recent record in the set and whether one exists.
func (s Set) Oldest() (PlayRecord, bool) {
	if len(s) == 0 {
		return PlayRecord{}, false
	}
	return s[len(s)-1], true
}
