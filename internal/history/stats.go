package history

import (
	"math"
	"time"
)

// Stats summarizes a canonical history set.
type Stats struct {
	TotalPlays    int `json:"total_plays"`
	UniqueArtists int `json:"unique_artists"`
	UniqueAlbums  int `json:"unique_albums"`
	DaysOfHistory int `json:"days_of_history"`
}

// Summarize computes aggregate stats over the set, with the history
// span measured from the oldest record to now (rounded up to whole days).
func Summarize(s Set, now time.Time) Stats {
	artists := make(map[string]bool)
	albums := make(map[string]bool)

	for _, rec := range s {
		for _, artist := range rec.Track.Artists {
			artists[artist.Name] = true
		}
		albums[rec.Track.Album.Name] = true
	}

	stats := Stats{
		TotalPlays:    len(s),
		UniqueArtists: len(artists),
		UniqueAlbums:  len(albums),
	}

	if oldest, ok := s.Oldest(); ok {
		span := now.Sub(oldest.PlayedAt)
		stats.DaysOfHistory = int(math.Ceil(span.Hours() / 24))
	}

	return stats
}
