package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/replay/internal/history"
)

var _ list.Item = playItem{}

// playItem wraps [history.PlayRecord] to implement [list.Item].
type playItem struct {
	record history.PlayRecord
}

func (i playItem) FilterValue() string { return i.record.Track.Name }
func (i playItem) Title() string       { return i.record.Track.Name }
func (i playItem) Description() string {
	desc := artistLine(i.record.Track)
	if i.record.Track.Album.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.record.Track.Album.Name)
	}
	return fmt.Sprintf("%s • %s", desc, i.record.PlayedAt.Local().Format("Jan 2 15:04"))
}

// artistLine joins the track's artist names for display.
func artistLine(track history.Track) string {
	names := make([]string, len(track.Artists))
	for i, artist := range track.Artists {
		names[i] = artist.Name
	}
	return strings.Join(names, ", ")
}

func playItems(set history.Set) []list.Item {
	items := make([]list.Item, len(set))
	for i, record := range set {
		items[i] = playItem{record: record}
	}
	return items
}
