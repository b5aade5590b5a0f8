// package formatter provides functions to export listening history to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/replay/internal/history"
)

// ExportToCSV converts a history set to CSV format with columns: Played At, Title, Artists, Album, Track ID
func ExportToCSV(set history.Set) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Played At", "Title", "Artists", "Album", "Track ID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range set {
		record := []string{
			rec.PlayedAt.Format(time.RFC3339),
			rec.Track.Name,
			joinArtists(rec.Track),
			rec.Track.Album.Name,
			rec.Track.ID,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a history set to Markdown with a stats summary
func ExportToMarkdown(set history.Set, title string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	stats := history.Summarize(set, now)
	buf.WriteString(fmt.Sprintf("**Total plays**: %d\n", stats.TotalPlays))
	buf.WriteString(fmt.Sprintf("**Unique artists**: %d\n", stats.UniqueArtists))
	buf.WriteString(fmt.Sprintf("**Unique albums**: %d\n", stats.UniqueAlbums))
	buf.WriteString(fmt.Sprintf("**Days of history**: %d\n\n", stats.DaysOfHistory))

	buf.WriteString("## Plays\n\n")
	for i, rec := range set {
		albumPart := ""
		if rec.Track.Album.Name != "" {
			albumPart = fmt.Sprintf(" (%s)", rec.Track.Album.Name)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n",
			i+1, joinArtists(rec.Track), rec.Track.Name, albumPart,
			rec.PlayedAt.Local().Format("Jan 2 15:04")))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a history set to plain text format
func ExportToText(set history.Set) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Plays: %d\n\n", len(set)))

	for i, rec := range set {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, joinArtists(rec.Track), rec.Track.Name))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a history set to indented JSON
func ExportToJSON(set history.Set) ([]byte, error) {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}
	return data, nil
}

// WriteExport renders the set in the named format (csv, md, text, json)
// and writes it to path.
func WriteExport(set history.Set, path, format string) error {
	var data []byte
	var err error

	switch strings.ToLower(format) {
	case "csv":
		data, err = ExportToCSV(set)
	case "md", "markdown":
		data, err = ExportToMarkdown(set, "Listening History", time.Now())
	case "text", "txt":
		data, err = ExportToText(set)
	case "json", "":
		data, err = ExportToJSON(set)
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}

	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	return nil
}

func joinArtists(track history.Track) string {
	names := make([]string, len(track.Artists))
	for i, artist := range track.Artists {
		names[i] = artist.Name
	}
	return strings.Join(names, ", ")
}
