// package formatter renders songs for display and export (HTML, chords-over-lyrics text, Markdown, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/songbook/internal/chords"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or a common alias (txt, md).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, markdown, html or json)", shared.ErrInvalidFlag, s)
	}
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// SongView is the JSON form of a rendered song: the record plus its document and chord list.
type SongView struct {
	models.SongRecord
	Document chords.Document `json:"document"`
	Chords   []string        `json:"chords"`
}

// NewSongView renders song's lyrics without escaping; JSON consumers escape for their own surface.
func NewSongView(song *models.Song) SongView {
	doc := chords.FormatFor(song.Lyrics(), chords.RawEscaper)
	labels := doc.Chords()
	if labels == nil {
		labels = []string{}
	}
	return SongView{SongRecord: song.Record(), Document: doc, Chords: labels}
}

// RenderSong renders a single song in the given format.
//
// unknownArtist labels songs without an artist.
func RenderSong(song *models.Song, format Format, unknownArtist string) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(SongText(song, unknownArtist)), nil
	case FormatMarkdown:
		return []byte(SongMarkdown(song, unknownArtist)), nil
	case FormatHTML:
		return []byte(SongHTMLPage(song, unknownArtist)), nil
	case FormatJSON:
		return shared.MarshalJSON(NewSongView(song), true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToJSON encodes songs as a songbook document, the import/export file format.
func ExportToJSON(songs []*models.Song, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(models.NewSongbook(songs), pretty)
}

// ExportFilename returns the dated name of a songbook export: songbook-export-YYYY-MM-DD.json (UTC date).
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("songbook-export-%s.json", now.UTC().Format(time.DateOnly))
}

// ExportToCSV converts songs to a CSV listing with columns: ID, Title, Artist, Chords, Lines, Created, Updated
func ExportToCSV(songs []*models.Song, unknownArtist string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Chords", "Lines", "Created", "Updated"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		doc := chords.FormatFor(song.Lyrics(), chords.RawEscaper)
		record := []string{
			song.ID(),
			song.Title(),
			shared.ArtistOrDefault(song.Artist(), unknownArtist),
			strings.Join(doc.Chords(), " "),
			strconv.Itoa(doc.Len()),
			song.CreatedAt().UTC().Format(time.RFC3339),
			song.UpdatedAt().UTC().Format(time.RFC3339),
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

// WriteSongFile renders song in format and writes it into dir, returning the file path.
//
// The file name comes from [Filename].
func WriteSongFile(song *models.Song, dir string, format Format, unknownArtist string) (string, error) {
	data, err := RenderSong(song, format, unknownArtist)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, Filename(song, format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
