package formatter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/desertthunder/songbook/internal/chords"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// ChordsOverLyrics lays out a document as plain text with each chord printed on the row
// above the column where its text run starts.
//
// Columns are measured in terminal cells, so wide characters keep chords aligned.
// When two chords would touch, the lyric row is padded with spaces to make room.
// Blank lines become empty rows. The document should be built with [chords.TerminalEscaper]
// or [chords.RawEscaper].
func ChordsOverLyrics(doc chords.Document) string {
	rows := make([]string, 0, doc.Len()*2)
	for _, line := range doc.Lines {
		if line.Blank {
			rows = append(rows, "")
			continue
		}

		var chordRow, lyricRow strings.Builder
		chordWidth, lyricWidth := 0, 0
		hasChords := false

		for _, seg := range line.Segments {
			switch seg.Kind {
			case chords.ChordMarker:
				if hasChords && chordWidth+1 > lyricWidth {
					pad := chordWidth + 1 - lyricWidth
					lyricRow.WriteString(strings.Repeat(" ", pad))
					lyricWidth += pad
				}
				if lyricWidth > chordWidth {
					chordRow.WriteString(strings.Repeat(" ", lyricWidth-chordWidth))
					chordWidth = lyricWidth
				}
				chordRow.WriteString(seg.Text)
				chordWidth += runewidth.StringWidth(seg.Text)
				hasChords = true
			default:
				lyricRow.WriteString(seg.Text)
				lyricWidth += runewidth.StringWidth(seg.Text)
			}
		}

		if hasChords {
			rows = append(rows, strings.TrimRight(chordRow.String(), " "))
		}
		if lyric := strings.TrimRight(lyricRow.String(), " "); lyric != "" || !hasChords {
			rows = append(rows, lyric)
		}
	}
	return strings.Join(rows, "\n")
}

// SongText renders a song as a title header followed by chords-over-lyrics text.
func SongText(song *models.Song, unknownArtist string) string {
	var b strings.Builder
	title := chords.TerminalEscaper(song.Title())
	artist := chords.TerminalEscaper(shared.ArtistOrDefault(song.Artist(), unknownArtist))

	fmt.Fprintf(&b, "%s\n%s\n", title, artist)
	b.WriteString(strings.Repeat("=", max(runewidth.StringWidth(title), runewidth.StringWidth(artist))))
	b.WriteString("\n\n")
	b.WriteString(ChordsOverLyrics(chords.FormatFor(song.Lyrics(), chords.TerminalEscaper)))
	b.WriteString("\n")
	return b.String()
}

// SongMarkdown renders a song as Markdown. The lyrics sit in a fenced block so the
// chords-over-lyrics alignment survives.
func SongMarkdown(song *models.Song, unknownArtist string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", song.Title())
	fmt.Fprintf(&b, "_%s_\n\n", shared.ArtistOrDefault(song.Artist(), unknownArtist))

	doc := chords.FormatFor(song.Lyrics(), chords.RawEscaper)
	if labels := doc.Chords(); len(labels) > 0 {
		fmt.Fprintf(&b, "**Chords**: %s\n\n", strings.Join(labels, ", "))
	}

	b.WriteString("```text\n")
	b.WriteString(strings.ReplaceAll(ChordsOverLyrics(doc), "```", "'''"))
	b.WriteString("\n```\n")
	return b.String()
}

// Filename returns a file name for song: an ASCII slug of the title, the first
// eight characters of the ID, and the format's extension.
func Filename(song *models.Song, format Format) string {
	slug := Slugify(song.Title())
	if slug == "" {
		slug = "song"
	}
	id := song.ID()
	if len(id) > 8 {
		id = id[:8]
	}
	if id != "" {
		slug += "-" + id
	}
	return slug + format.Ext()
}

// Slugify lowercases s, strips accents and joins the remaining letters and digits with hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
