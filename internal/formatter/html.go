package formatter

import (
	"fmt"
	"html"
	"strings"

	"github.com/desertthunder/songbook/internal/chords"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// LyricsHTML renders an HTML-escaped document as a sequence of lyrics-line divs.
//
// Chord markers become zero-width spans carrying the label in data-chord, so a stylesheet
// can float the label above the text that follows. Blank lines hold &nbsp;.
func LyricsHTML(doc chords.Document) string {
	var b strings.Builder
	for _, line := range doc.Lines {
		b.WriteString(`<div class="lyrics-line">`)
		if line.Blank {
			b.WriteString("&nbsp;")
		}
		for _, seg := range line.Segments {
			switch seg.Kind {
			case chords.ChordMarker:
				fmt.Fprintf(&b, `<span class="chord" data-chord="%s">%s</span>`, seg.Text, chords.AnchorPlaceholder)
			default:
				b.WriteString(seg.Text)
			}
		}
		b.WriteString("</div>")
	}
	return b.String()
}

// SongHTML renders a song header and its lyrics as an HTML fragment.
func SongHTML(song *models.Song, unknownArtist string) string {
	var b strings.Builder
	b.WriteString(`<div class="song-header">`)
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(song.Title()))
	fmt.Fprintf(&b, `<div class="artist">%s</div>`, html.EscapeString(shared.ArtistOrDefault(song.Artist(), unknownArtist)))
	b.WriteString("</div>")
	fmt.Fprintf(&b, `<div class="song-lyrics">%s</div>`, LyricsHTML(chords.Format(song.Lyrics())))
	return b.String()
}

// LyricsCSS positions chord labels above the lyric text.
const LyricsCSS = `.lyrics-line{position:relative;white-space:pre-wrap;line-height:2.6em;font-family:monospace}
.chord{position:relative;display:inline-block;width:0}
.chord::before{content:attr(data-chord);position:absolute;bottom:1.1em;left:0;font-weight:bold;color:#b03a2e;white-space:nowrap}
.song-header h2{margin-bottom:0}.song-header .artist{color:#666;margin-bottom:1em}`

// SongHTMLPage renders a standalone HTML document for a song, used for file export.
func SongHTMLPage(song *models.Song, unknownArtist string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(song.Title()))
	fmt.Fprintf(&b, "<style>%s</style>\n</head>\n<body>\n", LyricsCSS)
	b.WriteString(SongHTML(song, unknownArtist))
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
