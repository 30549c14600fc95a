package chords

import "strings"

// Document is the rendered form of a song's lyrics, one [Line] per "\n"-separated input line.
type Document struct {
	Lines []Line `json:"lines"`
}

// Format renders raw lyrics for an HTML surface.
func Format(lyrics string) Document {
	return FormatFor(lyrics, HTMLEscaper)
}

// FormatFor renders raw lyrics using esc for text and chord labels.
//
// Every "\n" boundary produces a line, so leading, trailing and doubled newlines yield blank lines
// and the empty string yields a single blank line. A trailing "\r" is dropped from each line.
func FormatFor(lyrics string, esc Escaper) Document {
	raw := strings.Split(lyrics, "\n")
	lines := make([]Line, len(raw))
	for i, line := range raw {
		// CRLF input: the "\r" is a line terminator here, never lyric text.
		line = strings.TrimSuffix(line, "\r")
		lines[i] = RenderLine(Tokenize(line), esc)
	}
	return Document{Lines: lines}
}

// Len returns the number of lines.
func (d Document) Len() int { return len(d.Lines) }

// HasChords reports whether any line carries a chord marker.
func (d Document) HasChords() bool {
	for _, l := range d.Lines {
		for _, seg := range l.Segments {
			if seg.Kind == ChordMarker {
				return true
			}
		}
	}
	return false
}

// Chords returns the distinct chord labels in order of first appearance.
func (d Document) Chords() []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, l := range d.Lines {
		for _, c := range l.Chords() {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			labels = append(labels, c)
		}
	}
	return labels
}
