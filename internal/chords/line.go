package chords

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

const (
	// BlankPlaceholder fills a blank line so it still occupies a row (a non-breaking space).
	BlankPlaceholder = "\u00a0"
	// AnchorPlaceholder is the zero-width content of a line that carries chords but no text.
	AnchorPlaceholder = "\u200b"
)

// Escaper makes user text safe for a display surface.
type Escaper func(string) string

// HTMLEscaper escapes <, >, &, ' and " so text is inert inside HTML.
func HTMLEscaper(s string) string { return html.EscapeString(s) }

// TerminalEscaper removes ANSI escape sequences and other control characters, keeping tabs.
func TerminalEscaper(s string) string {
	return strings.Map(func(r rune) rune {
		if r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, ansi.Strip(s))
}

// RawEscaper returns text unchanged, for consumers that escape on their own.
func RawEscaper(s string) string { return s }

// SegmentKind tags a [Segment].
type SegmentKind int

const (
	TextRun SegmentKind = iota
	ChordMarker
)

func (k SegmentKind) String() string {
	switch k {
	case TextRun:
		return "text"
	case ChordMarker:
		return "chord"
	default:
		return ""
	}
}

// MarshalText encodes the kind as "text" or "chord".
func (k SegmentKind) MarshalText() ([]byte, error) {
	s := k.String()
	if s == "" {
		return nil, fmt.Errorf("unknown segment kind %d", int(k))
	}
	return []byte(s), nil
}

// UnmarshalText decodes "text" or "chord".
func (k *SegmentKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "text":
		*k = TextRun
	case "chord":
		*k = ChordMarker
	default:
		return fmt.Errorf("unknown segment kind %q", b)
	}
	return nil
}

// Segment is one element of a rendered line.
//
// A ChordMarker is zero-width: it anchors its label above the first character of the TextRun after it.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// Line is one rendered row of lyrics. A blank line has no segments.
type Line struct {
	Blank    bool      `json:"blank"`
	Segments []Segment `json:"segments,omitempty"`
}

// Text returns the visible text of the line with chord markers removed.
//
// Blank lines yield [BlankPlaceholder]; lines holding only chords yield [AnchorPlaceholder].
func (l Line) Text() string {
	if l.Blank {
		return BlankPlaceholder
	}
	var b strings.Builder
	for _, seg := range l.Segments {
		if seg.Kind == TextRun {
			b.WriteString(seg.Text)
		}
	}
	if b.Len() == 0 {
		return AnchorPlaceholder
	}
	return b.String()
}

// Chords returns the chord labels of the line in order.
func (l Line) Chords() []string {
	var labels []string
	for _, seg := range l.Segments {
		if seg.Kind == ChordMarker {
			labels = append(labels, seg.Text)
		}
	}
	return labels
}

// RenderLine converts the spans of one line into a [Line].
//
// A line without chords whose text is only whitespace becomes blank. Text and labels pass through esc;
// a nil esc means [HTMLEscaper].
func RenderLine(spans []Span, esc Escaper) Line {
	if esc == nil {
		esc = HTMLEscaper
	}

	if isBlank(spans) {
		return Line{Blank: true}
	}

	segments := make([]Segment, 0, len(spans))
	for _, sp := range spans {
		switch sp.Kind {
		case ChordSpan:
			segments = append(segments, Segment{Kind: ChordMarker, Text: esc(sp.Text)})
		default:
			if sp.Text == "" {
				continue
			}
			segments = append(segments, Segment{Kind: TextRun, Text: esc(sp.Text)})
		}
	}
	return Line{Segments: segments}
}

func isBlank(spans []Span) bool {
	for _, sp := range spans {
		if sp.Kind == ChordSpan || strings.TrimSpace(sp.Text) != "" {
			return false
		}
	}
	return true
}
