package chords

import "regexp"

// SpanKind distinguishes literal text from chord annotations.
type SpanKind int

const (
	LiteralSpan SpanKind = iota
	ChordSpan
)

func (k SpanKind) String() string {
	switch k {
	case LiteralSpan:
		return "literal"
	case ChordSpan:
		return "chord"
	default:
		return ""
	}
}

// Span is a contiguous region of a line.
//
// For a [ChordSpan], Text is the bracket interior and [Start, End) includes both brackets.
type Span struct {
	Kind  SpanKind
	Text  string
	Start int // byte offset, inclusive
	End   int // byte offset, exclusive
}

// chordPattern stops the interior at the first closing bracket, so "[C[x]]" yields the label "C[x".
var chordPattern = regexp.MustCompile(`\[([^\]]*)\]`)

// Tokenize splits a single line into literal and chord spans.
//
// The spans cover the input with no gaps or overlaps. An opening bracket without a closing bracket
// later on the line is literal text. Labels are kept verbatim, including empty ones.
func Tokenize(line string) []Span {
	matches := chordPattern.FindAllStringSubmatchIndex(line, -1)
	spans := make([]Span, 0, 2*len(matches)+1)

	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > last {
			spans = append(spans, Span{Kind: LiteralSpan, Text: line[last:start], Start: last, End: start})
		}
		spans = append(spans, Span{Kind: ChordSpan, Text: line[m[2]:m[3]], Start: start, End: end})
		last = end
	}

	if last < len(line) {
		spans = append(spans, Span{Kind: LiteralSpan, Text: line[last:], Start: last, End: len(line)})
	}

	return spans
}
