package chords

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func chord(s string) Segment { return Segment{Kind: ChordMarker, Text: s} }
func text(s string) Segment  { return Segment{Kind: TextRun, Text: s} }

func TestTokenize(t *testing.T) {
	tc := []struct {
		name string
		line string
		want []Span
	}{
		{
			name: "no brackets",
			line: "Just some words",
			want: []Span{{Kind: LiteralSpan, Text: "Just some words", Start: 0, End: 15}},
		},
		{
			name: "empty line",
			line: "",
			want: []Span{},
		},
		{
			name: "single chord",
			line: "[C]",
			want: []Span{{Kind: ChordSpan, Text: "C", Start: 0, End: 3}},
		},
		{
			name: "empty interior",
			line: "[]",
			want: []Span{{Kind: ChordSpan, Text: "", Start: 0, End: 2}},
		},
		{
			name: "adjacent chords",
			line: "[C][G]",
			want: []Span{
				{Kind: ChordSpan, Text: "C", Start: 0, End: 3},
				{Kind: ChordSpan, Text: "G", Start: 3, End: 6},
			},
		},
		{
			name: "unmatched open bracket",
			line: "Test [unclosed",
			want: []Span{{Kind: LiteralSpan, Text: "Test [unclosed", Start: 0, End: 14}},
		},
		{
			name: "unmatched after a chord",
			line: "[G]go [on",
			want: []Span{
				{Kind: ChordSpan, Text: "G", Start: 0, End: 3},
				{Kind: LiteralSpan, Text: "go [on", Start: 3, End: 9},
			},
		},
		{
			name: "nested brackets close at first close bracket",
			line: "[C[x]]",
			want: []Span{
				{Kind: ChordSpan, Text: "C[x", Start: 0, End: 5},
				{Kind: LiteralSpan, Text: "]", Start: 5, End: 6},
			},
		},
		{
			name: "stray close bracket",
			line: "a]b",
			want: []Span{{Kind: LiteralSpan, Text: "a]b", Start: 0, End: 3}},
		},
		{
			name: "label kept verbatim",
			line: "[ am7 ]x",
			want: []Span{
				{Kind: ChordSpan, Text: " am7 ", Start: 0, End: 7},
				{Kind: LiteralSpan, Text: "x", Start: 7, End: 8},
			},
		},
		{
			name: "interleaved",
			line: "one[C]two[G]three",
			want: []Span{
				{Kind: LiteralSpan, Text: "one", Start: 0, End: 3},
				{Kind: ChordSpan, Text: "C", Start: 3, End: 6},
				{Kind: LiteralSpan, Text: "two", Start: 6, End: 9},
				{Kind: ChordSpan, Text: "G", Start: 9, End: 12},
				{Kind: LiteralSpan, Text: "three", Start: 12, End: 17},
			},
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.line)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestTokenizeCoverage(t *testing.T) {
	lines := []string{
		"",
		"plain",
		"[C]Amazing [F]grace, how [C]sweet the sound",
		"[C][G7][Am][F#m][Bb]",
		"x[]y[",
		"]] [[a]] [b",
		"ünïcødé [D]ñ [Em]日本語",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			var rebuilt strings.Builder
			pos := 0
			for _, sp := range Tokenize(line) {
				if sp.Start != pos {
					t.Fatalf("gap or overlap at %d: span starts at %d", pos, sp.Start)
				}
				seg := line[sp.Start:sp.End]
				if sp.Kind == ChordSpan && seg != "["+sp.Text+"]" {
					t.Errorf("chord span %q does not match source %q", sp.Text, seg)
				}
				if sp.Kind == LiteralSpan && seg != sp.Text {
					t.Errorf("literal span %q does not match source %q", sp.Text, seg)
				}
				rebuilt.WriteString(seg)
				pos = sp.End
			}
			if rebuilt.String() != line {
				t.Errorf("spans rebuild %q, want %q", rebuilt.String(), line)
			}
		})
	}
}

func TestRenderLine(t *testing.T) {
	tc := []struct {
		name string
		line string
		want Line
	}{
		{
			name: "empty",
			line: "",
			want: Line{Blank: true},
		},
		{
			name: "whitespace only",
			line: "  \t ",
			want: Line{Blank: true},
		},
		{
			name: "text1[chord1]text2[chord2]text3",
			line: "a[C]b[G]c",
			want: Line{Segments: []Segment{text("a"), chord("C"), text("b"), chord("G"), text("c")}},
		},
		{
			name: "empty text runs omitted",
			line: "[C]b[G]",
			want: Line{Segments: []Segment{chord("C"), text("b"), chord("G")}},
		},
		{
			name: "adjacent chords",
			line: "[C][G]",
			want: Line{Segments: []Segment{chord("C"), chord("G")}},
		},
		{
			name: "empty label",
			line: "[]",
			want: Line{Segments: []Segment{chord("")}},
		},
		{
			name: "chord with surrounding whitespace is not blank",
			line: " [C] ",
			want: Line{Segments: []Segment{text(" "), chord("C"), text(" ")}},
		},
		{
			name: "escapes text and labels",
			line: `<b>"x" & [A<m>]y`,
			want: Line{Segments: []Segment{text("&lt;b&gt;&#34;x&#34; &amp; "), chord("A&lt;m&gt;"), text("y")}},
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderLine(Tokenize(tt.line), nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("RenderLine(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestLineText(t *testing.T) {
	t.Run("blank uses non-breaking placeholder", func(t *testing.T) {
		if got := RenderLine(nil, nil).Text(); got != BlankPlaceholder {
			t.Errorf("expected %q, got %q", BlankPlaceholder, got)
		}
	})

	t.Run("chords only uses zero-width placeholder", func(t *testing.T) {
		got := RenderLine(Tokenize("[C][G]"), nil).Text()
		if got != AnchorPlaceholder {
			t.Errorf("expected %q, got %q", AnchorPlaceholder, got)
		}
	})

	t.Run("markers do not shift text", func(t *testing.T) {
		got := RenderLine(Tokenize("[C]Amazing [F]grace"), nil).Text()
		if got != "Amazing grace" {
			t.Errorf("expected %q, got %q", "Amazing grace", got)
		}
	})
}

func TestEscapers(t *testing.T) {
	t.Run("HTML", func(t *testing.T) {
		got := HTMLEscaper(`<script>alert("x") & 'y'</script>`)
		for _, bad := range []string{"<", ">", `"`, "'"} {
			if strings.Contains(got, bad) {
				t.Errorf("escaped output %q still contains %q", got, bad)
			}
		}
	})

	t.Run("Terminal", func(t *testing.T) {
		got := TerminalEscaper("\x1b[31mred\x1b[0m ok\a\x00")
		if got != "red ok" {
			t.Errorf("expected %q, got %q", "red ok", got)
		}
	})

	t.Run("Raw", func(t *testing.T) {
		if got := RawEscaper("<a>"); got != "<a>" {
			t.Errorf("expected input unchanged, got %q", got)
		}
	})
}

func TestFormat(t *testing.T) {
	t.Run("empty string yields one blank line", func(t *testing.T) {
		doc := Format("")
		want := Document{Lines: []Line{{Blank: true}}}
		if diff := cmp.Diff(want, doc); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("keeps blank lines", func(t *testing.T) {
		doc := Format("Line 1\n\nLine 3")
		if doc.Len() != 3 {
			t.Fatalf("expected 3 lines, got %d", doc.Len())
		}
		if !doc.Lines[1].Blank {
			t.Error("expected second line to be blank")
		}
		if doc.Lines[0].Blank || doc.Lines[2].Blank {
			t.Error("expected first and third lines to have content")
		}
	})

	t.Run("leading and trailing newlines", func(t *testing.T) {
		doc := Format("\nverse\n")
		if doc.Len() != 3 {
			t.Fatalf("expected 3 lines, got %d", doc.Len())
		}
		if !doc.Lines[0].Blank || !doc.Lines[2].Blank {
			t.Error("expected leading and trailing blank lines")
		}
	})

	t.Run("line count matches newline count", func(t *testing.T) {
		for _, in := range []string{"a", "a\nb", "\n\n\n", "[C]\n[G]\n\nx"} {
			want := strings.Count(in, "\n") + 1
			if got := Format(in).Len(); got != want {
				t.Errorf("Format(%q) has %d lines, want %d", in, got, want)
			}
		}
	})

	t.Run("carriage returns dropped", func(t *testing.T) {
		doc := Format("[C]one\r\n\r\ntwo\r")
		want := Document{Lines: []Line{
			{Segments: []Segment{chord("C"), text("one")}},
			{Blank: true},
			{Segments: []Segment{text("two")}},
		}}
		if diff := cmp.Diff(want, doc); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		in := "[C]Amazing [F]grace\n\n[G]<how> & [C]sweet\n[unclosed"
		if diff := cmp.Diff(Format(in), Format(in)); diff != "" {
			t.Errorf("second run differs (-first +second):\n%s", diff)
		}
	})

	t.Run("terminal surface keeps markup characters", func(t *testing.T) {
		doc := FormatFor("[A<m>]a & b", TerminalEscaper)
		want := Document{Lines: []Line{{Segments: []Segment{chord("A<m>"), text("a & b")}}}}
		if diff := cmp.Diff(want, doc); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestAmazingGrace(t *testing.T) {
	lyrics := "[C]Amazing [F]grace, how [C]sweet the sound\nThat [Am]saved a [G]wretch like [C]me"
	doc := Format(lyrics)

	want := Document{Lines: []Line{
		{Segments: []Segment{
			chord("C"), text("Amazing "),
			chord("F"), text("grace, how "),
			chord("C"), text("sweet the sound"),
		}},
		{Segments: []Segment{
			text("That "),
			chord("Am"), text("saved a "),
			chord("G"), text("wretch like "),
			chord("C"), text("me"),
		}},
	}}

	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	if !doc.HasChords() {
		t.Error("expected HasChords to be true")
	}
	if diff := cmp.Diff([]string{"C", "F", "Am", "G"}, doc.Chords()); diff != "" {
		t.Errorf("Chords mismatch (-want +got):\n%s", diff)
	}
	if got := doc.Lines[1].Chords(); len(got) != 3 {
		t.Errorf("expected 3 chords on line 2, got %v", got)
	}
}

func TestHasChords(t *testing.T) {
	if Format("no chords here\n\n").HasChords() {
		t.Error("expected no chords")
	}
	if !Format("x\n[]").HasChords() {
		t.Error("expected empty-label marker to count as a chord")
	}
}

func TestConcurrentFormat(t *testing.T) {
	in := "[C]Amazing [F]grace\n[G]how sweet"
	want := Format(in)

	done := make(chan Document, 8)
	for range 8 {
		go func() { done <- Format(in) }()
	}
	for range 8 {
		if diff := cmp.Diff(want, <-done); diff != "" {
			t.Errorf("concurrent result differs:\n%s", diff)
		}
	}
}

func TestDocumentJSON(t *testing.T) {
	data, err := json.Marshal(Format("[C]la\n"))
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	want := `{"lines":[{"blank":false,"segments":[{"kind":"chord","text":"C"},{"kind":"text","text":"la"}]},{"blank":true}]}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if diff := cmp.Diff(Format("[C]la\n"), doc); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
