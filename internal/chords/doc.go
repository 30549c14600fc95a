// Package chords parses lyrics annotated with inline chords and produces a renderable [Document].
//
// Chords are written in square brackets directly before the syllable they belong to:
//
//	[C]Amazing [F]grace, how [C]sweet the sound
//
// Formatting happens in three stages:
//
//  1. [Tokenize] scans one line into [Span] values (literal text or chord label) covering the whole line.
//  2. [RenderLine] turns the spans of a line into a [Line] of [Segment] values, escaping text for the display surface.
//  3. [Format] splits raw lyrics on "\n" and renders every line, keeping blank lines as spacing rows.
//
// The transformation is total: malformed bracket syntax degrades to literal text and nothing returns an error.
// A [Document] is derived data; callers recompute it whenever the lyrics change.
package chords
