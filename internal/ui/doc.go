// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow over the songbook:
//  1. [ListView] : Browse songs alphabetically; "/" filters by title or artist
//  2. [DisplayView] : Read a song with chords aligned over the lyrics
//  3. [FormView] : Add or edit a song
//  4. [ConfirmDeleteView] : Confirm deletion
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Library calls run as commands so the terminal stays responsive while the repository works.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
