package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/songbook/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSongsLoaded MsgKind = iota
	MsgSongSaved
	MsgSongDeleted
)

type songsLoaded struct {
	songs []*models.Song
	err   error
}

type songSaved struct {
	song    *models.Song
	created bool
	err     error
}

type songDeleted struct {
	id    string
	title string
	err   error
}

// songsLoadedMsg is the constructor for [MsgSongsLoaded]
func songsLoadedMsg(songs []*models.Song, err error) Msg {
	return Msg{kind: MsgSongsLoaded, data: songsLoaded{songs, err}}
}

// songSavedMsg is the constructor for [MsgSongSaved]
func songSavedMsg(song *models.Song, created bool, err error) Msg {
	return Msg{kind: MsgSongSaved, data: songSaved{song, created, err}}
}

// songDeletedMsg is the constructor for [MsgSongDeleted]
func songDeletedMsg(id, title string, err error) Msg {
	return Msg{kind: MsgSongDeleted, data: songDeleted{id, title, err}}
}
