package ui

import (
	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/songbook/internal/models"
)

var _ list.Item = songItem{}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song   *models.Song
	artist string
}

func (i songItem) FilterValue() string { return i.song.Title() + " " + i.song.Artist() }
func (i songItem) Title() string       { return i.song.Title() }
func (i songItem) Description() string { return i.artist }
