package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/songbook/internal/models"
)

const (
	fieldTitle = iota
	fieldArtist
	fieldLyrics
	fieldCount
)

// songForm edits the three song fields. id is empty when adding.
type songForm struct {
	id     string
	title  textinput.Model
	artist textinput.Model
	lyrics textarea.Model
	focus  int
	err    error
}

func newSongForm() songForm {
	title := textinput.New()
	title.Placeholder = "Amazing Grace"
	title.Prompt = ""
	title.CharLimit = 200

	artist := textinput.New()
	artist.Placeholder = "optional"
	artist.Prompt = ""
	artist.CharLimit = 200

	lyrics := textarea.New()
	lyrics.Placeholder = "[G]Amazing [C]grace, how [G]sweet the sound"
	lyrics.ShowLineNumbers = false
	lyrics.CharLimit = 0

	return songForm{title: title, artist: artist, lyrics: lyrics}
}

// reset loads song into the form, or clears it when song is nil, and focuses the title.
func (f *songForm) reset(song *models.Song) tea.Cmd {
	f.id, f.err = "", nil
	f.title.SetValue("")
	f.artist.SetValue("")
	f.lyrics.SetValue("")
	if song != nil {
		f.id = song.ID()
		f.title.SetValue(song.Title())
		f.artist.SetValue(song.Artist())
		f.lyrics.SetValue(song.Lyrics())
	}
	f.focus = fieldLyrics
	return f.move(1)
}

func (f *songForm) editing() bool { return f.id != "" }

// move shifts focus by delta fields, wrapping around.
func (f *songForm) move(delta int) tea.Cmd {
	f.title.Blur()
	f.artist.Blur()
	f.lyrics.Blur()

	f.focus = ((f.focus+delta)%fieldCount + fieldCount) % fieldCount
	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldArtist:
		return f.artist.Focus()
	default:
		return f.lyrics.Focus()
	}
}

func (f *songForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldArtist:
		f.artist, cmd = f.artist.Update(msg)
	default:
		f.lyrics, cmd = f.lyrics.Update(msg)
	}
	return cmd
}

func (f *songForm) setSize(width, height int) {
	f.title.Width = max(width-12, 10)
	f.artist.Width = max(width-12, 10)
	f.lyrics.SetWidth(max(width-4, 10))
	f.lyrics.SetHeight(max(height-14, 3))
}

func (f songForm) values() (title, artist, lyrics string) {
	return f.title.Value(), f.artist.Value(), f.lyrics.Value()
}

func (f songForm) view() string {
	var b strings.Builder
	heading := "Add Song"
	if f.editing() {
		heading = "Edit Song"
	}
	b.WriteString(styles.title.Render(heading))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", styles.label.Render("Title: "), f.title.View())
	fmt.Fprintf(&b, "%s %s\n\n", styles.label.Render("Artist:"), f.artist.View())
	fmt.Fprintf(&b, "%s\n%s\n", styles.label.Render("Lyrics ([chord] before the syllable):"), f.lyrics.View())
	if f.err != nil {
		fmt.Fprintf(&b, "\n%s\n", styles.err.Render(f.err.Error()))
	}
	return b.String()
}
