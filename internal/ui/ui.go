package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/songbook/internal/chords"
	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	DisplayView
	FormView
	ConfirmDeleteView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	lib      *tasks.Library
	view     ViewState
	prev     ViewState
	width    int
	height   int
	list     list.Model
	viewport viewport.Model
	form     songForm
	selected *models.Song
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model backed by lib.
func NewModel(ctx context.Context, lib *tasks.Library) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Songbook"
	l.SetShowHelp(false)
	l.SetStatusBarItemName("song", "songs")
	l.DisableQuitKeybindings()

	return &Model{
		ctx:      ctx,
		lib:      lib,
		view:     ListView,
		list:     l,
		viewport: viewport.New(0, 0),
		form:     newSongForm(),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init loads the song list.
func (m *Model) Init() tea.Cmd {
	return m.loadSongs()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.forceQuit) {
			return m, tea.Quit
		}
		if m.err != nil {
			return m.handleErrorKeys(msg)
		}
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case DisplayView:
			return m.handleDisplayKeys(msg)
		case FormView:
			return m.handleFormKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateActive(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Error: %v", m.err)), helpView)
	}

	switch m.view {
	case ListView:
		return m.renderList()
	case DisplayView:
		return m.renderDisplay()
	case FormView:
		return m.renderForm()
	case ConfirmDeleteView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSongsLoaded:
		data := msg.data.(songsLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.songs))
		for i, s := range data.songs {
			items[i] = songItem{song: s, artist: m.lib.ArtistLabel(s)}
		}
		return m, m.list.SetItems(items)

	case MsgSongSaved:
		data := msg.data.(songSaved)
		if data.err != nil {
			m.form.err = data.err
			return m, nil
		}
		verb := "Updated"
		if data.created {
			verb = "Added"
		}
		m.status = fmt.Sprintf("%s %q", verb, data.song.Title())
		m.showSong(data.song)
		return m, m.loadSongs()

	case MsgSongDeleted:
		data := msg.data.(songDeleted)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted %q", data.title)
		m.selected = nil
		m.view = ListView
		return m, m.loadSongs()
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.add):
		m.switchTo(FormView)
		return m, m.form.reset(nil)
	case key.Matches(msg, m.keys.enter):
		if song := m.selectedItem(); song != nil {
			m.showSong(song)
		}
		return m, nil
	case key.Matches(msg, m.keys.edit):
		if song := m.selectedItem(); song != nil {
			m.selected = song
			m.switchTo(FormView)
			return m, m.form.reset(song)
		}
		return m, nil
	case key.Matches(msg, m.keys.delete):
		if song := m.selectedItem(); song != nil {
			m.selected = song
			m.switchTo(ConfirmDeleteView)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleDisplayKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListView
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.edit):
		m.switchTo(FormView)
		return m, m.form.reset(m.selected)
	case key.Matches(msg, m.keys.delete):
		m.switchTo(ConfirmDeleteView)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = m.prev
		return m, nil
	case key.Matches(msg, m.keys.save):
		return m, m.saveSong()
	case key.Matches(msg, m.keys.next):
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.prev):
		return m, m.form.move(-1)
	}
	return m, m.form.update(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.deleteSong()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = m.prev
	}
	return m, nil
}

// handleErrorKeys dismisses a load or delete error.
func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.err = nil
		m.view = ListView
		return m, m.loadSongs()
	}
	return m, nil
}

// switchTo enters a transient view, remembering where to return on cancel.
func (m *Model) switchTo(v ViewState) {
	m.prev = m.view
	m.view = v
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListView:
		m.list, cmd = m.list.Update(msg)
	case DisplayView:
		m.viewport, cmd = m.viewport.Update(msg)
	case FormView:
		cmd = m.form.update(msg)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.list.SetSize(width-4, height-4)
	m.viewport.Width = width - 4
	m.viewport.Height = max(height-6, 1)
	m.form.setSize(width, height)
}

func (m *Model) selectedItem() *models.Song {
	if item, ok := m.list.SelectedItem().(songItem); ok {
		return item.song
	}
	return nil
}

// showSong switches to the display view with song's chords aligned over its lyrics.
func (m *Model) showSong(song *models.Song) {
	m.selected = song
	m.view = DisplayView

	doc := chords.FormatFor(song.Lyrics(), chords.TerminalEscaper)
	body := formatter.ChordsOverLyrics(doc)
	if body == "" {
		body = styles.help.Render("(no lyrics)")
	}
	m.viewport.SetContent(body)
	m.viewport.GotoTop()
}

func (m *Model) loadSongs() tea.Cmd {
	ctx, lib := m.ctx, m.lib
	return func() tea.Msg {
		songs, err := lib.List(ctx)
		return songsLoadedMsg(songs, err)
	}
}

func (m *Model) saveSong() tea.Cmd {
	ctx, lib := m.ctx, m.lib
	id := m.form.id
	title, artist, lyrics := m.form.values()

	return func() tea.Msg {
		if id == "" {
			song, err := lib.Add(ctx, title, artist, lyrics)
			return songSavedMsg(song, true, err)
		}
		song, err := lib.Edit(ctx, id, tasks.SongPatch{Title: &title, Artist: &artist, Lyrics: &lyrics})
		return songSavedMsg(song, false, err)
	}
}

func (m *Model) deleteSong() tea.Cmd {
	if m.selected == nil {
		return nil
	}
	ctx, lib := m.ctx, m.lib
	id, title := m.selected.ID(), m.selected.Title()
	return func() tea.Msg {
		return songDeletedMsg(id, title, lib.Delete(ctx, id))
	}
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.add, m.keys.edit, m.keys.delete, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	var status string
	if m.status != "" {
		status = styles.ok.Render(m.status) + "\n"
	}
	if len(m.list.Items()) == 0 {
		empty := styles.help.Render("No songs yet. Press a to add one, or run `songbook import`.")
		return fmt.Sprintf("%s%s\n\n%s\n\n%s", status, styles.title.Render("Songbook"), empty, helpView)
	}
	return fmt.Sprintf("%s%s\n\n%s", status, m.list.View(), helpView)
}

func (m *Model) renderDisplay() string {
	if m.selected == nil {
		return ""
	}
	header := styles.title.Render(m.selected.Title()) + "\n" + styles.artist.Render(m.lib.ArtistLabel(m.selected))

	var status string
	if m.status != "" {
		status = "\n" + styles.ok.Render(m.status)
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.edit, m.keys.delete, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s\n\n%s", header, status, m.viewport.View(), helpView)
}

func (m *Model) renderForm() string {
	helpKeys := []key.Binding{m.keys.next, m.keys.save, m.keys.back}
	return fmt.Sprintf("%s\n%s", m.form.view(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	if m.selected == nil {
		return ""
	}
	title := styles.warn.Render(fmt.Sprintf("Delete %q?", m.selected.Title()))
	info := strings.Join([]string{
		"",
		"Artist: " + m.lib.ArtistLabel(m.selected),
		"This cannot be undone.",
		"",
	}, "\n")

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}
