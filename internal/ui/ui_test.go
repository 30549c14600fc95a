package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/tasks"
	th "github.com/desertthunder/songbook/internal/testing"
)

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func newTestModel(t *testing.T, songs ...*models.Song) (*Model, *th.MemoryRepository) {
	t.Helper()
	repo := th.NewMemoryRepository(songs...)
	lib := tasks.NewLibrary(repo, log.New(io.Discard), "")
	m := NewModel(context.Background(), lib)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	deliver(t, m, m.Init())
	return m, repo
}

// deliver runs cmd and feeds its result back into the model when it is a [Msg].
// Follow-up commands that produce a [Msg] are delivered as well.
func deliver(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg, ok := cmd().(Msg)
		if !ok {
			t.Fatalf("expected a ui Msg")
		}
		_, cmd = m.Update(msg)
		if msg.kind == MsgSongsLoaded {
			return
		}
	}
}

func song(id, title, artist, lyrics string) *models.Song {
	s := models.NewSong(title, artist, lyrics)
	s.SetID(id)
	return s
}

func TestListAndDisplay(t *testing.T) {
	m, _ := newTestModel(t,
		song("2", "Scarborough Fair", "", "[Am]Are you going"),
		song("1", "Amazing Grace", "John Newton", "[G]Amazing [C]grace"),
	)

	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("expected 2 items, got %d", got)
	}
	first := m.list.Items()[0].(songItem)
	if first.song.Title() != "Amazing Grace" {
		t.Errorf("expected alphabetical order, first is %q", first.song.Title())
	}
	if second := m.list.Items()[1].(songItem); second.Description() != "Unknown Artist" {
		t.Errorf("expected Unknown Artist description, got %q", second.Description())
	}

	m.Update(keyPress("enter"))
	if m.view != DisplayView || m.selected.ID() != "1" {
		t.Fatalf("expected display of song 1, view=%d", m.view)
	}

	view := m.View()
	for _, want := range []string{"Amazing Grace", "John Newton", "G       C", "Amazing grace"} {
		if !strings.Contains(view, want) {
			t.Errorf("display missing %q:\n%s", want, view)
		}
	}

	m.Update(keyPress("esc"))
	if m.view != ListView {
		t.Errorf("expected list view after esc, got %d", m.view)
	}
}

func TestDeleteFlow(t *testing.T) {
	m, repo := newTestModel(t, song("1", "Amazing Grace", "", "[G]la"))

	m.Update(keyPress("enter"))
	m.Update(keyPress("d"))
	if m.view != ConfirmDeleteView {
		t.Fatalf("expected confirm view, got %d", m.view)
	}
	if !strings.Contains(m.View(), `Delete "Amazing Grace"?`) {
		t.Errorf("unexpected confirm view:\n%s", m.View())
	}

	m.Update(keyPress("n"))
	if m.view != DisplayView {
		t.Fatalf("expected to return to display view, got %d", m.view)
	}

	m.Update(keyPress("d"))
	_, cmd := m.Update(keyPress("y"))
	deliver(t, m, cmd)

	if m.view != ListView || len(m.list.Items()) != 0 {
		t.Errorf("expected empty list view, view=%d items=%d", m.view, len(m.list.Items()))
	}
	if songs, _ := repo.List(context.Background(), nil); len(songs) != 0 {
		t.Errorf("expected song removed from repository")
	}
	if !strings.Contains(m.View(), `Deleted "Amazing Grace"`) {
		t.Errorf("expected status message:\n%s", m.View())
	}
}

func TestFormFlow(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		m, repo := newTestModel(t)

		m.Update(keyPress("a"))
		if m.view != FormView || m.form.editing() {
			t.Fatalf("expected add form, view=%d", m.view)
		}
		m.Update(keyPress("New Song"))
		m.Update(keyPress("tab"))
		m.Update(keyPress("tab"))
		m.Update(keyPress("[C]la"))

		_, cmd := m.Update(keyPress("ctrl+s"))
		deliver(t, m, cmd)

		if m.view != DisplayView || m.selected == nil || m.selected.Title() != "New Song" {
			t.Fatalf("expected display of the new song, view=%d", m.view)
		}
		if songs, _ := repo.List(context.Background(), nil); len(songs) != 1 {
			t.Errorf("expected one stored song, got %d", len(songs))
		}
		if len(m.list.Items()) != 1 {
			t.Errorf("expected list reloaded")
		}
	})

	t.Run("validation error stays in form", func(t *testing.T) {
		m, _ := newTestModel(t)

		m.Update(keyPress("a"))
		_, cmd := m.Update(keyPress("ctrl+s"))
		deliver(t, m, cmd)

		if m.view != FormView || m.form.err == nil {
			t.Fatalf("expected form error, view=%d err=%v", m.view, m.form.err)
		}
		if !strings.Contains(m.View(), "title is required") {
			t.Errorf("expected validation message:\n%s", m.View())
		}

		m.Update(keyPress("esc"))
		if m.view != ListView {
			t.Errorf("expected cancel back to list, got %d", m.view)
		}
	})

	t.Run("edit", func(t *testing.T) {
		m, repo := newTestModel(t, song("1", "Old", "Someone", "[G]la"))

		m.Update(keyPress("e"))
		if !m.form.editing() {
			t.Fatal("expected edit form")
		}
		if title, artist, _ := m.form.values(); title != "Old" || artist != "Someone" {
			t.Errorf("form not prefilled: %q %q", title, artist)
		}

		m.Update(keyPress("er"))
		_, cmd := m.Update(keyPress("ctrl+s"))
		deliver(t, m, cmd)

		got, err := repo.Get(context.Background(), "1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Title() != "Older" || got.Artist() != "Someone" {
			t.Errorf("unexpected song %q / %q", got.Title(), got.Artist())
		}
	})
}

func TestErrorsAndQuit(t *testing.T) {
	repo := th.NewMemoryRepository()
	repo.Err = errors.New("database is locked")
	m := NewModel(context.Background(), tasks.NewLibrary(repo, log.New(io.Discard), ""))
	deliver(t, m, m.Init())

	if !strings.Contains(m.View(), "database is locked") {
		t.Errorf("expected error view:\n%s", m.View())
	}

	repo.Err = nil
	_, cmd := m.Update(keyPress("esc"))
	deliver(t, m, cmd)
	if m.err != nil {
		t.Errorf("expected error dismissed, got %v", m.err)
	}

	_, cmd = m.Update(keyPress("ctrl+c"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
