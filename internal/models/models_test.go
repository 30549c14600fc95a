package models

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/songbook/internal/shared"
)

func TestSong(t *testing.T) {
	t.Run("NewSong trims title and artist", func(t *testing.T) {
		s := NewSong("  Amazing Grace ", " John Newton ", "  [C]Amazing\n")
		if s.Title() != "Amazing Grace" {
			t.Errorf("expected trimmed title, got %q", s.Title())
		}
		if s.Artist() != "John Newton" {
			t.Errorf("expected trimmed artist, got %q", s.Artist())
		}
		if s.Lyrics() != "  [C]Amazing\n" {
			t.Errorf("expected lyrics verbatim, got %q", s.Lyrics())
		}
		if s.CreatedAt().IsZero() || !s.CreatedAt().Equal(s.UpdatedAt()) {
			t.Error("expected matching creation and update timestamps")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			song    *Song
			wantErr bool
		}{
			{name: "valid", song: NewSong("Title", "", "Lyrics")},
			{name: "missing title", song: NewSong("  ", "Artist", "Lyrics"), wantErr: true},
			{name: "missing lyrics", song: NewSong("Title", "Artist", " \n "), wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.song.Validate()
				if tt.wantErr && !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				if !tt.wantErr && err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			})
		}
	})

	t.Run("Matches", func(t *testing.T) {
		s := NewSong("Amazing Grace", "John Newton", "x")
		tc := []struct {
			query string
			want  bool
		}{
			{"", true},
			{"grace", true},
			{"AMAZING", true},
			{"newton", true},
			{"  john   newton ", true},
			{"hallelujah", false},
		}
		for _, tt := range tc {
			if got := s.Matches(tt.query); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
			}
		}

		noArtist := NewSong("Untitled", "", "x")
		if noArtist.Matches("unknown") {
			t.Error("fallback artist label should not be searchable")
		}
	})

	t.Run("Clone", func(t *testing.T) {
		s := NewSong("A", "B", "C")
		now := time.Now()
		s.SetDeletedAt(&now)
		c := s.Clone()
		c.SetTitle("changed")
		if s.Title() != "A" {
			t.Error("clone should not share state")
		}
		if c.DeletedAt() == s.DeletedAt() {
			t.Error("clone should copy deletedAt")
		}
	})
}

func TestSongRecord(t *testing.T) {
	t.Run("missing timestamps are filled", func(t *testing.T) {
		s := SongRecord{ID: "1", Title: "T", Lyrics: "L"}.Song()
		if s.CreatedAt().IsZero() || s.UpdatedAt().IsZero() {
			t.Error("expected timestamps to be set")
		}
		if s.ID() != "1" {
			t.Errorf("expected ID to be kept, got %q", s.ID())
		}
	})

	t.Run("NewSongbook never nil", func(t *testing.T) {
		book := NewSongbook(nil)
		if book.Songs == nil {
			t.Error("expected empty, non-nil songs slice")
		}
	})
}

func TestParseSongbook(t *testing.T) {
	tc := []struct {
		name    string
		data    string
		wantErr error
		count   int
	}{
		{
			name:  "valid",
			data:  `{"songs":[{"id":"1","title":"Imported Song 1","lyrics":"[C]Test lyrics"},{"id":"2","title":"Imported Song 2","artist":"Import Artist","lyrics":"[G]More lyrics"}]}`,
			count: 2,
		},
		{name: "empty songs array", data: `{"songs":[]}`, count: 0},
		{name: "blank input", data: "   ", wantErr: shared.ErrMissingArgument},
		{name: "invalid json", data: "invalid json", wantErr: shared.ErrImportFormat},
		{name: "missing songs array", data: `{"tracks":[]}`, wantErr: shared.ErrImportFormat},
		{name: "missing title", data: `{"songs":[{"id":"1","lyrics":"x"}]}`, wantErr: shared.ErrImportFormat},
		{name: "missing lyrics", data: `{"songs":[{"id":"1","title":"x"}]}`, wantErr: shared.ErrImportFormat},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			book, err := ParseSongbook([]byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(book.Songs) != tt.count {
				t.Errorf("expected %d songs, got %d", tt.count, len(book.Songs))
			}
		})
	}
}
