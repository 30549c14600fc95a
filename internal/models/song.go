package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/songbook/internal/shared"
)

var _ Model = (*Song)(nil)

// Song is a set of chord-annotated lyrics with a title and an optional artist.
type Song struct {
	id        string
	sequence  int
	title     string
	artist    string
	lyrics    string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSong creates a song stamped with the current time. The title and artist are trimmed; lyrics are kept verbatim.
func NewSong(title, artist, lyrics string) *Song {
	now := time.Now().UTC()
	return &Song{
		title:     strings.TrimSpace(title),
		artist:    strings.TrimSpace(artist),
		lyrics:    lyrics,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Song) ID() string            { return s.id }
func (s *Song) Sequence() int         { return s.sequence }
func (s *Song) Title() string         { return s.title }
func (s *Song) Artist() string        { return s.artist }
func (s *Song) Lyrics() string        { return s.lyrics }
func (s *Song) CreatedAt() time.Time  { return s.createdAt }
func (s *Song) UpdatedAt() time.Time  { return s.updatedAt }
func (s *Song) DeletedAt() *time.Time { return s.deletedAt }

func (s *Song) SetID(id string)           { s.id = id }
func (s *Song) SetSequence(seq int)       { s.sequence = seq }
func (s *Song) SetCreatedAt(t time.Time)  { s.createdAt = t }
func (s *Song) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *Song) SetDeletedAt(t *time.Time) { s.deletedAt = t }
func (s *Song) SetTitle(title string)     { s.title = strings.TrimSpace(title) }
func (s *Song) SetArtist(artist string)   { s.artist = strings.TrimSpace(artist) }
func (s *Song) SetLyrics(lyrics string)   { s.lyrics = lyrics }

// Validate requires a non-blank title and lyrics.
func (s *Song) Validate() error {
	if strings.TrimSpace(s.title) == "" {
		return fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	}
	if strings.TrimSpace(s.lyrics) == "" {
		return fmt.Errorf("%w: lyrics are required", shared.ErrInvalidInput)
	}
	return nil
}

// Matches reports whether the normalized query appears in the title or artist, ignoring case.
// An empty query matches every song.
func (s *Song) Matches(query string) bool {
	q := shared.NormalizeQuery(query)
	if q == "" {
		return true
	}
	return strings.Contains(shared.NormalizeQuery(s.title), q) ||
		strings.Contains(shared.NormalizeQuery(s.artist), q)
}

// Record converts the song to its wire form.
func (s *Song) Record() SongRecord {
	return SongRecord{
		ID:        s.id,
		Title:     s.title,
		Artist:    s.artist,
		Lyrics:    s.lyrics,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

// Clone returns a copy that shares no pointers with s.
func (s *Song) Clone() *Song {
	c := *s
	if s.deletedAt != nil {
		t := *s.deletedAt
		c.deletedAt = &t
	}
	return &c
}
