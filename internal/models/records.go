package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/songbook/internal/shared"
)

// SongRecord is the JSON form of a song used by import/export files and the remote document.
type SongRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist,omitempty"`
	Lyrics    string    `json:"lyrics"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Songbook is the {"songs": [...]} envelope.
type Songbook struct {
	Songs []SongRecord `json:"songs"`
}

// Song converts the record to a [Song]. Missing timestamps are set to now.
func (r SongRecord) Song() *Song {
	now := time.Now().UTC()
	s := &Song{
		id:        r.ID,
		title:     strings.TrimSpace(r.Title),
		artist:    strings.TrimSpace(r.Artist),
		lyrics:    r.Lyrics,
		createdAt: r.CreatedAt,
		updatedAt: r.UpdatedAt,
	}
	if s.createdAt.IsZero() {
		s.createdAt = now
	}
	if s.updatedAt.IsZero() {
		s.updatedAt = s.createdAt
	}
	return s
}

// NewSongbook wraps songs in a [Songbook]. The songs slice is never nil so it encodes as [].
func NewSongbook(songs []*Song) Songbook {
	records := make([]SongRecord, 0, len(songs))
	for _, s := range songs {
		records = append(records, s.Record())
	}
	return Songbook{Songs: records}
}

// ParseSongbook decodes and validates a songbook document.
//
// The document must contain a "songs" array and every entry needs a title and lyrics;
// one bad entry rejects the whole document.
func ParseSongbook(data []byte) (*Songbook, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%w: no data provided", shared.ErrMissingArgument)
	}

	var raw struct {
		Songs *[]SongRecord `json:"songs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrImportFormat, err)
	}
	if raw.Songs == nil {
		return nil, fmt.Errorf("%w: missing songs array", shared.ErrImportFormat)
	}

	for i, rec := range *raw.Songs {
		if strings.TrimSpace(rec.Title) == "" || strings.TrimSpace(rec.Lyrics) == "" {
			return nil, fmt.Errorf("%w: song %d is missing title or lyrics", shared.ErrImportFormat, i+1)
		}
	}

	return &Songbook{Songs: *raw.Songs}, nil
}
