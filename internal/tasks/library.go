package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/desertthunder/songbook/internal/chords"
	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

const DefaultUnknownArtist = "Unknown Artist"

// EventType names a change to the library.
type EventType string

const (
	SongCreated   EventType = "created"
	SongUpdated   EventType = "updated"
	SongDeleted   EventType = "deleted"
	SongsImported EventType = "imported"
)

// ChangeEvent describes a mutation, delivered to subscribers after it is stored.
type ChangeEvent struct {
	Type   EventType `json:"type"`
	SongID string    `json:"songId,omitempty"`
	Title  string    `json:"title,omitempty"`
	Count  int       `json:"count,omitempty"`
}

// SongPatch holds the fields to change in an edit. Nil fields are left alone.
type SongPatch struct {
	Title  *string
	Artist *string
	Lyrics *string
}

// Library implements songbook operations over a [models.SongRepository].
type Library struct {
	repo          models.SongRepository
	logger        *log.Logger
	unknownArtist string
	lang          language.Tag

	mu          sync.RWMutex
	subscribers []func(ChangeEvent)
}

// NewLibrary creates a Library. An empty unknownArtist uses [DefaultUnknownArtist].
func NewLibrary(repo models.SongRepository, logger *log.Logger, unknownArtist string) *Library {
	if unknownArtist == "" {
		unknownArtist = DefaultUnknownArtist
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Library{
		repo:          repo,
		logger:        logger,
		unknownArtist: unknownArtist,
		lang:          language.English,
	}
}

// SetLanguage changes the collation used for listings.
func (l *Library) SetLanguage(tag language.Tag) { l.lang = tag }

// UnknownArtist returns the label shown for songs without an artist.
func (l *Library) UnknownArtist() string { return l.unknownArtist }

// Subscribe registers fn to receive change events. fn must not block.
func (l *Library) Subscribe(fn func(ChangeEvent)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

func (l *Library) publish(ev ChangeEvent) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, fn := range l.subscribers {
		fn(ev)
	}
}

// Add stores a new song. The title and lyrics must be non-blank.
func (l *Library) Add(ctx context.Context, title, artist, lyrics string) (*models.Song, error) {
	song := models.NewSong(title, artist, lyrics)
	if err := l.repo.Create(ctx, song); err != nil {
		return nil, fmt.Errorf("failed to add song: %w", err)
	}

	l.logger.Debug("song added", "id", song.ID(), "title", song.Title())
	l.publish(ChangeEvent{Type: SongCreated, SongID: song.ID(), Title: song.Title()})
	return song, nil
}

// Get returns the song with the given ID.
func (l *Library) Get(ctx context.Context, id string) (*models.Song, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}
	return l.repo.Get(ctx, id)
}

// Edit applies patch to the song with the given ID and stores it.
func (l *Library) Edit(ctx context.Context, id string, patch SongPatch) (*models.Song, error) {
	song, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		song.SetTitle(*patch.Title)
	}
	if patch.Artist != nil {
		song.SetArtist(*patch.Artist)
	}
	if patch.Lyrics != nil {
		song.SetLyrics(*patch.Lyrics)
	}

	if err := l.repo.Update(ctx, song); err != nil {
		return nil, fmt.Errorf("failed to update song: %w", err)
	}

	l.logger.Debug("song updated", "id", song.ID())
	l.publish(ChangeEvent{Type: SongUpdated, SongID: song.ID(), Title: song.Title()})
	return song, nil
}

// Delete removes the song with the given ID.
func (l *Library) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}
	if err := l.repo.Delete(ctx, id); err != nil {
		return err
	}

	l.logger.Debug("song deleted", "id", id)
	l.publish(ChangeEvent{Type: SongDeleted, SongID: id})
	return nil
}

// List returns every song sorted alphabetically by title.
func (l *Library) List(ctx context.Context) ([]*models.Song, error) {
	return l.Search(ctx, "")
}

// Search returns the songs whose title or artist contains query, ignoring case,
// sorted alphabetically by title. An empty query returns every song.
func (l *Library) Search(ctx context.Context, query string) ([]*models.Song, error) {
	songs, err := l.repo.List(ctx, map[string]any{"query": query})
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	l.sortByTitle(songs)
	return songs, nil
}

// sortByTitle orders songs with locale-aware collation; equal titles keep their stored order.
func (l *Library) sortByTitle(songs []*models.Song) {
	c := collate.New(l.lang, collate.IgnoreCase)
	slices.SortStableFunc(songs, func(a, b *models.Song) int {
		return c.CompareString(a.Title(), b.Title())
	})
}

// Document returns the formatted lyrics of the song with the given ID.
func (l *Library) Document(ctx context.Context, id string, esc chords.Escaper) (chords.Document, error) {
	song, err := l.Get(ctx, id)
	if err != nil {
		return chords.Document{}, err
	}
	return chords.FormatFor(song.Lyrics(), esc), nil
}

// Render renders the song with the given ID in format.
func (l *Library) Render(ctx context.Context, id string, format formatter.Format) ([]byte, error) {
	song, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return formatter.RenderSong(song, format, l.unknownArtist)
}

// ArtistLabel returns the song's artist or the unknown-artist label.
func (l *Library) ArtistLabel(song *models.Song) string {
	return shared.ArtistOrDefault(song.Artist(), l.unknownArtist)
}
