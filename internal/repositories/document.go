package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

var _ models.SongRepository = (*DocumentRepository)(nil)

// DocumentStore loads and saves a whole songbook. Implemented by [services.DocumentService].
type DocumentStore interface {
	Fetch(ctx context.Context) (*models.Songbook, error)
	Store(ctx context.Context, book *models.Songbook) error
}

// DocumentRepository implements models.SongRepository on a remote document store, the remote backend.
//
// The store holds the whole songbook as one document, so every mutation loads it,
// changes it and writes all of it back. Mutations are serialized by a mutex.
// Deletes are hard deletes since the document has no room for tombstones.
type DocumentRepository struct {
	mu    sync.Mutex
	store DocumentStore
}

// NewDocumentRepository creates a DocumentRepository backed by store.
func NewDocumentRepository(store DocumentStore) *DocumentRepository {
	return &DocumentRepository{store: store}
}

// Create appends the song to the document. Songs without an ID get a generated one.
func (r *DocumentRepository) Create(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	book, err := r.store.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to load songbook: %w", err)
	}

	if song.ID() == "" {
		song.SetID(shared.GenerateID())
	}
	if indexOf(book, song.ID()) >= 0 {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateSong, song.ID())
	}

	song.SetSequence(len(book.Songs) + 1)
	book.Songs = append(book.Songs, song.Record())

	if err := r.store.Store(ctx, book); err != nil {
		return fmt.Errorf("failed to save songbook: %w", err)
	}
	return nil
}

// CreateMany appends songs in a single load-modify-save round trip.
// Songs whose ID is already stored are skipped; the count of appended songs is returned.
func (r *DocumentRepository) CreateMany(ctx context.Context, songs []*models.Song) (int, error) {
	for _, song := range songs {
		if err := song.Validate(); err != nil {
			return 0, fmt.Errorf("validation failed: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	book, err := r.store.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load songbook: %w", err)
	}

	created := 0
	for _, song := range songs {
		if song.ID() == "" {
			song.SetID(shared.GenerateID())
		}
		if indexOf(book, song.ID()) >= 0 {
			continue
		}
		song.SetSequence(len(book.Songs) + 1)
		book.Songs = append(book.Songs, song.Record())
		created++
	}

	if created == 0 {
		return 0, nil
	}
	if err := r.store.Store(ctx, book); err != nil {
		return 0, fmt.Errorf("failed to save songbook: %w", err)
	}
	return created, nil
}

// Get retrieves a song by ID.
func (r *DocumentRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, err := r.store.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load songbook: %w", err)
	}

	i := indexOf(book, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}

	song := book.Songs[i].Song()
	song.SetSequence(i + 1)
	return song, nil
}

// Update replaces the stored record with the song's title, artist and lyrics and stamps updatedAt.
func (r *DocumentRepository) Update(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	book, err := r.store.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to load songbook: %w", err)
	}

	i := indexOf(book, song.ID())
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, song.ID())
	}

	now := time.Now().UTC()
	rec := &book.Songs[i]
	rec.Title = song.Title()
	rec.Artist = song.Artist()
	rec.Lyrics = song.Lyrics()
	rec.UpdatedAt = now

	if err := r.store.Store(ctx, book); err != nil {
		return fmt.Errorf("failed to save songbook: %w", err)
	}

	song.SetUpdatedAt(now)
	return nil
}

// Delete removes a song from the document.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, err := r.store.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to load songbook: %w", err)
	}

	i := indexOf(book, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	book.Songs = append(book.Songs[:i], book.Songs[i+1:]...)

	if err := r.store.Store(ctx, book); err != nil {
		return fmt.Errorf("failed to save songbook: %w", err)
	}
	return nil
}

// List returns the songs in document order. Supports the "query" criterion like [SongRepository.List].
func (r *DocumentRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, err := r.store.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load songbook: %w", err)
	}

	search, _ := criteria["query"].(string)

	songs := []*models.Song{}
	for i, rec := range book.Songs {
		song := rec.Song()
		song.SetSequence(i + 1)
		if song.Matches(search) {
			songs = append(songs, song)
		}
	}
	return songs, nil
}

// Close is a no-op; the store holds no open resources.
func (r *DocumentRepository) Close() error { return nil }

func indexOf(book *models.Songbook, id string) int {
	for i, rec := range book.Songs {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
