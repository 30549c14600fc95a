package testing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

var _ models.SongRepository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory [models.SongRepository] for tests.
//
// Setting Err makes every call fail with it.
type MemoryRepository struct {
	mu    sync.Mutex
	songs []*models.Song
	Err   error
}

// NewMemoryRepository creates a repository holding copies of songs.
func NewMemoryRepository(songs ...*models.Song) *MemoryRepository {
	r := &MemoryRepository{}
	for _, s := range songs {
		c := s.Clone()
		if c.ID() == "" {
			c.SetID(shared.GenerateID())
		}
		r.songs = append(r.songs, c)
	}
	return r
}

func (r *MemoryRepository) Create(ctx context.Context, song *models.Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if song.ID() == "" {
		song.SetID(shared.GenerateID())
	}
	for _, s := range r.songs {
		if s.ID() == song.ID() {
			return fmt.Errorf("%w: %s", shared.ErrDuplicateSong, song.ID())
		}
	}
	song.SetSequence(len(r.songs) + 1)
	r.songs = append(r.songs, song.Clone())
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, s := range r.songs {
		if s.ID() == id {
			return s.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
}

func (r *MemoryRepository) Update(ctx context.Context, song *models.Song) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	for i, s := range r.songs {
		if s.ID() == song.ID() {
			song.SetUpdatedAt(time.Now().UTC())
			r.songs[i] = song.Clone()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", shared.ErrSongNotFound, song.ID())
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for i, s := range r.songs {
		if s.ID() == id {
			r.songs = append(r.songs[:i], r.songs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
}

// List supports the "query" criterion.
func (r *MemoryRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	query, _ := criteria["query"].(string)
	songs := []*models.Song{}
	for _, s := range r.songs {
		if s.Matches(query) {
			songs = append(songs, s.Clone())
		}
	}
	return songs, nil
}

func (r *MemoryRepository) Close() error { return nil }
