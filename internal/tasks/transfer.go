package tasks

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

//go:embed sample-songs.json
var sampleSongs []byte

// BatchCreator is implemented by repositories that can store many songs in one round trip.
// Duplicate IDs are skipped and the number of stored songs is returned. A failed batch
// stores nothing.
type BatchCreator interface {
	CreateMany(ctx context.Context, songs []*models.Song) (int, error)
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported int // Songs added to the library
	Skipped  int // Songs whose ID was already present
}

func (r ImportResult) String() string {
	return fmt.Sprintf("Imported %d song(s)", r.Imported)
}

// Import merges a songbook document into the library.
//
// The document is validated as a whole first, so a single invalid song rejects the import
// and nothing is written. Songs whose ID is already in the library, or that repeat an ID
// earlier in the same document, are skipped. Songs without an ID get a generated one.
func (l *Library) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	book, err := models.ParseSongbook(data)
	if err != nil {
		return nil, err
	}

	existing, err := l.repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	seen := make(map[string]struct{}, len(existing)+len(book.Songs))
	for _, s := range existing {
		seen[s.ID()] = struct{}{}
	}

	result := &ImportResult{}
	pending := make([]*models.Song, 0, len(book.Songs))
	for _, rec := range book.Songs {
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = shared.GenerateID()
		}
		if _, dup := seen[rec.ID]; dup {
			result.Skipped++
			continue
		}
		seen[rec.ID] = struct{}{}
		pending = append(pending, rec.Song())
	}

	if batch, ok := l.repo.(BatchCreator); ok && len(pending) > 0 {
		created, err := batch.CreateMany(ctx, pending)
		if err != nil {
			return nil, fmt.Errorf("failed to import songs: %w", err)
		}
		result.Skipped += len(pending) - created
		result.Imported = created
	} else {
		for _, song := range pending {
			err := l.repo.Create(ctx, song)
			if errors.Is(err, shared.ErrDuplicateSong) {
				result.Skipped++
				continue
			}
			if err != nil {
				return result, fmt.Errorf("failed to import %q after %d song(s): %w", song.Title(), result.Imported, err)
			}
			result.Imported++
		}
	}

	l.logger.Info("import finished", "imported", result.Imported, "skipped", result.Skipped)
	if result.Imported > 0 {
		l.publish(ChangeEvent{Type: SongsImported, Count: result.Imported})
	}
	return result, nil
}

// Export encodes the whole library as a songbook document and returns it with its dated file name.
func (l *Library) Export(ctx context.Context, pretty bool) ([]byte, string, error) {
	songs, err := l.repo.List(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list songs: %w", err)
	}

	data, err := formatter.ExportToJSON(songs, pretty)
	if err != nil {
		return nil, "", err
	}
	return data, formatter.ExportFilename(time.Now()), nil
}

// Seed imports the bundled sample songs when the library is empty and reports how many were added.
func (l *Library) Seed(ctx context.Context) (int, error) {
	songs, err := l.repo.List(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list songs: %w", err)
	}
	if len(songs) > 0 {
		return 0, nil
	}

	result, err := l.Import(ctx, sampleSongs)
	if err != nil {
		return 0, fmt.Errorf("failed to seed sample songs: %w", err)
	}
	return result.Imported, nil
}
