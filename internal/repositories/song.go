package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

var _ models.SongRepository = (*SongRepository)(nil)

const songColumns = "id, sequence, title, artist, lyrics, created_at, updated_at, deleted_at"

// SongRepository implements models.SongRepository on SQLite, the local backend.
//
// Handles song CRUD operations with soft delete support.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new song with a sequence number. Songs without an ID get a generated one;
// imported songs keep theirs.
func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if song.ID() == "" {
		song.SetID(shared.GenerateID())
	}
	song.SetSequence(sequence)

	query := `
		INSERT INTO songs (id, sequence, title, artist, lyrics, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		song.ID(),
		sequence,
		song.Title(),
		song.Artist(),
		song.Lyrics(),
		formatTime(song.CreatedAt()),
		formatTime(song.UpdatedAt()),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateSong, song.ID())
	}
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return nil
}

// CreateMany stores songs in one transaction and returns how many were stored.
//
// Songs whose ID belongs to a live song are skipped. A soft-deleted song with the same ID
// is restored with the incoming fields and a new sequence, so deleting and re-importing a
// song brings it back. Any failure rolls back the whole batch.
func (r *SongRepository) CreateMany(ctx context.Context, songs []*models.Song) (int, error) {
	for _, song := range songs {
		if err := song.Validate(); err != nil {
			return 0, fmt.Errorf("validation failed: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO songs (id, sequence, title, artist, lyrics, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	restore := `
		UPDATE songs
		SET sequence = ?, title = ?, artist = ?, lyrics = ?, created_at = ?, updated_at = ?, deleted_at = NULL
		WHERE id = ?
	`

	created := 0
	for _, song := range songs {
		if song.ID() == "" {
			song.SetID(shared.GenerateID())
		}

		var deletedAt sql.NullString
		err := tx.QueryRowContext(ctx, "SELECT deleted_at FROM songs WHERE id = ?", song.ID()).Scan(&deletedAt)
		exists := err == nil
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return 0, fmt.Errorf("failed to look up song %s: %w", song.ID(), err)
		case !deletedAt.Valid:
			continue
		}

		sequence, err := nextSequenceTx(ctx, tx, "songs")
		if err != nil {
			return 0, err
		}

		if exists {
			_, err = tx.ExecContext(ctx, restore,
				sequence,
				song.Title(),
				song.Artist(),
				song.Lyrics(),
				formatTime(song.CreatedAt()),
				formatTime(song.UpdatedAt()),
				song.ID(),
			)
		} else {
			_, err = tx.ExecContext(ctx, insert,
				song.ID(),
				sequence,
				song.Title(),
				song.Artist(),
				song.Lyrics(),
				formatTime(song.CreatedAt()),
				formatTime(song.UpdatedAt()),
			)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to store song %q: %w", song.Title(), err)
		}

		song.SetSequence(sequence)
		created++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return created, nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE id = ? AND deleted_at IS NULL"

	song, err := scanSong(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	return song, err
}

// Update writes the song's title, artist and lyrics and stamps updated_at.
func (r *SongRepository) Update(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()

	query := `
		UPDATE songs
		SET title = ?, artist = ?, lyrics = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		song.Title(),
		song.Artist(),
		song.Lyrics(),
		formatTime(now),
		song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, song.ID())
	}

	song.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE songs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}

	return nil
}

// List retrieves songs in insertion order, excluding soft-deleted songs.
//
// The "query" criterion keeps songs whose title or artist contains it, ignoring case.
// Matching happens after the scan so it follows [models.Song.Matches] for every script, which SQLite's LIKE does not.
func (r *SongRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE deleted_at IS NULL"

	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	search, _ := criteria["query"].(string)

	songs := []*models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		if song.Matches(search) {
			songs = append(songs, song)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// Close closes the underlying database.
func (r *SongRepository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanSong scans a single row from [sql.Row] or [sql.Rows] into a [models.Song]
func scanSong(row scanner) (*models.Song, error) {
	var (
		id        string
		sequence  int
		title     string
		artist    string
		lyrics    string
		createdAt string
		updatedAt string
		deletedAt sql.NullString
	)

	err := row.Scan(&id, &sequence, &title, &artist, &lyrics, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song := models.NewSong(title, artist, lyrics)
	song.SetID(id)
	song.SetSequence(sequence)

	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	song.SetCreatedAt(created)
	song.SetUpdatedAt(updated)

	if deletedAt.Valid {
		deleted, err := parseTime(deletedAt.String)
		if err != nil {
			return nil, err
		}
		song.SetDeletedAt(&deleted)
	}

	return song, nil
}
