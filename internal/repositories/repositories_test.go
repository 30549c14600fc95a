package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase("", ":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := shared.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	for want := 1; want <= 3; want++ {
		got, err := NextSequence(ctx, db, "songs")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}
}

func TestSongRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong("Amazing Grace", "John Newton", "[C]Amazing [F]grace")

		if err := repo.Create(ctx, song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		if song.ID() == "" {
			t.Error("song ID should be set after creation")
		}
		if song.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", song.Sequence())
		}
	})

	t.Run("Create keeps existing ID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong("Imported", "", "[G]la")
		song.SetID("imported-1")

		if err := repo.Create(ctx, song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		if song.ID() != "imported-1" {
			t.Errorf("expected ID to be kept, got %s", song.ID())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong("Amazing Grace", "", "[C]Amazing\n\n[G]grace")

		if err := repo.Create(ctx, song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		retrieved, err := repo.Get(ctx, song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}

		if retrieved.Title() != song.Title() {
			t.Errorf("expected title %s, got %s", song.Title(), retrieved.Title())
		}
		if retrieved.Artist() != "" {
			t.Errorf("expected empty artist, got %s", retrieved.Artist())
		}
		if retrieved.Lyrics() != song.Lyrics() {
			t.Errorf("expected lyrics to round trip verbatim, got %q", retrieved.Lyrics())
		}
		if !retrieved.CreatedAt().Equal(song.CreatedAt()) {
			t.Errorf("expected created_at %v, got %v", song.CreatedAt(), retrieved.CreatedAt())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong("Draft", "", "[C]la")

		if err := repo.Create(ctx, song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		song.SetTitle("Final")
		song.SetArtist("Band")
		if err := repo.Update(ctx, song); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		retrieved, err := repo.Get(ctx, song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if retrieved.Title() != "Final" || retrieved.Artist() != "Band" {
			t.Errorf("update not persisted: %s / %s", retrieved.Title(), retrieved.Artist())
		}
		if retrieved.UpdatedAt().Before(retrieved.CreatedAt()) {
			t.Error("updated_at should not precede created_at")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong("Gone", "", "[C]la")

		if err := repo.Create(ctx, song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		if err := repo.Delete(ctx, song.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}

		if _, err := repo.Get(ctx, song.ID()); err == nil {
			t.Error("expected error when getting deleted song")
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM songs WHERE deleted_at IS NOT NULL").Scan(&count); err != nil {
			t.Fatalf("failed to count rows: %v", err)
		}
		if count != 1 {
			t.Errorf("expected soft-deleted row to remain, got %d", count)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		for _, s := range []*models.Song{
			models.NewSong("Zebra Song", "", "x"),
			models.NewSong("Apple Song", "Fruit Band", "y"),
			models.NewSong("Mango Song", "", "z"),
		} {
			if err := repo.Create(ctx, s); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}
		}

		songs, err := repo.List(ctx, nil)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(songs) != 3 {
			t.Fatalf("expected 3 songs, got %d", len(songs))
		}
		if songs[0].Title() != "Zebra Song" {
			t.Errorf("expected insertion order, got %s first", songs[0].Title())
		}

		filtered, err := repo.List(ctx, map[string]any{"query": "FRUIT"})
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(filtered) != 1 || filtered[0].Title() != "Apple Song" {
			t.Errorf("expected only Apple Song, got %d songs", len(filtered))
		}

		byArtist, err := repo.List(ctx, map[string]any{"artist": "Fruit Band"})
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if len(byArtist) != 1 {
			t.Errorf("expected 1 song by artist, got %d", len(byArtist))
		}
	})

	t.Run("List empty", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs, err := NewSongRepository(db).List(ctx, nil)
		if err != nil {
			t.Fatalf("failed to list songs: %v", err)
		}
		if songs == nil || len(songs) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", songs)
		}
	})

	t.Run("Pure Go driver", func(t *testing.T) {
		db, err := shared.NewDatabase(shared.DriverPureGo, ":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
		if _, err := shared.RunMigrations(ctx, db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		repo := NewSongRepository(db)
		song := models.NewSong("Portable", "", "[D]la")
		if err := repo.Create(ctx, song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		got, err := repo.Get(ctx, song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if !got.UpdatedAt().Equal(song.UpdatedAt()) {
			t.Errorf("expected updated_at %v, got %v", song.UpdatedAt(), got.UpdatedAt())
		}
	})
}

func TestSongRepositoryCreateMany(t *testing.T) {
	ctx := context.Background()

	t.Run("stores new songs and skips live IDs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		live := models.NewSong("Amazing Grace", "John Newton", "[G]Amazing grace")
		live.SetID("grace")
		if err := repo.Create(ctx, live); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		again := models.NewSong("Amazing Grace (copy)", "", "[G]again")
		again.SetID("grace")
		fresh := models.NewSong("Will the Circle", "", "[C]Will the circle")

		created, err := repo.CreateMany(ctx, []*models.Song{again, fresh})
		if err != nil {
			t.Fatalf("CreateMany failed: %v", err)
		}
		if created != 1 {
			t.Errorf("expected 1 stored song, got %d", created)
		}
		if fresh.ID() == "" || fresh.Sequence() != 2 {
			t.Errorf("expected generated ID and sequence 2, got %q/%d", fresh.ID(), fresh.Sequence())
		}

		got, err := repo.Get(ctx, "grace")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Title() != "Amazing Grace" {
			t.Errorf("live song should be untouched, got %q", got.Title())
		}
	})

	t.Run("restores soft-deleted songs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewSong("Amazing Grace", "John Newton", "[G]Amazing grace")
		song.SetID("grace")
		if err := repo.Create(ctx, song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		if err := repo.Delete(ctx, "grace"); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}

		back := models.NewSong("Amazing Grace", "J. Newton", "[G]Amazing [C]grace")
		back.SetID("grace")
		created, err := repo.CreateMany(ctx, []*models.Song{back})
		if err != nil {
			t.Fatalf("CreateMany failed: %v", err)
		}
		if created != 1 {
			t.Fatalf("expected the deleted song to be restored, got %d", created)
		}

		got, err := repo.Get(ctx, "grace")
		if err != nil {
			t.Fatalf("restored song not found: %v", err)
		}
		if got.Artist() != "J. Newton" || got.Lyrics() != "[G]Amazing [C]grace" {
			t.Errorf("expected imported fields, got %q %q", got.Artist(), got.Lyrics())
		}
		if got.DeletedAt() != nil {
			t.Error("expected deleted_at to be cleared")
		}
		if got.Sequence() != 2 {
			t.Errorf("expected a new sequence, got %d", got.Sequence())
		}
	})

	t.Run("rolls back the batch on failure", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := db.ExecContext(ctx, `
			CREATE TRIGGER reject_title BEFORE INSERT ON songs
			WHEN NEW.title = 'Rejected'
			BEGIN SELECT RAISE(ABORT, 'rejected'); END
		`)
		if err != nil {
			t.Fatalf("failed to create trigger: %v", err)
		}

		repo := NewSongRepository(db)
		batch := []*models.Song{
			models.NewSong("First", "", "[C]one"),
			models.NewSong("Rejected", "", "[G]two"),
			models.NewSong("Third", "", "[D]three"),
		}
		if _, err := repo.CreateMany(ctx, batch); err == nil {
			t.Fatal("expected CreateMany to fail")
		}

		songs, err := repo.List(ctx, nil)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(songs) != 0 {
			t.Errorf("expected no songs after rollback, got %d", len(songs))
		}

		next, err := NextSequence(ctx, db, "songs")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if next != 1 {
			t.Errorf("expected sequence to roll back too, got %d", next)
		}
	})

	t.Run("rejects invalid songs before writing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		_, err := repo.CreateMany(ctx, []*models.Song{
			models.NewSong("Good", "", "[C]la"),
			models.NewSong("", "", "[C]la"),
		})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		songs, _ := repo.List(ctx, nil)
		if len(songs) != 0 {
			t.Errorf("expected nothing stored, got %d", len(songs))
		}
	})
}
