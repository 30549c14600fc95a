package tasks

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	th "github.com/desertthunder/songbook/internal/testing"
)

func TestInboxScan(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	lib, _ := newTestLibrary()
	inbox := NewInbox(dir, lib, log.New(io.Discard))

	th.MustWriteFile(t, filepath.Join(dir, "a.json"), `{"songs":[{"id":"a","title":"A","lyrics":"[C]a"}]}`)
	th.MustWriteFile(t, filepath.Join(dir, "b.json"), `{"songs":[{"id":"b","title":"B"}]}`)
	th.MustWriteFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	for _, sub := range []string{inboxImportedDir, inboxFailedDir} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
	}

	if n := inbox.Scan(ctx, nil); n != 1 {
		t.Errorf("expected 1 file imported, got %d", n)
	}

	th.AssertFileExists(t, filepath.Join(dir, inboxImportedDir, "a.json"))
	th.AssertFileExists(t, filepath.Join(dir, inboxFailedDir, "b.json"))
	th.AssertFileExists(t, filepath.Join(dir, "notes.txt"))

	if _, err := lib.Get(ctx, "a"); err != nil {
		t.Errorf("expected song a to be imported: %v", err)
	}
	if _, err := lib.Get(ctx, "b"); err == nil {
		t.Error("invalid file should not import anything")
	}
}

func TestInboxRun(t *testing.T) {
	dir := t.TempDir()
	lib, _ := newTestLibrary()
	inbox := NewInbox(dir, lib, log.New(io.Discard))
	inbox.debounce = 20 * time.Millisecond

	imported := make(chan ChangeEvent, 1)
	lib.Subscribe(func(ev ChangeEvent) {
		if ev.Type == SongsImported {
			imported <- ev
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	prog := make(chan ProgressUpdate, 10)
	go func() { done <- inbox.Run(ctx, prog) }()

	// Wait for the watcher to be registered before dropping the file.
	select {
	case u := <-prog:
		if u.Phase != WatchInbox {
			t.Fatalf("expected watch update first, got %s", u.Phase)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("inbox did not start")
	}

	th.MustWriteFile(t, filepath.Join(dir, "drop.json"), `{"songs":[{"id":"drop","title":"Dropped","lyrics":"[D]x"}]}`)

	select {
	case ev := <-imported:
		if ev.Count != 1 {
			t.Errorf("expected 1 song imported, got %d", ev.Count)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dropped file was not imported")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
