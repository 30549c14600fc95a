package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const (
	inboxImportedDir = "imported"
	inboxFailedDir   = "failed"
	inboxDebounce    = 300 * time.Millisecond
)

// Inbox watches a directory for songbook JSON files and imports them into a [Library].
//
// Imported files move to the imported/ subdirectory and rejected files to failed/,
// so each file is processed once.
type Inbox struct {
	dir      string
	lib      *Library
	logger   *log.Logger
	debounce time.Duration
}

// NewInbox creates an Inbox for dir.
func NewInbox(dir string, lib *Library, logger *log.Logger) *Inbox {
	return &Inbox{dir: dir, lib: lib, logger: logger, debounce: inboxDebounce}
}

// Run processes files already in the directory, then watches it until ctx ends.
// Filesystem changes are debounced so a file is read once its writer has finished.
func (in *Inbox) Run(ctx context.Context, prog chan<- ProgressUpdate) error {
	for _, sub := range []string{"", inboxImportedDir, inboxFailedDir} {
		if err := os.MkdirAll(filepath.Join(in.dir, sub), 0755); err != nil {
			return fmt.Errorf("failed to create inbox directory: %w", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(in.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", in.dir, err)
	}

	sendProgress(prog, watchingUpdate(in.dir))
	in.logger.Info("watching inbox", "dir", in.dir)
	in.Scan(ctx, prog)

	debounce := time.NewTimer(in.debounce)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSongbookFile(event.Name) || event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(in.debounce)

		case <-debounce.C:
			in.Scan(ctx, prog)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox watcher", "err", err)
		}
	}
}

// Scan imports every songbook file currently in the inbox, in name order, and returns how many were imported.
func (in *Inbox) Scan(ctx context.Context, prog chan<- ProgressUpdate) int {
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		in.logger.Error("failed to read inbox", "dir", in.dir, "err", err)
		return 0
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isSongbookFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	imported := 0
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		if in.importFile(ctx, prog, name) {
			imported++
		}
	}
	return imported
}

func (in *Inbox) importFile(ctx context.Context, prog chan<- ProgressUpdate, name string) bool {
	path := filepath.Join(in.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		in.logger.Error("failed to read inbox file", "file", name, "err", err)
		return false
	}

	result, err := in.lib.Import(ctx, data)
	sendProgress(prog, importFileUpdate(name, result, err))

	dest := inboxImportedDir
	if err != nil {
		dest = inboxFailedDir
		in.logger.Warn("inbox import failed", "file", name, "err", err)
	} else {
		in.logger.Info("inbox import", "file", name, "imported", result.Imported, "skipped", result.Skipped)
	}

	if err := os.Rename(path, filepath.Join(in.dir, dest, name)); err != nil {
		in.logger.Error("failed to move inbox file", "file", name, "err", err)
	}
	return dest == inboxImportedDir
}

func isSongbookFile(name string) bool {
	base := filepath.Base(name)
	return strings.EqualFold(filepath.Ext(base), ".json") && !strings.HasPrefix(base, ".")
}
