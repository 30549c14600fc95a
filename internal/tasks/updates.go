package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadSongs Phase = iota
	ExportSong
	WatchInbox
	ImportFile
)

func (p Phase) String() string {
	switch p {
	case LoadSongs:
		return "load_songs"
	case ExportSong:
		return "export_song"
	case WatchInbox:
		return "watch_inbox"
	case ImportFile:
		return "import_file"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func loadSongsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSongs,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d song(s)", total),
	}
}

func exportCompletedUpdate(step, total int, title, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, title),
		Data:    path,
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func watchingUpdate(dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WatchInbox,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Watching %s for songbook files...", dir),
	}
}

func importFileUpdate(name string, result *ImportResult, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   ImportFile,
			Step:    1,
			Total:   1,
			Message: fmt.Sprintf("✗ %s: %v", name, err),
		}
	}
	return ProgressUpdate{
		Phase:   ImportFile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✓ %s: %s", name, result),
		Data:    result,
	}
}
