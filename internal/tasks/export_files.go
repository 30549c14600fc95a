package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// ExportFilesOpts contains configuration for exporting one file per song.
type ExportFilesOpts struct {
	Format     formatter.Format // text, markdown, html or json
	OutputDir  string           // Output directory (default: songbook_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max: 10)
}

// SongExportResult is the outcome for one song.
type SongExportResult struct {
	SongID  string `json:"id"`
	Title   string `json:"title"`
	File    string `json:"file,omitempty"`
	Success bool   `json:"success"`
	Error   error  `json:"-"`
	Message string `json:"error,omitempty"`
}

// ExportFilesResult summarizes a file export.
type ExportFilesResult struct {
	TotalSongs      int                `json:"total"`
	Succeeded       int                `json:"succeeded"`
	Failed          int                `json:"failed"`
	Format          formatter.Format   `json:"format"`
	OutputDirectory string             `json:"output_directory"`
	Results         []SongExportResult `json:"results"`
	ManifestPath    string             `json:"-"`
}

// ExportFiles renders every song to its own file using a worker pool.
//
// Individual failures are recorded and do not stop the export. A manifest summarizing
// the results is written to export_manifest.json in the output directory.
func (l *Library) ExportFiles(ctx context.Context, prog chan<- ProgressUpdate, opts ExportFilesOpts) (*ExportFilesResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatText
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("songbook_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	songs, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	sendProgress(prog, loadSongsUpdate(len(songs)))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportFilesResult{
		TotalSongs:      len(songs),
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		Results:         make([]SongExportResult, 0, len(songs)),
	}

	jobs := make(chan *models.Song, len(songs))
	results := make(chan SongExportResult, len(songs))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go l.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for _, song := range songs {
			select {
			case <-ctx.Done():
				return
			case jobs <- song:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Succeeded++
			sendProgress(prog, exportCompletedUpdate(completed, len(songs), res.Title, res.File))
		} else {
			result.Failed++
			sendProgress(prog, exportFailedUpdate(completed, len(songs), res.Title, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export cancelled after %d of %d song(s): %w", completed, len(songs), err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err == nil {
		err = os.WriteFile(manifestPath, data, 0644)
	}
	if err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	l.logger.Info("file export finished", "dir", opts.OutputDir, "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

// exportWorker renders songs from the jobs channel until it closes or ctx ends.
func (l *Library) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan *models.Song,
	results chan<- SongExportResult,
	opts ExportFilesOpts,
) {
	defer wg.Done()

	for song := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := SongExportResult{SongID: song.ID(), Title: song.Title()}
		path, err := formatter.WriteSongFile(song, opts.OutputDir, opts.Format, l.unknownArtist)
		if err != nil {
			res.Error = err
			res.Message = err.Error()
		} else {
			res.File = path
			res.Success = true
		}
		results <- res
	}
}
