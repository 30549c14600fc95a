package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
)

// Import merges a songbook file into the library. Songs whose ID already exists are skipped.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: songbook file path (or - for stdin)", shared.ErrMissingArgument)
	}

	data, err := r.readInput(path)
	if err != nil {
		return err
	}

	lib, err := r.library(ctx)
	if err != nil {
		return err
	}

	result, err := lib.Import(ctx, data)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	r.logger.Info("import complete", "imported", result.Imported, "skipped", result.Skipped)
	r.writePlain("%s\n", result)
	if result.Skipped > 0 {
		r.writePlain("Skipped %d song(s) already in the songbook\n", result.Skipped)
	}
	return nil
}

// Export writes the whole songbook as JSON. The default file name carries today's date.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.library(ctx)
	if err != nil {
		return err
	}

	data, filename, err := lib.Export(ctx, cmd.Bool("pretty"))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "-" {
		if _, err := r.output.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if output == "" {
		output = filename
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	r.logger.Info("songbook exported", "path", output, "bytes", len(data))
	return r.writePlain("✓ Exported songbook to %s\n", output)
}

// ExportFiles writes one file per song with a worker pool, reporting progress as it goes.
func (r *Runner) ExportFiles(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	lib, err := r.library(ctx)
	if err != nil {
		return err
	}

	opts := tasks.ExportFilesOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
	}
	asJSON := cmd.Bool("json")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.LoadSongs:
				r.logger.Info(update.Message)
			case tasks.ExportSong:
				if !asJSON {
					r.writePlain("   %s\n", update.Message)
				}
			}
		}
	}()

	result, err := lib.ExportFiles(ctx, progressCh, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(result, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Format: %s\n", result.Format)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.Succeeded, result.TotalSongs)
	if result.Failed > 0 {
		r.writePlain("\nFailed to export %d song(s):\n", result.Failed)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %s\n", res.Title, res.Message)
			}
		}
	}
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	return nil
}
