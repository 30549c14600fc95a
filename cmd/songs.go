package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
)

// SongsList lists every song alphabetically by title.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.library(ctx)
	if err != nil {
		return err
	}

	songs, err := lib.List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records(songs), true)
	}
	if cmd.Bool("csv") {
		return r.writeCSV(lib, songs)
	}
	if len(songs) == 0 {
		return r.writePlain("No songs yet. Run 'songbook import <file>' or 'songbook setup database --seed'.\n")
	}
	r.writeSongs(lib, songs)
	return nil
}

// SongsSearch lists the songs whose title or artist contains the query.
func (r *Runner) SongsSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	lib, err := r.library(ctx)
	if err != nil {
		return err
	}

	songs, err := lib.Search(ctx, query)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records(songs), true)
	}
	if cmd.Bool("csv") {
		return r.writeCSV(lib, songs)
	}
	if len(songs) == 0 {
		return r.writePlain("No songs found matching %q\n", query)
	}
	r.writeSongs(lib, songs)
	return nil
}

// SongsShow renders one song in the requested format.
func (r *Runner) SongsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	lib, err := r.library(ctx)
	if err != nil {
		return err
	}

	out, err := lib.Render(ctx, id, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		return r.writePlain("\n")
	}
	return nil
}

// SongsAdd stores a new song.
func (r *Runner) SongsAdd(ctx context.Context, cmd *cli.Command) error {
	lyrics, err := r.lyricsFromFlags(cmd)
	if err != nil {
		return err
	}
	if lyrics == nil {
		return fmt.Errorf("%w: --lyrics or --lyrics-file", shared.ErrMissingArgument)
	}

	lib, err := r.library(ctx)
	if err != nil {
		return err
	}

	song, err := lib.Add(ctx, cmd.String("title"), cmd.String("artist"), *lyrics)
	if err != nil {
		return err
	}
	r.logger.Info("song added", "id", song.ID())
	return r.writePlain("✓ Added %q (%s)\n", song.Title(), song.ID())
}

// SongsEdit changes the fields given on the command line; the rest are kept.
func (r *Runner) SongsEdit(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	var patch tasks.SongPatch
	if cmd.IsSet("title") {
		title := cmd.String("title")
		patch.Title = &title
	}
	if cmd.IsSet("artist") {
		artist := cmd.String("artist")
		patch.Artist = &artist
	}
	lyrics, err := r.lyricsFromFlags(cmd)
	if err != nil {
		return err
	}
	patch.Lyrics = lyrics

	if patch.Title == nil && patch.Artist == nil && patch.Lyrics == nil {
		return fmt.Errorf("%w: nothing to change (use --title, --artist, --lyrics or --lyrics-file)", shared.ErrMissingArgument)
	}

	lib, err := r.library(ctx)
	if err != nil {
		return err
	}

	song, err := lib.Edit(ctx, id, patch)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated %q\n", song.Title())
}

// SongsDelete removes a song after confirmation.
func (r *Runner) SongsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	lib, err := r.library(ctx)
	if err != nil {
		return err
	}

	song, err := lib.Get(ctx, id)
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") && !r.confirm(fmt.Sprintf("Delete %q? [y/N] ", song.Title())) {
		return r.writePlain("Cancelled\n")
	}

	if err := lib.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %q\n", song.Title())
}

// lyricsFromFlags returns the lyrics given by --lyrics or --lyrics-file, or nil when neither is set.
func (r *Runner) lyricsFromFlags(cmd *cli.Command) (*string, error) {
	inline, file := cmd.IsSet("lyrics"), cmd.IsSet("lyrics-file")
	switch {
	case inline && file:
		return nil, fmt.Errorf("%w: cannot specify both --lyrics and --lyrics-file", shared.ErrInvalidArgument)
	case inline:
		lyrics := cmd.String("lyrics")
		return &lyrics, nil
	case file:
		data, err := r.readInput(cmd.String("lyrics-file"))
		if err != nil {
			return nil, err
		}
		lyrics := string(data)
		return &lyrics, nil
	default:
		return nil, nil
	}
}

// readInput reads a file, or the runner's input when path is "-".
func (r *Runner) readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(r.input)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// confirm asks a yes/no question on the runner's input. Anything but y/yes is a no.
func (r *Runner) confirm(prompt string) bool {
	r.writePlain("%s", prompt)
	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (r *Runner) writeSongs(lib *tasks.Library, songs []*models.Song) {
	for _, s := range songs {
		r.writePlain("%s - %s  [%s]\n", s.Title(), lib.ArtistLabel(s), s.ID())
	}
	r.writePlainln("%d song(s)", len(songs))
}

// writeCSV writes the listing as CSV. A header row is written even when songs is empty.
func (r *Runner) writeCSV(lib *tasks.Library, songs []*models.Song) error {
	data, err := formatter.ExportToCSV(songs, lib.UnknownArtist())
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func records(songs []*models.Song) []models.SongRecord {
	out := make([]models.SongRecord, 0, len(songs))
	for _, s := range songs {
		out = append(out, s.Record())
	}
	return out
}
