// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles one-time setup of the local database or the remote store.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create the config file if needed, initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "seed",
						Usage: "Load the bundled sample songs when the library is empty",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "remote",
				Usage: "Store songs in a remote document store (verifies the connection first)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "url",
						Usage:    "Base URL of the document store",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "key",
						Usage:    "API key",
						Sources:  cli.EnvVars("SONGBOOK_API_KEY"),
						Required: true,
					},
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Username that owns the songbook document",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "table",
						Usage: "Table holding songbook documents",
						Value: "songbooks",
					},
				},
				Action: r.SetupRemote,
			},
		},
	}
}

// songsCommand handles browsing and editing songs.
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "songs",
		Aliases: []string{"song", "s"},
		Usage:   "List, search, show and edit songs",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List songs alphabetically by title",
				Flags:   []cli.Flag{jsonFlag(), csvFlag()},
				Action:  r.SongsList,
			},
			{
				Name:      "search",
				Usage:     "Search songs by title or artist (case-insensitive)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     []cli.Flag{jsonFlag(), csvFlag()},
				Action:    r.SongsSearch,
			},
			{
				Name:      "show",
				Usage:     "Render a song with its chords",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, markdown, html, json)",
						Value:   "text",
					},
				},
				Action: r.SongsShow,
			},
			{
				Name:  "add",
				Usage: "Add a song",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Song title", Required: true},
					&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist"},
					&cli.StringFlag{Name: "lyrics", Aliases: []string{"l"}, Usage: "Lyrics with [chord] annotations"},
					&cli.StringFlag{Name: "lyrics-file", Usage: "Read lyrics from a file (- for stdin)"},
				},
				Action: r.SongsAdd,
			},
			{
				Name:      "edit",
				Usage:     "Change a song's title, artist or lyrics",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
					&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "New artist (empty clears it)"},
					&cli.StringFlag{Name: "lyrics", Aliases: []string{"l"}, Usage: "New lyrics"},
					&cli.StringFlag{Name: "lyrics-file", Usage: "Read new lyrics from a file (- for stdin)"},
				},
				Action: r.SongsEdit,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a song",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
				Action: r.SongsDelete,
			},
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func csvFlag() cli.Flag {
	return &cli.BoolFlag{Name: "csv", Usage: "Output a CSV listing (id, title, artist, chords, lines, dates)"}
}

// importCommand merges a songbook file into the library.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import songs from a songbook JSON file (- for stdin)",
		Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
		Action:    r.Import,
	}
}

// exportCommand writes the library to a songbook file or to one file per song.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the songbook as JSON (songbook-export-YYYY-MM-DD.json)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path, or - for stdout",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Export,
		Commands: []*cli.Command{
			{
				Name:  "files",
				Usage: "Export one file per song using concurrent workers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory (default: songbook_export_{timestamp})",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "File format (text, markdown, html, json)",
						Value:   "text",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent workers (max 10)",
						Value: 4,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the result summary as JSON",
					},
				},
				Action: r.ExportFiles,
			},
		},
	}
}

// serveCommand runs the web UI and JSON API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the web UI and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Interface to listen on (default from [server] host)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port to listen on (default from [server] port)"},
			&cli.BoolFlag{Name: "open", Usage: "Open the web UI in the default browser"},
			&cli.StringFlag{Name: "watch", Usage: "Import songbook files dropped into this directory"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive song management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Action:  r.TUI,
	}
}
