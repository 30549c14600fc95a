// Package tasks implements songbook operations over a storage backend with progress reporting.
//
// # Library
//
// [Library] wraps a [models.SongRepository] (local SQLite or remote document) and provides:
//
//  1. CRUD: [Library.Add], [Library.Edit], [Library.Delete], [Library.Get]
//  2. Listing: [Library.List] and [Library.Search], sorted by title with locale-aware collation
//  3. Rendering: [Library.Document] and [Library.Render] through the chords formatter
//  4. Transfer: [Library.Import] (all-or-nothing validation, merge by ID),
//     [Library.Export] (dated songbook-export-YYYY-MM-DD.json) and [Library.Seed] (bundled sample songs)
//
// Mutations publish a [ChangeEvent] to subscribers registered with [Library.Subscribe];
// the web server forwards them to websocket clients.
//
// # Bulk Export
//
// [Library.ExportFiles] renders one file per song with a bounded worker pool and writes a manifest.
//
// # Inbox
//
// [Inbox] watches a directory with fsnotify and imports songbook files dropped into it.
//
// # Progress Reporting
//
// Long-running operations send [ProgressUpdate] values on an optional channel.
// Updates use select with default to prevent blocking.
package tasks
