// Package repositories implements persistence for songs.
//
// Two backends implement [models.SongRepository]:
//   - [SongRepository] : SQLite (local backend) with soft deletes via deleted_at timestamps
//   - [DocumentRepository] : the whole songbook as one remote document (remote backend), load-modify-save
//
// [Open] picks one from the configuration.
//
// Sequence numbers provide stable insertion order independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
