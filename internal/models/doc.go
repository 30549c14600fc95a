// Package models defines domain entities and persistence interfaces for the songbook.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): plain structs used on the wire
//   - [SongRecord] : one song as it appears in import/export files and the remote document
//   - [Songbook] : the {"songs": [...]} envelope shared by export files and the remote store
//
// 2. Persistent Entities: models with lifecycle management
//   - [Song] : a title, optional artist and chord-annotated lyrics
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations implemented by each storage backend.
package models
