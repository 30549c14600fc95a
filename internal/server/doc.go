// Package server holds the HTTP plumbing for `songbook serve`.
//
// [BasicRouter] wraps [http.ServeMux] with a middleware stack. Handlers implement
// [Handler] and declare their "METHOD /path" patterns through Routes, so the router
// can register them in one call.
//
// # Routes
//
//	GET    /api/songs[?q=]           list or search songs
//	POST   /api/songs                create a song
//	GET    /api/songs/{id}           fetch a song
//	PUT    /api/songs/{id}           edit a song (absent fields are kept)
//	DELETE /api/songs/{id}           delete a song
//	GET    /api/songs/{id}/document  formatted lyrics as JSON
//	POST   /api/import               merge a songbook
//	GET    /api/export               download the songbook as an attachment
//	GET    /ws                       change events over a websocket
//
// Errors are written as {"error": "..."}. Validation failures map to 400,
// missing songs to 404, duplicates to 409 and anything else to 500.
package server
