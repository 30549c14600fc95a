// Package services implements clients for the external systems the songbook talks to.
//
// # Remote document store
//
// [DocumentService] keeps a user's whole songbook as one JSON document in a
// PostgREST-compatible table, keyed by username:
//
//	GET  {url}/rest/v1/{table}?select=state&username=eq.{user}
//	POST {url}/rest/v1/{table}?on_conflict=username   (Prefer: resolution=merge-duplicates)
//
// Requests carry the API key as the apikey header and as a bearer token supplied by an
// [oauth2.StaticTokenSource]. A missing row (an empty result or error code PGRST116) is an
// empty songbook, not an error.
//
// # Error Handling
//
//   - [shared.ErrMissingCredentials] : url, api key or username not configured
//   - [shared.ErrServiceUnavailable] : the store could not be reached
//   - [shared.ErrAPIRequest] : the store answered with a non-2xx status or an undecodable body
package services
