// Package daemon runs the earshot backend: the SQLite store, the ingest
// pipeline and the HTTP API, under a single flock-guarded lifecycle so only
// one server owns a data directory at a time.
//
// Routes (gorilla/mux):
//
//	GET  /                 context list (offset, limit <= 100)
//	POST /create-context   {name, description?}
//	GET  /{id}             full context document
//	GET  /{id}/view        projected context (?lang=en|ru)
//	PUT  /upload           multipart context_id + audio_sample
//	GET  /healthz          liveness and row counts
//
// Every route except /healthz requires "Authorization: Bearer <token>" when
// api.token is set. Errors are JSON objects {"error": "..."} with a status
// derived from the error marker (see services.HTTPStatus).
package daemon
