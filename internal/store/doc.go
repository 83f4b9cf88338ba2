// Package store persists contexts and everything attached to them (speakers,
// hierarchy, codewords, audio samples and their utterances) in SQLite.
//
// The database runs in WAL mode with foreign keys enabled. Writes retry on
// SQLITE_BUSY with a short exponential backoff so the API server and ingest
// jobs can share the file. The schema is embedded and versioned; a database
// created by a different schema version is rejected at Open rather than
// migrated in place.
//
// GetContext returns a contextview.Payload so callers can project it directly.
package store
