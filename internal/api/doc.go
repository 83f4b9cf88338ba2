// Package api defines the wire-format types shared by the HTTP server and the
// client, plus ContextService, which turns store records into those types.
//
// # Key Types
//
// ContextSummary: list entry {id, name, date, desc}.
//
// ContextView: a projected context for one display language: codeword rows,
// speaker graph, audio list, rendered transcripts and Inspect warnings.
//
// UploadResponse: the stored audio sample and any degraded ingest steps.
//
// The full context document served by GET /{id} is contextview.Payload, whose
// JSON form already matches the wire shape.
package api
