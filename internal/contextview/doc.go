// Package contextview projects a context payload into the view models the
// review front-end renders: a codeword table, a speaker graph, and the audio
// list with per-language transcript rows.
//
// Project is a pure function. It never fails: speakers that cannot be resolved
// drop their hierarchy edges and malformed codeword lists decode as empty.
// Callers that want to surface those soft failures run Inspect alongside it
// and log the warnings themselves.
//
// The package also owns the JSON shape the backend serves for a single
// context, so the server, the HTTP client, and the tests agree on one decoder.
package contextview
