// Package session holds the review state for one context: the latest payload,
// its projection, and the display language used to render transcripts.
//
// Every Refresh fetches the whole context and recomputes the projection from
// scratch. When refreshes overlap, the response to the most recently issued
// request wins; an older response arriving late is discarded.
package session
