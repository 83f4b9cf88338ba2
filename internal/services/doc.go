// Package services defines shared utilities consumed by the ingest pipeline,
// the API server and the external integrations.
//
// Structured error markers plus the Wrap helper give every failure a
// consistent classification, which the API maps onto HTTP status codes via
// HTTPStatus. Integrations live in subpackages (llm, whisperx).
package services
