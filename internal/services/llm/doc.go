// Package llm provides an OpenAI-compatible chat client used to translate
// Russian transcripts to English and to summarise a context's transcripts.
//
// The default endpoint is the Hugging Face inference router; any
// chat/completions endpoint accepting a bearer token works.
//
// # Entry Points
//
// NewClient: construct client from Config (FromConfig adapts config.LLMConfig).
// Client.Translate: Russian to English, one "Speaker X: text" line per input line.
// Client.Summarize: at most six sentences of plain text.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s, up to 4 attempts by
// default). Retry-After is honoured up to the max delay. Context cancellation
// aborts retries immediately.
//
// Callers treat failures as soft: the ingest pipeline keeps the Russian text
// and the previous description when the LLM is unavailable.
package llm
