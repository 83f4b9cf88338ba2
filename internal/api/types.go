package api

import (
	"earshot/internal/contextview"
	"earshot/internal/ingest"
	"earshot/internal/store"
)

// ContextSummary is one entry of the context list.
type ContextSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
	Desc string `json:"desc"`
}

// CreateContextRequest is the body of POST /create-context.
type CreateContextRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AddSpeakerRequest is the body of POST /{id}/speakers.
type AddSpeakerRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AudioTranscript holds the rendered transcript rows for one audio sample.
type AudioTranscript struct {
	AudioID int                         `json:"audio_id"`
	Name    string                      `json:"name"`
	Rows    []contextview.TranscriptRow `json:"rows"`
}

// ContextView is a projected context rendered for one display language.
type ContextView struct {
	ID          int64                  `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Language    string                 `json:"language"`
	Projection  contextview.Projection `json:"projection"`
	Transcripts []AudioTranscript      `json:"transcripts"`
	Warnings    []contextview.Warning  `json:"warnings"`
}

// UploadResponse reports the result of PUT /upload.
type UploadResponse struct {
	Audio       *store.AudioSample `json:"audio"`
	Utterances  int                `json:"utterances"`
	NewSpeakers []string           `json:"new_speakers"`
	Translated  bool               `json:"translated"`
	Summarized  bool               `json:"summarized"`
	Warnings    []ingest.Warning   `json:"warnings"`
}

// HealthResponse is served by GET /healthz.
type HealthResponse struct {
	Status        string      `json:"status"`
	Database      string      `json:"database"`
	Stats         store.Stats `json:"stats"`
	Transcription bool        `json:"transcription"`
	LLM           bool        `json:"llm"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromContext converts a stored context into its list entry.
func FromContext(item store.Context) ContextSummary {
	summary := item.Summary()
	return ContextSummary{ID: summary.ID, Name: summary.Name, Date: summary.Date, Desc: summary.Desc}
}

// FromContexts converts a page of contexts. The result is never nil.
func FromContexts(items []store.Context) []ContextSummary {
	out := make([]ContextSummary, 0, len(items))
	for _, item := range items {
		out = append(out, FromContext(item))
	}
	return out
}

// FromIngestResult converts a pipeline result into the upload response.
func FromIngestResult(result *ingest.Result) UploadResponse {
	if result == nil {
		return UploadResponse{NewSpeakers: []string{}, Warnings: []ingest.Warning{}}
	}
	return UploadResponse{
		Audio:       result.Audio,
		Utterances:  result.Utterances,
		NewSpeakers: result.NewSpeakers,
		Translated:  result.Translated,
		Summarized:  result.Summarized,
		Warnings:    result.Warnings,
	}
}
