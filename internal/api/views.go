package api

import (
	"earshot/internal/contextview"
	"earshot/internal/language"
)

// BuildView projects payload and renders every transcript in lang.
func BuildView(id int64, payload contextview.Payload, lang language.Code) ContextView {
	projection := contextview.Project(payload)
	transcripts := make([]AudioTranscript, 0, len(projection.Audios))
	for _, audio := range projection.Audios {
		transcripts = append(transcripts, AudioTranscript{
			AudioID: audio.ID,
			Name:    audio.Name,
			Rows:    contextview.TranscriptRows(audio, lang),
		})
	}
	warnings := contextview.Inspect(payload)
	if warnings == nil {
		warnings = []contextview.Warning{}
	}
	return ContextView{
		ID:          id,
		Name:        payload.Name,
		Description: payload.Description,
		Language:    string(lang),
		Projection:  projection,
		Transcripts: transcripts,
		Warnings:    warnings,
	}
}
