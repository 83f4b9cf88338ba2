package contextview

import (
	"strings"

	"earshot/internal/language"
)

// TranscriptRow is one line of the transcript table shown for an audio sample.
type TranscriptRow struct {
	Timestamp string `json:"timestamp"`
	Speaker   string `json:"speaker"`
	Content   string `json:"content"`
}

// TranscriptRows renders the utterances of audio in lang. Audio without a
// transcript yields an empty slice.
func TranscriptRows(audio Audio, lang language.Code) []TranscriptRow {
	rows := make([]TranscriptRow, 0, len(audio.Utterances))
	for _, utt := range audio.Utterances {
		rows = append(rows, TranscriptRow{
			Timestamp: formatSpan(utt.StartTime, utt.EndTime),
			Speaker:   utt.Speaker,
			Content:   utt.Text.Resolve(lang),
		})
	}
	return rows
}

func formatSpan(start, end string) string {
	return strings.TrimSpace(start) + " - " + strings.TrimSpace(end)
}
