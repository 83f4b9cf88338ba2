package whisperx

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"

	"earshot/internal/contextview"
	"earshot/internal/language"
)

// UnknownSpeaker labels segments WhisperX could not attribute.
const UnknownSpeaker = "Unknown speaker"

// Word represents a single word with timing from WhisperX output.
type Word struct {
	Word    string  `json:"word"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
	Words   []Word  `json:"words"`
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	return ParseSegments(data)
}

// ParseSegments decodes WhisperX JSON output.
func ParseSegments(data []byte) ([]Segment, error) {
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

// Utterances converts segments into transcript utterances. Transcribed text is
// stored under the Russian slot; translation fills English later. Segments
// without text are dropped. The result is never nil.
func Utterances(segments []Segment) []contextview.Utterance {
	out := make([]contextview.Utterance, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		out = append(out, contextview.Utterance{
			Speaker:   SpeakerLabel(segmentSpeaker(seg)),
			StartTime: FormatTimestamp(seg.Start),
			EndTime:   FormatTimestamp(seg.End),
			Text:      language.Bilingual{RU: text},
		})
	}
	return out
}

// segmentSpeaker falls back to the most frequent word-level speaker when the
// segment itself carries none.
func segmentSpeaker(seg Segment) string {
	if speaker := strings.TrimSpace(seg.Speaker); speaker != "" {
		return speaker
	}
	counts := make(map[string]int)
	best := ""
	for _, word := range seg.Words {
		speaker := strings.TrimSpace(word.Speaker)
		if speaker == "" {
			continue
		}
		counts[speaker]++
		if counts[speaker] > counts[best] {
			best = speaker
		}
	}
	return best
}

// SpeakerLabel turns diarization labels such as "SPEAKER_00" into the
// one-based "Speaker 1" form used in transcripts.
func SpeakerLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UnknownSpeaker
	}
	if rest, ok := strings.CutPrefix(strings.ToUpper(raw), "SPEAKER_"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 0 {
			return "Speaker " + strconv.Itoa(n+1)
		}
	}
	return cases.Title(xlang.Und).String(strings.ReplaceAll(raw, "_", " "))
}

// FormatTimestamp renders seconds as m:ss, or h:mm:ss from one hour on.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
