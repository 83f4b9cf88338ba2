package ingest

import (
	"context"
	"strings"

	"earshot/internal/contextview"
)

// transcriptLines renders utterances as "Speaker: text" lines in source language.
func transcriptLines(utterances []contextview.Utterance) []string {
	lines := make([]string, len(utterances))
	for i, u := range utterances {
		lines[i] = u.Speaker + ": " + singleLine(u.Text.RU)
	}
	return lines
}

func singleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func fillEnglish(utterances []contextview.Utterance) {
	for i := range utterances {
		if strings.TrimSpace(utterances[i].Text.EN) == "" {
			utterances[i].Text.EN = utterances[i].Text.RU
		}
	}
}

// translate fills Text.EN from the translator output. It returns false
// without touching the utterances when the reply does not line up with the
// input.
func (p *Pipeline) translate(ctx context.Context, utterances []contextview.Utterance) (bool, error) {
	out, err := p.translator.Translate(ctx, strings.Join(transcriptLines(utterances), "\n"))
	if err != nil {
		return false, err
	}
	lines := nonEmptyLines(out)
	if len(lines) != len(utterances) {
		return false, nil
	}
	for i, line := range lines {
		if text := stripSpeaker(line, utterances[i].Speaker); text != "" {
			utterances[i].Text.EN = text
		}
	}
	return true, nil
}

func nonEmptyLines(text string) []string {
	var lines []string
	for line := range strings.SplitSeq(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// stripSpeaker removes the "Speaker:" prefix the model was asked to keep.
func stripSpeaker(line, speaker string) string {
	if rest, ok := strings.CutPrefix(line, speaker+":"); ok {
		return strings.TrimSpace(rest)
	}
	if _, rest, ok := strings.Cut(line, ":"); ok && len(line)-len(rest) <= len(speaker)+8 {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(line)
}

func distinctSpeakers(utterances []contextview.Utterance) []string {
	seen := make(map[string]struct{})
	var speakers []string
	for _, u := range utterances {
		name := strings.TrimSpace(u.Speaker)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		speakers = append(speakers, name)
	}
	return speakers
}

// transcriptText joins every transcript of a context for summarisation,
// preferring English text.
func transcriptText(audios []contextview.Audio) string {
	var b strings.Builder
	for _, audio := range audios {
		for _, u := range audio.Utterances {
			text := u.Text.EN
			if strings.TrimSpace(text) == "" {
				text = u.Text.RU
			}
			if text = singleLine(text); text == "" {
				continue
			}
			b.WriteString(u.Speaker)
			b.WriteString(": ")
			b.WriteString(text)
			b.WriteByte('\n')
		}
	}
	return strings.TrimSpace(b.String())
}
