package contextview

import (
	"strings"
	"testing"

	"earshot/internal/language"
)

func TestInspectReportsDuplicateNamesAndUnresolvedEdges(t *testing.T) {
	payload := Payload{
		Speakers: []Speaker{{ID: "1", Name: "A"}, {ID: "2", Name: "A"}, {ID: "3", Name: "B"}},
		Hierarchy: []HierarchyEntry{
			{ParentName: "A", ChildName: "B"},
			{ParentName: "A", ChildName: "C"},
		},
	}
	warnings := Inspect(payload)
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %+v", warnings)
	}
	if warnings[0].Kind != WarningDuplicateSpeakerName || warnings[0].Index != 1 {
		t.Fatalf("unexpected first warning %+v", warnings[0])
	}
	if warnings[1].Kind != WarningUnresolvedEdge || warnings[1].Index != 1 {
		t.Fatalf("unexpected second warning %+v", warnings[1])
	}
	if !strings.Contains(warnings[1].Message, `"C"`) {
		t.Fatalf("expected unresolved name in message, got %q", warnings[1].Message)
	}
}

func TestInspectCleanPayload(t *testing.T) {
	payload := Payload{
		Speakers:  []Speaker{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}},
		Hierarchy: []HierarchyEntry{{ParentName: "A", ChildName: "B"}},
	}
	if warnings := Inspect(payload); len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", warnings)
	}
}

func TestTranscriptRowsResolveLanguage(t *testing.T) {
	audio := Audio{Utterances: []Utterance{
		{Speaker: "A", StartTime: "0:00", EndTime: "0:07", Text: language.Bilingual{EN: "Hold position", RU: "Держать позицию"}},
		{Speaker: "B", StartTime: "0:07", EndTime: "0:09", Text: language.Bilingual{EN: "Copy", RU: "Принял"}},
	}}

	en := TranscriptRows(audio, language.English)
	if len(en) != 2 || en[0].Content != "Hold position" || en[0].Timestamp != "0:00 - 0:07" || en[1].Speaker != "B" {
		t.Fatalf("unexpected english rows %+v", en)
	}
	ru := TranscriptRows(audio, language.Russian)
	if ru[1].Content != "Принял" {
		t.Fatalf("unexpected russian rows %+v", ru)
	}
}

func TestTranscriptRowsWithoutUtterances(t *testing.T) {
	rows := TranscriptRows(Audio{Name: "pending"}, language.English)
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty rows, got %#v", rows)
	}
}
