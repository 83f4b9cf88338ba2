package contextview

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProjectResolvesHierarchyAndDropsUnknownSpeakers(t *testing.T) {
	payload := Payload{
		Speakers: []Speaker{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}},
		Hierarchy: []HierarchyEntry{
			{ParentName: "A", ChildName: "B"},
			{ParentName: "A", ChildName: "C"},
		},
	}

	got := Project(payload)

	wantNodes := []GraphNode{{ID: "1", Label: "A"}, {ID: "2", Label: "B"}}
	if diff := cmp.Diff(wantNodes, got.Nodes); diff != "" {
		t.Fatalf("nodes mismatch (-want +got):\n%s", diff)
	}
	wantEdges := []GraphEdge{{Source: "1", Target: "2"}}
	if diff := cmp.Diff(wantEdges, got.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectNodesFollowSpeakerOrder(t *testing.T) {
	speakers := []Speaker{
		{ID: "z", Name: "Zulu"},
		{ID: "a", Name: "Alpha"},
		{ID: "m", Name: "Mike", Description: "radio operator"},
	}
	got := Project(Payload{Speakers: speakers})
	if len(got.Nodes) != len(speakers) {
		t.Fatalf("expected %d nodes, got %d", len(speakers), len(got.Nodes))
	}
	for i, speaker := range speakers {
		if got.Nodes[i].ID != speaker.ID {
			t.Fatalf("node %d: id = %q, want %q", i, got.Nodes[i].ID, speaker.ID)
		}
		if got.Nodes[i].Label != speaker.Name {
			t.Fatalf("node %d: label = %q, want %q", i, got.Nodes[i].Label, speaker.Name)
		}
	}
}

func TestProjectDuplicateLabelsFirstMatchWins(t *testing.T) {
	payload := Payload{
		Speakers: []Speaker{
			{ID: "1", Name: "Boss"},
			{ID: "2", Name: "Boss"},
			{ID: "3", Name: "Runner"},
		},
		Hierarchy: []HierarchyEntry{
			{ParentName: "Boss", ChildName: "Runner"},
			{ParentName: "Runner", ChildName: "Boss"},
		},
	}
	got := Project(payload)
	want := []GraphEdge{{Source: "1", Target: "3"}, {Source: "3", Target: "1"}}
	if diff := cmp.Diff(want, got.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectPreservesSurvivingEdgeOrder(t *testing.T) {
	payload := Payload{
		Speakers: []Speaker{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}, {ID: "3", Name: "C"}},
		Hierarchy: []HierarchyEntry{
			{ParentName: "C", ChildName: "A"},
			{ParentName: "X", ChildName: "A"},
			{ParentName: "A", ChildName: "B"},
			{ParentName: "B", ChildName: "Y"},
			{ParentName: "B", ChildName: "C"},
		},
	}
	got := Project(payload)
	want := []GraphEdge{
		{Source: "3", Target: "1"},
		{Source: "1", Target: "2"},
		{Source: "2", Target: "3"},
	}
	if diff := cmp.Diff(want, got.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectEdgesNeverReferenceUnknownNodes(t *testing.T) {
	payload := Payload{
		Speakers: []Speaker{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}},
		Hierarchy: []HierarchyEntry{
			{ParentName: "", ChildName: "A"},
			{ParentName: "a", ChildName: "B"},
			{ParentName: "B", ChildName: "B"},
			{ParentName: "Q", ChildName: "R"},
		},
	}
	got := Project(payload)
	ids := map[string]bool{}
	for _, node := range got.Nodes {
		ids[node.ID] = true
	}
	for _, edge := range got.Edges {
		if !ids[edge.Source] || !ids[edge.Target] {
			t.Fatalf("edge %+v references an unknown node", edge)
		}
	}
	if len(got.Edges) != 1 {
		t.Fatalf("expected only the self-edge to survive, got %+v", got.Edges)
	}
}

func TestProjectCodewordRows(t *testing.T) {
	got := Project(Payload{Codewords: []Codeword{{Word: "foo", Meaning: "bar"}}})
	want := []CodewordRow{{Word: "foo", Meaning: "bar"}}
	if diff := cmp.Diff(want, got.CodewordRows); diff != "" {
		t.Fatalf("codeword rows mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectEmptyPayloadYieldsEmptySlices(t *testing.T) {
	got := Project(Payload{})
	if got.Nodes == nil || got.Edges == nil || got.CodewordRows == nil || got.Audios == nil {
		t.Fatalf("expected non-nil empty slices, got %+v", got)
	}
	if len(got.Nodes)+len(got.Edges)+len(got.CodewordRows)+len(got.Audios) != 0 {
		t.Fatalf("expected empty projection, got %+v", got)
	}
}

func TestProjectPassesAudiosThrough(t *testing.T) {
	audios := []Audio{
		{ID: 0, Name: "Audio 1", Description: "first"},
		{ID: 1, Name: "Audio 2", Utterances: []Utterance{{Speaker: "A", StartTime: "0:00", EndTime: "0:04"}}},
	}
	snapshot := cloneAudios(audios)

	got := Project(Payload{AudioSamples: audios})

	if diff := cmp.Diff(audios, got.Audios); diff != "" {
		t.Fatalf("audios mismatch (-want +got):\n%s", diff)
	}
	if &got.Audios[0] != &audios[0] {
		t.Fatal("expected audios to share the input backing array")
	}
	if diff := cmp.Diff(snapshot, audios); diff != "" {
		t.Fatalf("input audios mutated (-before +after):\n%s", diff)
	}
}

func TestProjectIsDeterministic(t *testing.T) {
	payload := Payload{
		Speakers:  []Speaker{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}, {ID: "3", Name: "A"}},
		Hierarchy: []HierarchyEntry{{ParentName: "A", ChildName: "B"}, {ParentName: "B", ChildName: "A"}},
		Codewords: []Codeword{{Word: "tea", Meaning: "ammunition"}},
	}
	first := Project(payload)
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(first, Project(payload)); diff != "" {
			t.Fatalf("run %d differs (-first +got):\n%s", i, diff)
		}
	}
}

func cloneAudios(in []Audio) []Audio {
	out := make([]Audio, len(in))
	for i, audio := range in {
		out[i] = audio
		if audio.Utterances != nil {
			out[i].Utterances = append([]Utterance(nil), audio.Utterances...)
		}
	}
	return out
}
