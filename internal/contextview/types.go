package contextview

import "earshot/internal/language"

// Codeword is a domain term and its decoded meaning.
type Codeword struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// Speaker is a participant identified in a context.
type Speaker struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HierarchyEntry links two speakers by name.
type HierarchyEntry struct {
	ParentName string `json:"parent_name"`
	ChildName  string `json:"child_name"`
}

// Utterance is a single transcribed speech segment. Text keeps both languages
// until display time.
type Utterance struct {
	Speaker   string             `json:"speaker"`
	StartTime string             `json:"start_time"`
	EndTime   string             `json:"end_time"`
	Text      language.Bilingual `json:"text"`
}

// Audio is an uploaded sample. A nil Utterances slice means no transcript is
// available yet.
type Audio struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Utterances  []Utterance `json:"utterances,omitempty"`
}

// Payload is the immutable input to Project.
type Payload struct {
	Name         string
	Description  string
	Codewords    []Codeword
	Speakers     []Speaker
	Hierarchy    []HierarchyEntry
	AudioSamples []Audio
}

// GraphNode is a speaker rendered in the hierarchy graph.
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// GraphEdge is a directed parent -> child link between two nodes.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// CodewordRow is one row of the codeword table.
type CodewordRow struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// Projection bundles the three independent view models derived from a Payload.
type Projection struct {
	Nodes        []GraphNode   `json:"nodes"`
	Edges        []GraphEdge   `json:"edges"`
	CodewordRows []CodewordRow `json:"codeword_rows"`
	Audios       []Audio       `json:"audios"`
}
