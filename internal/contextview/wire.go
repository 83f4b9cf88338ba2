package contextview

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// wirePayload mirrors the JSON the backend serves for GET /{id}.
type wirePayload struct {
	Context      wireContext      `json:"context"`
	Hierarchy    []HierarchyEntry `json:"hierarchy"`
	Speakers     []Speaker        `json:"speakers"`
	AudioSamples []Audio          `json:"audio_samples"`
}

type wireContext struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Codewords   json.RawMessage `json:"codewords"`
}

// MarshalJSON encodes p in the backend wire shape.
func (p Payload) MarshalJSON() ([]byte, error) {
	codewords := p.Codewords
	if codewords == nil {
		codewords = []Codeword{}
	}
	raw, err := json.Marshal(codewords)
	if err != nil {
		return nil, fmt.Errorf("encode codewords: %w", err)
	}
	return json.Marshal(wirePayload{
		Context: wireContext{
			Name:        p.Name,
			Description: p.Description,
			Codewords:   raw,
		},
		Hierarchy:    nonNil(p.Hierarchy),
		Speakers:     nonNil(p.Speakers),
		AudioSamples: nonNil(p.AudioSamples),
	})
}

// UnmarshalJSON decodes the backend wire shape. A codewords field that is
// missing, null, or not an array decodes as an empty list; array elements that
// are not objects are skipped.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var wire wirePayload
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*p = Payload{
		Name:         wire.Context.Name,
		Description:  wire.Context.Description,
		Codewords:    decodeCodewords(wire.Context.Codewords),
		Speakers:     wire.Speakers,
		Hierarchy:    wire.Hierarchy,
		AudioSamples: wire.AudioSamples,
	}
	return nil
}

// DecodePayload parses a backend context document.
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("decode context payload: %w", err)
	}
	return p, nil
}

func decodeCodewords(raw json.RawMessage) []Codeword {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil
	}
	out := make([]Codeword, 0, len(elements))
	for _, element := range elements {
		element = bytes.TrimSpace(element)
		if len(element) == 0 || element[0] != '{' {
			continue
		}
		var cw Codeword
		if err := json.Unmarshal(element, &cw); err != nil {
			continue
		}
		out = append(out, cw)
	}
	return out
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
