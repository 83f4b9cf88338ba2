package contextview

import "fmt"

// Warning kinds reported by Inspect.
const (
	WarningDuplicateSpeakerName = "duplicate_speaker_name"
	WarningUnresolvedEdge       = "unresolved_edge"
)

// Warning describes a soft data problem that Project silently absorbs.
type Warning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Index   int    `json:"index"`
}

// Inspect reports the data problems Project tolerates: repeated speaker names
// (edge resolution picks the first) and hierarchy entries that name an
// unknown speaker.
func Inspect(p Payload) []Warning {
	var warnings []Warning

	seen := make(map[string]int, len(p.Speakers))
	for i, speaker := range p.Speakers {
		if first, ok := seen[speaker.Name]; ok {
			warnings = append(warnings, Warning{
				Kind:    WarningDuplicateSpeakerName,
				Index:   i,
				Message: fmt.Sprintf("speaker %q (id %s) repeats the name of speaker %d; edges resolve to the first", speaker.Name, speaker.ID, first),
			})
			continue
		}
		seen[speaker.Name] = i
	}

	for i, entry := range p.Hierarchy {
		var missing []string
		if _, ok := seen[entry.ParentName]; !ok {
			missing = append(missing, entry.ParentName)
		}
		if _, ok := seen[entry.ChildName]; !ok {
			missing = append(missing, entry.ChildName)
		}
		if len(missing) == 0 {
			continue
		}
		warnings = append(warnings, Warning{
			Kind:    WarningUnresolvedEdge,
			Index:   i,
			Message: fmt.Sprintf("hierarchy entry %q -> %q names unknown speaker(s) %q", entry.ParentName, entry.ChildName, missing),
		})
	}
	return warnings
}
