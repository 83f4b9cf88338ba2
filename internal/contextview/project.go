package contextview

// Project derives the graph, codeword table, and audio list from p.
//
// Hierarchy entries resolve their endpoints by speaker name; the first speaker
// carrying a name wins when names repeat. Entries with an unknown endpoint are
// dropped. Output slices are never nil.
func Project(p Payload) Projection {
	nodes := make([]GraphNode, 0, len(p.Speakers))
	for _, speaker := range p.Speakers {
		nodes = append(nodes, GraphNode{ID: speaker.ID, Label: speaker.Name})
	}

	byLabel := indexByLabel(nodes)
	edges := make([]GraphEdge, 0, len(p.Hierarchy))
	for _, entry := range p.Hierarchy {
		parent, ok := byLabel[entry.ParentName]
		if !ok {
			continue
		}
		child, ok := byLabel[entry.ChildName]
		if !ok {
			continue
		}
		edges = append(edges, GraphEdge{Source: parent.ID, Target: child.ID})
	}

	rows := make([]CodewordRow, 0, len(p.Codewords))
	for _, cw := range p.Codewords {
		rows = append(rows, CodewordRow{Word: cw.Word, Meaning: cw.Meaning})
	}

	audios := p.AudioSamples
	if audios == nil {
		audios = []Audio{}
	}

	return Projection{
		Nodes:        nodes,
		Edges:        edges,
		CodewordRows: rows,
		Audios:       audios,
	}
}

func indexByLabel(nodes []GraphNode) map[string]GraphNode {
	index := make(map[string]GraphNode, len(nodes))
	for _, node := range nodes {
		if _, exists := index[node.Label]; exists {
			continue
		}
		index[node.Label] = node
	}
	return index
}
