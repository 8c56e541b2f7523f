package dag

// CycleEdge is a parent link that closes an inheritance cycle.
type CycleEdge struct {
	Unit int
	Edge Edge
}

// CycleEdges lists, per unit, the parent links between nodes of t.Cycles.
func CycleEdges(idx Index, units []Unit, t *Topo) []CycleEdge {
	if t == nil || !t.Cyclic {
		return nil
	}
	in := make(map[TemplateID]bool, len(t.Cycles))
	for _, id := range t.Cycles {
		in[id] = true
	}
	var out []CycleEdge
	for i, u := range units {
		id, ok := idx.NameToID[u.Name]
		if !ok || !in[id] {
			continue
		}
		for _, p := range u.Parents {
			if pid, ok := idx.NameToID[p.Name]; ok && in[pid] {
				out = append(out, CycleEdge{Unit: i, Edge: p})
			}
		}
	}
	return out
}

// Check builds the graph for units and reports the links closing a cycle.
func Check(units []Unit) []CycleEdge {
	idx := BuildIndex(units)
	return CycleEdges(idx, units, ToposortKahn(BuildGraph(idx, units)))
}
