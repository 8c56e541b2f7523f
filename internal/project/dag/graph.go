package dag

import "slices"

type Graph struct {
	Edges [][]TemplateID // Edges[parent] = []child
	Indeg []int
}

// BuildGraph links every unit to its parents inside the batch. Units that
// share a name share a node.
func BuildGraph(idx Index, units []Unit) Graph {
	n := len(idx.IDToName)
	g := Graph{
		Edges: make([][]TemplateID, n),
		Indeg: make([]int, n),
	}
	for _, u := range units {
		child, ok := idx.NameToID[u.Name]
		if !ok {
			continue
		}
		for _, p := range u.Parents {
			parent, ok := idx.NameToID[p.Name]
			if !ok {
				continue
			}
			if slices.Contains(g.Edges[parent], child) {
				continue
			}
			g.Edges[parent] = append(g.Edges[parent], child)
			g.Indeg[child]++
		}
	}
	for i := range g.Edges {
		slices.Sort(g.Edges[i])
	}
	return g
}
