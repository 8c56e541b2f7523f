package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []TemplateID   // родители раньше детей
	Batches [][]TemplateID // волны независимых шаблонов
	Cyclic  bool
	// Cycles holds nodes that sit on a cycle or between two cycles;
	// descendants of a cycle are pruned.
	Cycles []TemplateID
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]TemplateID, 0, nodeCount),
		Batches: make([][]TemplateID, 0),
	}

	current := make([]TemplateID, 0, nodeCount)
	for i := range nodeCount {
		if indeg[i] == 0 {
			current = append(current, toID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		next := make([]TemplateID, 0)
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != nodeCount {
		topo.Cyclic = true
		topo.Cycles = pruneTails(g, indeg)
	}
	return topo
}

// pruneTails drops leftover nodes that cannot reach another leftover node:
// they are only downstream of a cycle.
func pruneTails(g Graph, indeg []int) []TemplateID {
	left := make([]bool, len(indeg))
	for i, d := range indeg {
		left[i] = d > 0
	}
	for changed := true; changed; {
		changed = false
		for i := range left {
			if !left[i] {
				continue
			}
			alive := false
			for _, to := range g.Edges[i] {
				if left[int(to)] {
					alive = true
					break
				}
			}
			if !alive {
				left[i] = false
				changed = true
			}
		}
	}
	var out []TemplateID
	for i, ok := range left {
		if ok {
			out = append(out, toID(i))
		}
	}
	return out
}

func toID(i int) TemplateID {
	id, err := safecast.Conv[TemplateID](i)
	if err != nil {
		panic(fmt.Errorf("template id overflow: %w", err))
	}
	return id
}
