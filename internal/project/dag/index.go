package dag

import (
	"sort"

	"weave/internal/source"
)

type TemplateID uint32

// Edge points from a template to the parent it extends or embeds.
type Edge struct {
	Name string
	Span source.Span
}

// Unit is one compiled document seen as a graph node.
type Unit struct {
	Name    string
	Parents []Edge
}

type Index struct {
	NameToID map[string]TemplateID
	IDToName []string
}

// собрать уникальные имена документов, sort.Strings, раздать ID по порядку.
// Родители вне батча в индекс не попадают: их резолвит рантайм.
func BuildIndex(units []Unit) Index {
	uniq := make(map[string]struct{}, len(units))
	for _, u := range units {
		if u.Name != "" {
			uniq[u.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]TemplateID, len(names))
	for i, name := range names {
		nameToID[name] = TemplateID(i)
	}
	return Index{NameToID: nameToID, IDToName: names}
}
