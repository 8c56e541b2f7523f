package driver

import (
	"fmt"
	"path"
	"strings"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/project/dag"
)

// inheritance collects the static extends/embed parents of d. Documents
// without a `file:` name take no part in the cycle check.
func inheritance(d *document) dag.Unit {
	if d.err != nil || d.doc == nil || d.doc.File == "" {
		return dag.Unit{}
	}
	u := dag.Unit{Name: path.Clean(d.doc.File)}
	add := func(src *ast.Node) {
		if src == nil || src.Kind != ast.KindStringLiteral || src.Value == "" {
			return
		}
		u.Parents = append(u.Parents, dag.Edge{Name: resolveTemplate(u.Name, src.Value), Span: src.Span})
	}
	ast.Walk(d.doc.Root, func(n *ast.Node) bool {
		switch n.Kind {
		case ast.KindTemplate:
			add(n.Child(ast.FieldParent))
		case ast.KindEmbed:
			add(n.Child(ast.FieldSource))
		}
		return true
	})
	return u
}

// resolveTemplate makes ./ and ../ sources relative to the including file.
func resolveTemplate(from, src string) string {
	if strings.HasPrefix(src, "./") || strings.HasPrefix(src, "../") {
		return path.Join(path.Dir(from), src)
	}
	return path.Clean(src)
}

// reportCycles fails every document whose parent link closes a cycle.
func reportCycles(units []dag.Unit, results []Result) {
	for _, e := range dag.Check(units) {
		res := &results[e.Unit]
		if res.Bag == nil {
			continue
		}
		res.Bag.Add(diag.NewError(diag.TplInheritanceCycle, e.Edge.Span,
			fmt.Sprintf("%s extends %s, which leads back to it", units[e.Unit].Name, e.Edge.Name)))
		res.Program = nil
	}
}
