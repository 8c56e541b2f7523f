package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"weave/internal/ast"
	"weave/internal/source"
)

// CheckSpanInvariants verifies that every positioned node of root:
// 1) points into sf
// 2) has start <= end, both within the content bounds
// Nodes with an empty span at offset 0 count as unpositioned.
func CheckSpanInvariants(root *ast.Node, sf *source.File) error {
	if root == nil || sf == nil {
		return fmt.Errorf("nil root or file")
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	var bad error
	ast.Walk(root, func(n *ast.Node) bool {
		if bad != nil {
			return false
		}
		sp := n.Span
		if sp.Start == 0 && sp.End == 0 {
			return true
		}
		switch {
		case sp.File != sf.ID:
			bad = fmt.Errorf("%s span file mismatch: got=%d want=%d", n.Kind, sp.File, sf.ID)
		case sp.End < sp.Start:
			bad = fmt.Errorf("%s span is inverted: %v", n.Kind, sp)
		case sp.End > size:
			bad = fmt.Errorf("%s span end beyond content: %d > %d", n.Kind, sp.End, size)
		}
		return bad == nil
	})
	return bad
}

// CheckTree verifies that a compiled program is a proper tree of output
// nodes: no node is reachable twice and no template construct is left.
func CheckTree(program *ast.Node) error {
	if program == nil {
		return fmt.Errorf("nil program")
	}
	seen := make(map[*ast.Node]bool)
	var bad error
	ast.Walk(program, func(n *ast.Node) bool {
		if bad != nil {
			return false
		}
		if seen[n] {
			bad = fmt.Errorf("%s is shared between two parents", n)
			return false
		}
		seen[n] = true
		if ast.IsTemplateOnly(n.Kind) {
			bad = fmt.Errorf("%s survived lowering", n.Kind)
		}
		return bad == nil
	})
	return bad
}
