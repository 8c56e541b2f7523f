package traverse

import "weave/internal/ast"

// Traverse visits root and its descendants with d. The first handler error
// aborts the traversal and is returned unchanged.
func (s *Session) Traverse(root *ast.Node, d *Dispatcher) error {
	if root == nil {
		return nil
	}
	p := s.Root(root)
	c := newContext(s, d)
	_, err := c.visitQueue([]*Path{p})
	return err
}

// traverseNode visits the declared child fields of pp's node, one context per
// field.
func traverseNode(s *Session, d *Dispatcher, pp *Path) (bool, error) {
	node := pp.Node
	for _, spec := range ast.FieldsOf(node.Kind) {
		if pp.Node != node || pp.removed {
			return false, nil
		}
		var queue []*Path
		if spec.List {
			for i, c := range node.Children(spec.Name) {
				if d.shouldVisit(c) {
					queue = append(queue, s.Get(pp, node, spec.Name, i))
				}
			}
		} else if d.shouldVisit(node.Child(spec.Name)) {
			queue = []*Path{s.Get(pp, node, spec.Name, -1)}
		}
		if len(queue) == 0 {
			continue
		}
		stop, err := newContext(s, d).visitQueue(queue)
		if err != nil || stop {
			return stop, err
		}
	}
	return false, nil
}
