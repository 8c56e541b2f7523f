package traverse

import "weave/internal/ast"

// ReplaceWith puts n into p's slot, re-resolves the scope and schedules the
// replacement for a fresh visit in the current frame.
func (p *Path) ReplaceWith(n *ast.Node) error {
	if p.removed {
		return invariant("ReplaceWith", n, ErrRemoved)
	}
	if n == nil {
		return p.Remove()
	}
	p.Resync()
	if p.lost {
		return invariant("ReplaceWith", p.Node, ErrDetached)
	}
	if p.Node == n {
		return nil
	}
	if p.Parent != nil {
		p.Parent.SetAt(p.Field, p.Index, n)
		p.sess.refresh(p.Parent, p.Field, 0, 0)
	}
	p.Node = n
	p.setScope()
	p.requeue()
	return nil
}

// ReplaceWithJS is ReplaceWith for nodes of the output program; the
// replacement root is flagged as host.
func (p *Path) ReplaceWithJS(n *ast.Node) error {
	return p.ReplaceWith(ast.MarkHost(n))
}

// ReplaceWithMultipleJS splices nodes in place of p. p must sit in a list
// slot. Cached sibling paths after p shift by len(nodes)-1, p becomes dead and
// the new nodes are queued, in order, for visiting before the next sibling.
func (p *Path) ReplaceWithMultipleJS(nodes ...*ast.Node) ([]*Path, error) {
	if p.removed {
		return nil, invariant("ReplaceWithMultipleJS", nil, ErrRemoved)
	}
	if p.Parent == nil || !p.Listed() {
		return nil, invariant("ReplaceWithMultipleJS", p.Node, ErrNotList)
	}
	p.Resync()
	if p.lost {
		return nil, invariant("ReplaceWithMultipleJS", p.Node, ErrDetached)
	}
	for _, n := range nodes {
		ast.MarkHost(n)
	}
	parent, field, parentPath, idx := p.Parent, p.Field, p.ParentPath, p.Index
	ctx := p.current()

	parent.Splice(field, idx, 1, nodes...)
	p.markRemoved()
	p.sess.refresh(parent, field, idx+1, len(nodes)-1)

	paths := make([]*Path, len(nodes))
	for i := range nodes {
		paths[i] = p.sess.Get(parentPath, parent, field, idx+i)
		if ctx != nil {
			ctx.maybeQueue(paths[i], true)
		}
	}
	return paths, nil
}

// Remove deletes the node from its slot. List siblings after it shift by -1.
func (p *Path) Remove() error {
	if p.removed {
		return invariant("Remove", nil, ErrRemoved)
	}
	if p.Parent == nil {
		return invariant("Remove", p.Node, ErrNoParent)
	}
	p.Resync()
	if p.lost {
		return invariant("Remove", p.Node, ErrDetached)
	}
	parent, field, idx := p.Parent, p.Field, p.Index
	if p.Listed() {
		parent.Splice(field, idx, 1)
		p.markRemoved()
		p.sess.refresh(parent, field, idx+1, -1)
		return nil
	}
	parent.SetChild(field, nil)
	p.markRemoved()
	p.sess.refresh(parent, field, 0, 0)
	return nil
}

func (p *Path) markRemoved() {
	p.sess.forget(p)
	p.removed = true
	p.shouldSkip = true
	p.Node = nil
}

// UnshiftContainer inserts nodes at the start of list field of p's node.
// Inserted nodes are not queued for visiting.
func (p *Path) UnshiftContainer(field ast.Field, nodes ...*ast.Node) []*Path {
	return p.insert(field, 0, nodes)
}

// PushContainer appends nodes to list field of p's node.
func (p *Path) PushContainer(field ast.Field, nodes ...*ast.Node) []*Path {
	return p.insert(field, len(p.Node.Children(field)), nodes)
}

func (p *Path) insert(field ast.Field, at int, nodes []*ast.Node) []*Path {
	if len(nodes) == 0 {
		return nil
	}
	p.Node.Splice(field, at, 0, nodes...)
	p.sess.refresh(p.Node, field, at, len(nodes))
	out := make([]*Path, len(nodes))
	for i := range nodes {
		out[i] = p.sess.Get(p, p.Node, field, at+i)
	}
	return out
}
