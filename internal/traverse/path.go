package traverse

import (
	"fmt"

	"weave/internal/ast"
)

// Path is the handle handlers receive: a node plus the slot that holds it.
// Paths are cached per (parent, child) in the session, so the analyse and
// convert passes see the same *Path for the same node.
type Path struct {
	Node       *ast.Node
	Parent     *ast.Node
	ParentPath *Path
	Field      ast.Field
	// Index is the position in a list slot, -1 for a single slot.
	Index int
	Scope *Scope

	sess     *Session
	contexts []*Context
	data     map[string]any
	gen      uint32

	removed    bool
	shouldSkip bool
	shouldStop bool
	lost       bool
}

func (p *Path) String() string {
	if p == nil {
		return "<nil path>"
	}
	if p.Index >= 0 {
		return fmt.Sprintf("%s[%s.%d]", p.Node, p.Field, p.Index)
	}
	if p.Field != "" {
		return fmt.Sprintf("%s[%s]", p.Node, p.Field)
	}
	return p.Node.String()
}

// Session returns the owning session.
func (p *Path) Session() *Session { return p.sess }

// Listed reports whether the path addresses a list slot.
func (p *Path) Listed() bool { return p.Index >= 0 }

func (p *Path) Removed() bool    { return p.removed }
func (p *Path) ShouldSkip() bool { return p.shouldSkip }
func (p *Path) ShouldStop() bool { return p.shouldStop }

// Skip prevents descent into the node and its remaining handlers.
func (p *Path) Skip() { p.shouldSkip = true }

// Stop ends the whole traversal after the current handler.
func (p *Path) Stop() {
	p.shouldStop = true
	p.shouldSkip = true
}

// Is matches the current node against a kind or alias.
func (p *Path) Is(sel ast.Selector) bool { return ast.Is(p.Node, sel) }

// Stale reports whether the parent changed since the path was last synced.
func (p *Path) Stale() bool {
	return p.Parent != nil && p.gen != p.Parent.Generation()
}

// Resync re-derives the slot from the live parent. Paths whose node left the
// parent entirely become detached and are skipped by traversal.
func (p *Path) Resync() {
	if p.removed || p.Parent == nil {
		return
	}
	if pp := p.ParentPath; pp != nil && pp.Node != nil && pp.Node != p.Parent {
		p.sess.forget(p)
		p.Parent = pp.Node
		p.sess.paths[p.Parent] = append(p.sess.paths[p.Parent], p)
	}
	defer func() { p.gen = p.Parent.Generation() }()
	if p.Parent.At(p.Field, p.Index) == p.Node {
		p.lost = false
		return
	}
	for _, spec := range ast.FieldsOf(p.Parent.Kind) {
		if spec.List {
			for i, c := range p.Parent.Children(spec.Name) {
				if c == p.Node {
					p.Field, p.Index, p.lost = spec.Name, i, false
					return
				}
			}
			continue
		}
		if p.Node != nil && p.Parent.Child(spec.Name) == p.Node {
			p.Field, p.Index, p.lost = spec.Name, -1, false
			return
		}
	}
	p.lost = true
}

// Detached reports whether the last resync failed to find the node.
func (p *Path) Detached() bool { return p.lost }

// Get returns the path of the single child in field.
func (p *Path) Get(field ast.Field) *Path {
	return p.sess.Get(p, p.Node, field, -1)
}

// GetList returns paths for every item of the list field.
func (p *Path) GetList(field ast.Field) []*Path {
	list := p.Node.Children(field)
	out := make([]*Path, len(list))
	for i := range list {
		out[i] = p.sess.Get(p, p.Node, field, i)
	}
	return out
}

// FindParent returns the closest ancestor path accepted by fn.
func (p *Path) FindParent(fn func(*Path) bool) *Path {
	for pp := p.ParentPath; pp != nil; pp = pp.ParentPath {
		if fn(pp) {
			return pp
		}
	}
	return nil
}

// FindParentKind returns the closest ancestor matching sel.
func (p *Path) FindParentKind(sel ast.Selector) *Path {
	return p.FindParent(func(pp *Path) bool { return pp.Is(sel) })
}

// SetData stores a per-path value shared by every pass.
func (p *Path) SetData(key string, v any) {
	if p.data == nil {
		p.data = make(map[string]any)
	}
	p.data[key] = v
}

func (p *Path) Data(key string) any {
	return p.data[key]
}

func (p *Path) setScope() {
	var parent *Scope
	if p.ParentPath != nil {
		parent = p.ParentPath.Scope
	}
	if p.Node == nil {
		p.Scope = parent
		return
	}
	p.Scope = p.sess.scopeFor(p, parent)
}

func (p *Path) pushContext(c *Context) { p.contexts = append(p.contexts, c) }

func (p *Path) popContext() {
	if n := len(p.contexts); n > 0 {
		p.contexts[n-1] = nil
		p.contexts = p.contexts[:n-1]
	}
}

func (p *Path) current() *Context {
	if n := len(p.contexts); n > 0 {
		return p.contexts[n-1]
	}
	return nil
}

// requeue schedules p for a fresh visit in its current frame.
func (p *Path) requeue() {
	if c := p.current(); c != nil {
		c.maybeQueue(p, true)
		p.sess.traceNode("requeue", p.Node)
	}
}

// visit runs enter handlers, descends, then runs exit handlers. A node
// replaced or removed by an enter handler is neither descended nor exited.
func (p *Path) visit(d *Dispatcher) (bool, error) {
	if p.Node == nil || p.removed {
		return false, nil
	}
	if p.shouldSkip {
		return p.shouldStop, nil
	}
	node := p.Node
	done, err := p.call(d, PhaseEnter)
	if err != nil {
		return true, err
	}
	if done {
		return p.shouldStop, nil
	}
	stop, err := traverseNode(p.sess, d, p)
	if err != nil {
		return true, err
	}
	if stop {
		p.shouldStop = true
	}
	if p.removed || p.Node != node {
		// replaced while children were walked; the new node is already queued
		return p.shouldStop, nil
	}
	if _, err := p.call(d, PhaseExit); err != nil {
		return true, err
	}
	return p.shouldStop, nil
}

// call runs handlers for the phase; true means the node changed under us or
// a handler asked to skip/stop, so the rest of the node's processing is off.
func (p *Path) call(d *Dispatcher, ph Phase) (bool, error) {
	node := p.Node
	for _, fn := range d.handlers(node.Kind, ph) {
		if err := fn(p); err != nil {
			return true, err
		}
		if p.Node != node || p.removed || p.shouldSkip || p.shouldStop {
			return true, nil
		}
	}
	return false, nil
}
