package traverse

import (
	"weave/internal/ast"
	"weave/internal/trace"
)

// Session owns everything one compilation unit learns about its tree: the
// path identity cache, the scope side-table and the binding table. Sessions
// are not safe for concurrent use; compile units never share one.
type Session struct {
	// ContextName overrides DefaultContextName.
	ContextName string
	Tracer      trace.Tracer
	// SpanID parents node-level trace events.
	SpanID uint64

	paths    map[*ast.Node][]*Path
	scopes   map[*ast.Node]*Scope
	root     *Scope
	bindings *ast.Arena[*Binding]
	// shadow[id-1] is the binding id that b shadows; compressed holds the
	// same forest with path compression applied.
	shadow     []uint32
	compressed []uint32
}

func NewSession() *Session {
	return &Session{
		paths:    make(map[*ast.Node][]*Path),
		scopes:   make(map[*ast.Node]*Scope),
		bindings: ast.NewArena[*Binding](64),
		Tracer:   trace.Nop,
	}
}

func (s *Session) defaultContext() string {
	if s.ContextName != "" {
		return s.ContextName
	}
	return DefaultContextName
}

// RootScope is the scope of the first template node seen, nil before that.
func (s *Session) RootScope() *Scope { return s.root }

// ScopeOf returns the scope introduced by n, if it was created.
func (s *Session) ScopeOf(n *ast.Node) *Scope { return s.scopes[n] }

// Root returns the canonical path of a tree root.
func (s *Session) Root(node *ast.Node) *Path {
	for _, p := range s.paths[nil] {
		if p.Node == node {
			return p
		}
	}
	p := &Path{sess: s, Node: node, Index: -1}
	s.paths[nil] = append(s.paths[nil], p)
	p.setScope()
	return p
}

// Get returns the canonical path for the child at (field, index) of parent;
// index < 0 addresses a single slot. The same child node always maps to the
// same *Path for as long as it stays under parent.
func (s *Session) Get(parentPath *Path, parent *ast.Node, field ast.Field, index int) *Path {
	child := parent.At(field, index)
	var p *Path
	if child != nil {
		for _, cached := range s.paths[parent] {
			if cached.Node == child {
				p = cached
				break
			}
		}
	}
	if p == nil {
		p = &Path{sess: s, Node: child}
		if child != nil {
			s.paths[parent] = append(s.paths[parent], p)
		}
	}
	p.ParentPath = parentPath
	p.Parent = parent
	p.Field = field
	p.Index = index
	p.lost = false
	p.gen = parent.Generation()
	p.setScope()
	return p
}

func (s *Session) scopeFor(p *Path, parent *Scope) *Scope {
	if !ast.Is(p.Node, ast.AliasScope) {
		return parent
	}
	if sc, ok := s.scopes[p.Node]; ok {
		return sc
	}
	sc := newScope(s, p, parent)
	s.scopes[p.Node] = sc
	if s.root == nil && p.Node.Kind == ast.KindTemplate {
		s.root = sc
	}
	return sc
}

// refresh re-validates cached children of parent after a path-API mutation:
// paths in field at index >= from shift by delta.
func (s *Session) refresh(parent *ast.Node, field ast.Field, from, delta int) {
	gen := parent.Generation()
	for _, p := range s.paths[parent] {
		if delta != 0 && p.Field == field && p.Index >= from {
			p.Index += delta
		}
		p.gen = gen
	}
}

func (s *Session) forget(p *Path) {
	list := s.paths[p.Parent]
	for i, cached := range list {
		if cached == p {
			s.paths[p.Parent] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

func (s *Session) newBinding(name string, scope *Scope, p *Path, kind BindingKind) *Binding {
	b := &Binding{
		Name:      name,
		Scope:     scope,
		Path:      p,
		Kind:      kind,
		LocalName: name,
	}
	b.ID = s.bindings.Allocate(b)
	s.shadow = append(s.shadow, 0)
	s.compressed = append(s.compressed, 0)
	return b
}

func (s *Session) linkShadow(b, prev *Binding) {
	if prev == nil || prev == b {
		return
	}
	s.shadow[b.ID-1] = prev.ID
	s.compressed[b.ID-1] = prev.ID
}

// Bindings lists every binding created in this session, in creation order.
func (s *Session) Bindings() []*Binding {
	return s.bindings.Slice()
}

// Shadowed returns the binding b directly shadows, or nil.
func (s *Session) Shadowed(b *Binding) *Binding {
	if b == nil || b.ID == 0 {
		return nil
	}
	if id := s.shadow[b.ID-1]; id != 0 {
		return *s.bindings.Get(id)
	}
	return nil
}

// OriginalBinding follows shadow links to the outermost declaration. The walk
// is iterative and compresses the chain it visited.
func (s *Session) OriginalBinding(b *Binding) *Binding {
	if b == nil || b.ID == 0 {
		return b
	}
	root := b.ID
	for s.compressed[root-1] != 0 {
		root = s.compressed[root-1]
	}
	for id := b.ID; id != root; {
		next := s.compressed[id-1]
		s.compressed[id-1] = root
		id = next
	}
	return *s.bindings.Get(root)
}

func (s *Session) traceNode(name string, n *ast.Node) {
	if s.Tracer == nil || !s.Tracer.Enabled() {
		return
	}
	trace.Point(s.Tracer, trace.ScopeNode, name, n.String(), s.SpanID)
}
