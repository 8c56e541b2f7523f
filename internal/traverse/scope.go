package traverse

import "weave/internal/ast"

// DefaultContextName is the ambient context parameter of render functions.
const DefaultContextName = "_context"

// Scope belongs to exactly one scope-introducing node. Scopes are created on
// first visit and live for the whole compile.
type Scope struct {
	Node   *ast.Node
	Path   *Path
	Parent *Scope

	sess     *Session
	bindings map[string]*Binding
	order    []*Binding

	escapes    bool
	propagated bool
	mutated    bool

	contextName string
	resolved    string
	contextRead bool
}

func newScope(sess *Session, p *Path, parent *Scope) *Scope {
	return &Scope{
		Node:     p.Node,
		Path:     p,
		Parent:   parent,
		sess:     sess,
		bindings: make(map[string]*Binding),
	}
}

// IsRoot reports whether s is the compilation root scope.
func (s *Scope) IsRoot() bool { return s != nil && s.sess.root == s }

// Root returns the compilation root scope, or the outermost scope when no
// template scope exists.
func (s *Scope) Root() *Scope {
	if r := s.sess.root; r != nil {
		return r
	}
	sc := s
	for sc.Parent != nil {
		sc = sc.Parent
	}
	return sc
}

// EscapesContext reports whether code in s may run after the enclosing
// function returned.
func (s *Scope) EscapesContext() bool { return s.escapes }

// MarkEscapes sets the escape flag. It never goes back to false.
func (s *Scope) MarkEscapes() { s.escapes = true }

// PropagateEscape copies the escape flag to the parent once per scope exit.
func (s *Scope) PropagateEscape() {
	if s.propagated || !s.escapes {
		return
	}
	s.propagated = true
	if s.Parent != nil {
		s.Parent.MarkEscapes()
	}
}

func (s *Scope) Mutated() bool { return s.mutated }

func (s *Scope) MarkMutated() { s.mutated = true }

// ContextName resolves the context identifier visible from s. Resolution
// stops at function-level scopes: their context is the render parameter.
// Every scope on the resolution chain is marked as read.
func (s *Scope) ContextName() string {
	if s.resolved != "" {
		return s.resolved
	}
	name := s.sess.defaultContext()
	for sc := s; sc != nil; sc = sc.Parent {
		sc.contextRead = true
		if sc.contextName != "" {
			name = sc.contextName
			break
		}
		if sc.isFunction() {
			break
		}
	}
	s.resolved = name
	return name
}

// ContextRead reports whether any reader resolved a context name through s.
func (s *Scope) ContextRead() bool { return s.contextRead }

func (s *Scope) isFunction() bool {
	return s.IsRoot() || ast.Is(s.Node, ast.AliasFunction)
}

// OwnsContext reports whether s minted its own context alias.
func (s *Scope) OwnsContext() bool { return s.contextName != "" }

// ParentContextName is the context s would use without its own alias.
func (s *Scope) ParentContextName() string {
	if s.Parent == nil || s.isFunction() {
		return s.sess.defaultContext()
	}
	return s.Parent.ContextName()
}

// MintContextName gives s a private context alias. It fails once any reader
// resolved a context name through s.
func (s *Scope) MintContextName(name string) error {
	if s.contextRead {
		return invariant("MintContextName", s.Node, ErrContextRead)
	}
	s.contextName = name
	s.resolved = ""
	return nil
}

// RegisterBinding declares name. Kind global without a path lands in the root
// scope; const lands in the nearest function-level scope. A same-named binding
// already in the target scope is overwritten.
func (s *Scope) RegisterBinding(name string, p *Path, kind BindingKind) *Binding {
	target := s
	switch {
	case kind == BindingGlobal && p == nil:
		target = s.Root()
	case kind == BindingConst:
		target = s.FunctionScope()
	}
	b := s.sess.newBinding(name, target, p, kind)
	if target.Parent != nil && !target.IsRoot() {
		if prev := target.Parent.GetBinding(name); prev != nil {
			s.sess.linkShadow(b, prev)
		}
	}
	if _, ok := target.bindings[name]; !ok {
		target.order = append(target.order, b)
	} else {
		for i, old := range target.order {
			if old.Name == name {
				target.order[i] = b
				break
			}
		}
	}
	target.bindings[name] = b
	return b
}

// FunctionScope is the nearest scope that lowers into its own host function,
// never past the root.
func (s *Scope) FunctionScope() *Scope {
	for sc := s; sc != nil; sc = sc.Parent {
		if sc.isFunction() {
			return sc
		}
	}
	return s
}

// GetBinding walks s and its parents up to the root scope.
func (s *Scope) GetBinding(name string) *Binding {
	for sc := s; sc != nil; sc = sc.Parent {
		if b, ok := sc.bindings[name]; ok {
			return b
		}
		if sc.IsRoot() {
			break
		}
	}
	return nil
}

// OwnBinding looks only at s.
func (s *Scope) OwnBinding(name string) *Binding {
	return s.bindings[name]
}

// HasBinding reports whether name resolves from s.
func (s *Scope) HasBinding(name string) bool { return s.GetBinding(name) != nil }

// Reference resolves name from s, registering an implicit global at the root
// when nothing declares it, and records p as a use site.
func (s *Scope) Reference(name string, p *Path) *Binding {
	b := s.GetBinding(name)
	if b == nil {
		b = s.Root().RegisterBinding(name, nil, BindingGlobal)
	}
	b.Reference(p)
	return b
}

// Bindings lists the bindings of s in declaration order.
func (s *Scope) Bindings() []*Binding { return s.order }
