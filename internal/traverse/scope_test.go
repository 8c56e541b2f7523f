package traverse

import (
	"errors"
	"testing"

	"weave/internal/ast"
)

// nestedScopes builds Template > Block > For and returns the session plus the
// three scopes, innermost last.
func nestedScopes(t *testing.T) (*Session, []*Scope) {
	t.Helper()
	loop := ast.For("", "item", ast.Ident("items"), ast.Print(ast.Ident("item")))
	tpl := ast.NewTemplate(nil, ast.Block("content", loop))
	sess := NewSession()
	var scopes []*Scope
	v := NewVisitor[*recorder]("scopes").Enter(ast.AliasScope, func(p *Path, _ *recorder) error {
		scopes = append(scopes, p.Scope)
		return nil
	})
	if err := sess.Traverse(tpl, Explode(v).Bind(&recorder{})); err != nil {
		t.Fatalf("traverse: %v", err)
	}
	if len(scopes) != 3 {
		t.Fatalf("expected 3 scopes, got %d", len(scopes))
	}
	return sess, scopes
}

func TestScopeChainAndRoot(t *testing.T) {
	sess, scopes := nestedScopes(t)
	root, block, loop := scopes[0], scopes[1], scopes[2]
	if sess.RootScope() != root || !root.IsRoot() {
		t.Fatalf("template scope must be the root")
	}
	if loop.Parent != block || block.Parent != root {
		t.Fatalf("broken parent chain")
	}
	if sess.ScopeOf(block.Node) != block {
		t.Errorf("side table lost the block scope")
	}
}

func TestBindingIdentityAndReferences(t *testing.T) {
	_, scopes := nestedScopes(t)
	root, block, loop := scopes[0], scopes[1], scopes[2]

	decl := root.RegisterBinding("foo", nil, BindingVar)
	a := loop.Reference("foo", nil)
	b := block.Reference("foo", nil)
	if a != decl || b != decl {
		t.Fatalf("references must resolve to the declaring binding")
	}
	if decl.References() != 2 || len(decl.ReferencePaths()) != decl.References() {
		t.Errorf("reference bookkeeping out of sync: %d vs %d", decl.References(), len(decl.ReferencePaths()))
	}

	g := loop.Reference("undeclared", nil)
	if g.Kind != BindingGlobal || g.Scope != root {
		t.Errorf("unknown names must become root globals, got %s in %v", g.Kind, g.Scope.Node)
	}
	if loop.Reference("undeclared", nil) != g {
		t.Errorf("second lookup must reuse the lazily registered global")
	}
}

func TestRegisterBindingPlacement(t *testing.T) {
	_, scopes := nestedScopes(t)
	root, block, loop := scopes[0], scopes[1], scopes[2]

	if c := loop.RegisterBinding("statics", nil, BindingConst); c.Scope != block {
		t.Errorf("const must land in the enclosing function scope, got %v", c.Scope.Node)
	}
	if g := loop.RegisterBinding("g", nil, BindingGlobal); g.Scope != root {
		t.Errorf("pathless global must land in the root")
	}
	first := loop.RegisterBinding("x", nil, BindingVar)
	second := loop.RegisterBinding("x", nil, BindingVar)
	if loop.GetBinding("x") != second || first == second {
		t.Errorf("re-registering must overwrite")
	}
	if n := len(loop.Bindings()); n != 1 {
		t.Errorf("expected a single x binding in loop scope, got %d", n)
	}
}

func TestShadowChainResolvesIteratively(t *testing.T) {
	sess, scopes := nestedScopes(t)
	root, block, loop := scopes[0], scopes[1], scopes[2]

	outer := root.RegisterBinding("item", nil, BindingVar)
	middle := block.RegisterBinding("item", nil, BindingVar)
	inner := loop.RegisterBinding("item", nil, BindingVar)

	if sess.Shadowed(inner) != middle || sess.Shadowed(middle) != outer {
		t.Fatalf("direct shadow links wrong")
	}
	if sess.OriginalBinding(inner) != outer {
		t.Fatalf("original binding must be the outermost declaration")
	}
	// после сжатия прямые ссылки не меняются
	if sess.Shadowed(inner) != middle {
		t.Errorf("compression must not rewrite direct links")
	}
	if sess.OriginalBinding(outer) != outer {
		t.Errorf("a root binding is its own original")
	}
}

func TestEscapesIsMonotoneAndPropagates(t *testing.T) {
	_, scopes := nestedScopes(t)
	root, block, loop := scopes[0], scopes[1], scopes[2]

	loop.MarkEscapes()
	// выход изнутри наружу, как при обходе
	for _, sc := range []*Scope{loop, block, root} {
		sc.PropagateEscape()
	}
	for i, sc := range scopes {
		if !sc.EscapesContext() {
			t.Errorf("scope %d does not escape after propagation", i)
		}
	}
	loop.MarkEscapes()
	loop.PropagateEscape()
	if !root.EscapesContext() {
		t.Errorf("flag went back to false")
	}
}

func TestContextNameMintAndReadGuard(t *testing.T) {
	_, scopes := nestedScopes(t)
	root, block, loop := scopes[0], scopes[1], scopes[2]

	if err := loop.MintContextName("_context$1"); err != nil {
		t.Fatalf("mint before reads: %v", err)
	}
	if got := loop.ContextName(); got != "_context$1" {
		t.Errorf("loop context = %q", got)
	}
	if got := loop.ParentContextName(); got != DefaultContextName {
		t.Errorf("parent context = %q", got)
	}
	if got := block.ContextName(); got != DefaultContextName {
		t.Errorf("block context = %q", got)
	}
	if err := block.MintContextName("_context$2"); !errors.Is(err, ErrContextRead) {
		t.Errorf("minting after a read must fail, got %v", err)
	}
	if root.OwnsContext() {
		t.Errorf("root does not own a minted context")
	}
}
