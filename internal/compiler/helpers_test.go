package compiler

import (
	"context"
	"testing"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/traverse"
)

// domExtension lowers Text and Print into calls of a tiny host library so
// the core passes can be checked without the idom backend.
func domExtension() Extension {
	return Extension{
		Name: "dom",
		Convert: traverse.NewVisitor[*State]("dom").
			Exit(ast.KindText, func(p *traverse.Path, s *State) error {
				fn := s.AddImportFrom("dom", "text", "")
				return p.ReplaceWithJS(ast.JSExprStmt(ast.JSCall(ast.JSIdent(fn), ast.JSString(p.Node.Value))))
			}).
			Exit(ast.KindPrint, func(p *traverse.Path, s *State) error {
				fn := s.AddImportFrom("dom", "print", "")
				return p.ReplaceWithJS(ast.JSExprStmt(ast.JSCall(ast.JSIdent(fn), p.Node.Child(ast.FieldValue))))
			}),
	}
}

func compileTemplate(t *testing.T, root *ast.Node, exts ...Extension) (*State, error) {
	t.Helper()
	c := New(DefaultOptions(), append([]Extension{domExtension()}, exts...)...)
	return c.Compile(context.Background(), Unit{Root: root, Path: "page.twig"})
}

func mustCompile(t *testing.T, root *ast.Node) string {
	t.Helper()
	st, err := compileTemplate(t, root)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return ast.Sketch(st.Program)
}

func wantCode(t *testing.T, err error, code diag.Code) *diag.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code.ID())
	}
	de, ok := diag.AsError(err)
	if !ok {
		t.Fatalf("expected *diag.Error, got %T: %v", err, err)
	}
	if de.Code != code {
		t.Fatalf("expected %s, got %s: %s", code.ID(), de.Code.ID(), de.Message)
	}
	return de
}

// traverseProbe calls fn when the template root exits.
func traverseProbe(fn func(*State)) *traverse.Visitor[*State] {
	return traverse.NewVisitor[*State]("probe").
		Exit(ast.KindTemplate, func(_ *traverse.Path, s *State) error {
			fn(s)
			return nil
		})
}
