package testkit

import (
	"strings"
	"testing"

	"weave/internal/ast"
	"weave/internal/source"
)

func TestCheckSpanInvariants(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("page.twig", []byte("{{ name }}"), 0)
	other := fs.Add("other.twig", nil, 0)
	f := fs.Get(id)

	ok := ast.Print(ast.Ident("name"))
	ok.Span = source.Span{File: id, Start: 0, End: 10}
	if err := CheckSpanInvariants(ast.NewTemplate(nil, ok), f); err != nil {
		t.Fatalf("valid tree rejected: %v", err)
	}

	cases := map[string]source.Span{
		"file mismatch":  {File: other, Start: 1, End: 2},
		"inverted":       {File: id, Start: 5, End: 2},
		"beyond content": {File: id, Start: 2, End: 11},
	}
	for want, sp := range cases {
		n := ast.Text("x")
		n.Span = sp
		err := CheckSpanInvariants(ast.NewTemplate(nil, n), f)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("%s: got %v", want, err)
		}
	}
}

func TestCheckTree(t *testing.T) {
	call := ast.JSExprStmt(ast.JSCall(ast.JSIdent("f")))
	if err := CheckTree(ast.JSProgram(call)); err != nil {
		t.Fatalf("valid program rejected: %v", err)
	}
	if err := CheckTree(ast.JSProgram(call, call)); err == nil {
		t.Errorf("shared statement accepted")
	}
	if err := CheckTree(ast.JSProgram(ast.Text("x"))); err == nil {
		t.Errorf("template node accepted")
	}
}
