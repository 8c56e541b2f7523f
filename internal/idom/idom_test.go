package idom

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"weave/internal/ast"
	"weave/internal/compiler"
	"weave/internal/diag"
)

func compile(t *testing.T, root *ast.Node) (*compiler.State, error) {
	t.Helper()
	c := compiler.New(compiler.DefaultOptions(), Extension())
	return c.Compile(context.Background(), compiler.Unit{Root: root, Path: "card.twig"})
}

var keyPattern = regexp.MustCompile(`"[^"&\\]{7}"`)

// stableKeys replaces generated element keys with a placeholder.
func stableKeys(s string) string {
	return keyPattern.ReplaceAllString(s, `"KEY"`)
}

func TestTextAndPrint(t *testing.T) {
	st, err := compile(t, ast.NewTemplate(nil, ast.Text("Hello, "), ast.Print(ast.Ident("name"))))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := strings.Join([]string{
		`import {text} from "weave-idom";`,
		`export const _template = {};`,
		`_template.render = function (_context) { text("Hello, "); text(_context.name); };`,
		`export default function Card(props) { return _template.render(props); }`,
	}, "\n")
	if got := ast.Sketch(st.Program); got != want {
		t.Fatalf("output mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestElementLowering(t *testing.T) {
	root := ast.NewTemplate(nil,
		ast.Element("div",
			[]*ast.Node{ast.Attr("class", ast.Str("card")), ast.Attr("title", ast.Ident("t")), ast.Attr("hidden", nil)},
			ast.Text("hi"),
			ast.Element("br", nil),
		),
	)
	st, err := compile(t, root)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := strings.Join([]string{
		`import {text, elementVoid, elementOpen, elementClose} from "weave-idom";`,
		`export const _template = {};`,
		`_template.render = function (_context) { const _statics = ["class", "card", "hidden", ""]; ` +
			`elementOpen("div", "KEY", _statics, "title", _context.t); text("hi"); ` +
			`elementVoid("br", "KEY", null); elementClose("div"); };`,
		`export default function Card(props) { return _template.render(props); }`,
	}, "\n")
	got := ast.Sketch(st.Program)
	if stableKeys(got) != want {
		t.Fatalf("output mismatch:\n got: %s\nwant: %s", got, want)
	}

	keys := keyPattern.FindAllString(got, -1)
	if len(keys) != 2 || keys[0] == keys[1] {
		t.Fatalf("expected two distinct keys, got %v", keys)
	}
}

func TestKeysAreStableAcrossCompiles(t *testing.T) {
	build := func() string {
		st, err := compile(t, ast.NewTemplate(nil, ast.Element("p", nil, ast.Text("a")), ast.Element("p", nil)))
		if err != nil {
			t.Fatalf("compile: %v", err)
		}
		return ast.Sketch(st.Program)
	}
	if a, b := build(), build(); a != b {
		t.Fatalf("recompiling changed the output:\n%s\n%s", a, b)
	}
}

func TestStaticsHoistIntoMacro(t *testing.T) {
	root := ast.NewTemplate(nil,
		ast.Macro("badge", nil, ast.Element("span", []*ast.Node{ast.Attr("class", ast.Str("badge"))})),
	)
	st, err := compile(t, root)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got := stableKeys(ast.Sketch(st.Program))
	want := `export function badge() { const _statics = ["class", "badge"]; elementVoid("span", "KEY", _statics); }`
	if !strings.Contains(got, want) {
		t.Fatalf("missing macro with hoisted statics:\n%s", got)
	}
}

func TestSiblingStaticsGetDistinctNames(t *testing.T) {
	root := ast.NewTemplate(nil,
		ast.Element("hr", []*ast.Node{ast.Attr("class", ast.Str("top"))}),
		ast.Element("hr", []*ast.Node{ast.Attr("class", ast.Str("bottom"))}),
	)
	st, err := compile(t, root)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got := stableKeys(ast.Sketch(st.Program))
	for _, want := range []string{
		`const _statics = ["class", "top"]; const _statics$1 = ["class", "bottom"];`,
		`elementVoid("hr", "KEY", _statics); elementVoid("hr", "KEY", _statics$1);`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
}

func TestElementErrors(t *testing.T) {
	cases := []struct {
		name string
		root *ast.Node
	}{
		{"void with children", ast.NewTemplate(nil, ast.Element("img", nil, ast.Text("x")))},
		{"missing tag", ast.NewTemplate(nil, ast.Element("", nil))},
		{"duplicate attribute", ast.NewTemplate(nil, ast.Element("a", []*ast.Node{
			ast.Attr("href", ast.Str("/")), ast.Attr("href", ast.Str("/x")),
		}))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compile(t, tc.root)
			de, ok := diag.AsError(err)
			if !ok {
				t.Fatalf("expected *diag.Error, got %v", err)
			}
			if de.Code != diag.TplUnsupported {
				t.Fatalf("code = %s", de.Code.ID())
			}
		})
	}
}
