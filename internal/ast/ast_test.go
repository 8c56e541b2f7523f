package ast

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAliasMembership(t *testing.T) {
	cases := []struct {
		kind Kind
		tag  AliasTag
		want bool
	}{
		{KindBlock, AliasScope, true},
		{KindBlock, AliasFunction, true},
		{KindFor, AliasScope, true},
		{KindFor, AliasFunction, false},
		{KindText, AliasStatement, true},
		{KindStringLiteral, AliasLiteral, true},
		{KindIdentifier, AliasLiteral, false},
	}
	for _, tc := range cases {
		if got := tc.tag.Matches(tc.kind); got != tc.want {
			t.Errorf("%s in %s: got %v, want %v", tc.kind, tc.tag, got, tc.want)
		}
	}
	for _, k := range AliasScope.Kinds() {
		if !Is(&Node{Kind: k}, AliasScope) {
			t.Errorf("%s listed under Scope but Is() disagrees", k)
		}
	}
}

func TestEveryKindIsDefined(t *testing.T) {
	for k := KindInvalid + 1; k < kindCount; k++ {
		if k.String() == "Invalid" {
			t.Errorf("kind %d has no name", k)
		}
		back, ok := KindByName(k.String())
		if !ok || back != k {
			t.Errorf("KindByName(%q) = %v, %v", k.String(), back, ok)
		}
	}
}

func TestSlotsAndGeneration(t *testing.T) {
	tpl := NewTemplate(nil, Text("a"), Text("b"))
	gen := tpl.Generation()

	tpl.Splice(FieldBody, 1, 1, Text("x"), Text("y"))
	if tpl.Generation() == gen {
		t.Fatalf("splice must bump generation")
	}
	var got []string
	for _, c := range tpl.Children(FieldBody) {
		got = append(got, c.Value)
	}
	if diff := cmp.Diff([]string{"a", "x", "y"}, got); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if tpl.Child(FieldKey) != nil {
		t.Errorf("undeclared field must read as nil")
	}
}

func TestUndeclaredFieldsAreNotWalked(t *testing.T) {
	p := Print(Ident("foo"))
	p.SetMeta("stash", Ident("hidden"))

	var seen []string
	Walk(p, func(n *Node) bool {
		seen = append(seen, n.String())
		return true
	})
	if diff := cmp.Diff([]string{"Print", "Identifier(foo)"}, seen); diff != "" {
		t.Errorf("walk mismatch (-want +got):\n%s", diff)
	}
}

const sampleDoc = `
file: views/page.twig
root:
  type: Template
  body:
    - type: Set
      assignments:
        - type: SetAssignment
          target: {type: Identifier, name: foo}
          value: {type: NumericLiteral, value: "1"}
    - type: Include
      flags: [only]
      span: [10, 30]
      source: [{type: StringLiteral, value: "./x.twig"}]
    - type: Print
      value:
        type: MemberExpression
        object: {type: Identifier, name: user}
        property: {type: Identifier, name: name}
`

func TestDecodeEncodeRoundTrip(t *testing.T) {
	doc, err := Decode([]byte(sampleDoc), 3)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.File != "views/page.twig" {
		t.Errorf("file = %q", doc.File)
	}
	body := doc.Root.Children(FieldBody)
	if len(body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(body))
	}
	inc := body[1]
	if !inc.Has(FlagContextFree) || inc.Span.Start != 10 || inc.Span.End != 30 || inc.Span.File != 3 {
		t.Errorf("include lost attributes: %+v", inc)
	}
	if inc.Child(FieldSource).Value != "./x.twig" {
		t.Errorf("single-element list not unwrapped into single slot")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc, FormatYAML); err != nil {
		t.Fatalf("encode: %v", err)
	}
	again, err := Decode(buf.Bytes(), 3)
	if err != nil {
		t.Fatalf("decode of encoded output: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(DumpString(doc.Root), DumpString(again.Root)); diff != "" {
		t.Errorf("round trip changed the tree (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"unknown type":  "type: Bogus\n",
		"unknown field": "type: Text\nbody: []\n",
		"bad list":      "type: Template\nbody: {type: Text}\n",
	}
	for name, src := range cases {
		if _, err := Decode([]byte(src), 1); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDumpShape(t *testing.T) {
	got := DumpString(Block("content", Print(Ident("x"))))
	want := strings.Join([]string{
		"Block name=content",
		"  body:",
		"    - Print",
		"      value: Identifier name=x",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dump mismatch (-want +got):\n%s", diff)
	}
}
