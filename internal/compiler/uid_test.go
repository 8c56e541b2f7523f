package compiler

import "testing"

func TestGenerateUidSequence(t *testing.T) {
	s := NewState(DefaultOptions(), "page.twig")
	want := []string{"foo", "foo$1", "foo$2"}
	for i, w := range want {
		if got := s.GenerateUid("foo"); got != w {
			t.Fatalf("call %d: got %q, want %q", i, got, w)
		}
	}
	if !s.IsUsed("foo$1") {
		t.Fatalf("generated names must be marked used")
	}
}

func TestGenerateUidSkipsMarkedNames(t *testing.T) {
	s := NewState(DefaultOptions(), "page.twig")
	s.MarkUsed("bar")
	s.MarkUsed("bar$1")
	if got := s.GenerateUid("bar"); got != "bar$2" {
		t.Fatalf("got %q, want bar$2", got)
	}
}

func TestNormalizeIdent(t *testing.T) {
	cases := map[string]string{
		"café":    "cafe",
		"my-var":  "my_var",
		"1abc":    "_1abc",
		"class":   "_class",
		"":        "_",
		"$ok_1":   "$ok_1",
		"a b.c":   "a_b_c",
		"привет":  "привет",
		"default": "_default",
	}
	for in, want := range cases {
		if got := normalizeIdent(in); got != want {
			t.Errorf("normalizeIdent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestComponentName(t *testing.T) {
	cases := map[string]string{
		"user-card":    "UserCard",
		"page":         "Page",
		"my_list.item": "MyListItem",
		"":             "Template",
		"--":           "Template",
	}
	for in, want := range cases {
		if got := componentName(in); got != want {
			t.Errorf("componentName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBlockFunc(t *testing.T) {
	if got := blockFunc("title"); got != "renderTitle" {
		t.Fatalf("blockFunc = %q", got)
	}
}
