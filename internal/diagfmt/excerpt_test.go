package diagfmt

import (
	"strings"
	"testing"

	"weave/internal/diag"
	"weave/internal/source"
)

const twiceBlock = "{% block title %}\n{% block title %}\n"

func TestExcerptCaretUnderSpan(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("page.twig", []byte(twiceBlock))
	d := diag.NewError(diag.TplDuplicateBlock, source.Span{File: id, Start: 21, End: 32}, `block "title" is defined twice`)

	got := Excerpt(fs, d)
	want := strings.Join([]string{
		`page.twig:2:4: ERROR TPL1003: block "title" is defined twice`,
		"2 | {% block title %}",
		"  |    ^^^^^^^^^^^",
	}, "\n")
	if got != want {
		t.Fatalf("excerpt mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestExcerptEmptySpanGetsOneCaret(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.twig", []byte("abc\n"))
	d := diag.NewError(diag.TplUnsupported, source.Span{File: id, Start: 1, End: 1}, "boom").WithAdvice("remove it")

	got := Excerpt(fs, d)
	if !strings.Contains(got, "  |  ^\n") {
		t.Fatalf("expected single caret at column 2, got:\n%s", got)
	}
	if !strings.HasSuffix(got, "  = help: remove it") {
		t.Fatalf("expected advice line, got:\n%s", got)
	}
}

func TestExcerptWithoutFileSet(t *testing.T) {
	d := diag.NewError(diag.TplMissingTemplate, source.NoSpan, "no template")
	got := Excerpt(nil, d)
	if got != "ERROR TPL1006: no template" {
		t.Fatalf("unexpected excerpt %q", got)
	}
}

func TestExcerptWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	// "界" занимает две колонки
	id := fs.AddVirtual("w.twig", []byte("界界 x\n"))
	d := diag.NewError(diag.TplUnsupported, source.Span{File: id, Start: 7, End: 8}, "x")

	got := Excerpt(fs, d)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), got)
	}
	if lines[2] != "  |      ^" {
		t.Fatalf("caret misplaced: %q", lines[2])
	}
}
