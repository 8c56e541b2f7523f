package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetLatestByPath(t *testing.T) {
	fs := NewFileSet()

	first := fs.Add("views/a.twig", []byte("hello"), 0)
	second := fs.Add("views/./a.twig", []byte("hello again"), 0)
	if first == second {
		t.Fatalf("expected distinct ids, got %d twice", first)
	}

	f, ok := fs.GetByPath("views/a.twig")
	if !ok {
		t.Fatalf("expected file to be found by path")
	}
	if f.ID != second {
		t.Errorf("expected latest id %d, got %d", second, f.ID)
	}
	if got := string(fs.Get(first).Content); got != "hello" {
		t.Errorf("old version lost: %q", got)
	}
	if fs.Get(FileID(42)) != nil {
		t.Errorf("expected nil for unknown id")
	}
}

func TestResolveAndLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.twig", []byte("ab\ncd\n\nlast"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}},
		{3, LineCol{2, 1}},
		{7, LineCol{4, 1}},
		{10, LineCol{4, 4}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: want %+v, got %+v", tt.off, tt.want, start)
		}
	}

	f := fs.Get(id)
	lines := map[uint32]string{1: "ab", 2: "cd", 3: "", 4: "last", 5: ""}
	for n, want := range lines {
		if got := f.Line(n); got != want {
			t.Errorf("line %d: want %q, got %q", n, want, got)
		}
	}
}

func TestLoadNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.twig")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa\r\nb"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb" {
		t.Errorf("unexpected content %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("expected BOM and CRLF flags, got %b", f.Flags)
	}
}

func TestSpanHelpers(t *testing.T) {
	s := Span{File: 1, Start: 10, End: 20}
	if got := s.Cover(Span{File: 1, Start: 5, End: 12}); got != (Span{File: 1, Start: 5, End: 20}) {
		t.Errorf("cover: %v", got)
	}
	if got := s.Cover(Span{File: 2, Start: 0, End: 50}); got != s {
		t.Errorf("cover across files must keep span, got %v", got)
	}
	if got := s.WithLen(3); got.End != 13 {
		t.Errorf("withLen: %v", got)
	}
	if (Span{Start: 4, End: 2}).Len() != 0 {
		t.Errorf("inverted span must have zero length")
	}
}
