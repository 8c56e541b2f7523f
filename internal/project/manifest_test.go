package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/google/go-cmp/cmp"

	"weave/internal/compiler"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), `
[compiler]
runtime = "my-runtime"
context = "ctx"
key_length = 9

[output]
format = "json"
dir = "dist"
jobs = 2
`)
	nested := filepath.Join(root, "views", "cards")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m, err := Discover(nested)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if m.Root != root {
		t.Fatalf("root = %q, want %q", m.Root, root)
	}
	want := compiler.Options{
		RuntimeModule: "my-runtime",
		IdomModule:    compiler.DefaultIdomModule,
		ContextName:   "ctx",
		KeyLength:     9,
	}
	if diff := cmp.Diff(want, m.CompilerOptions()); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if m.Output.Format != FormatJSON || m.Output.Jobs != 2 {
		t.Fatalf("output section = %+v", m.Output)
	}
	if got := m.OutputDir(); got != filepath.Join(root, "dist") {
		t.Fatalf("output dir = %q", got)
	}
}

func TestDiscoverWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	m, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if m.Path != "" {
		t.Skipf("a %s above %s is in effect", ManifestName, dir)
	}
	if m.Root != "" || m.Output.Format != FormatYAML {
		t.Fatalf("unexpected defaults %+v", m)
	}
}

func TestLoadManifestRejects(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{"unknown key", "[compiler]\nruntme = \"x\"\n", ErrUnknownKey},
		{"unknown section", "[outptu]\nformat = \"json\"\n", ErrUnknownKey},
		{"bad format", "[output]\nformat = \"xml\"\n", ErrBadValue},
		{"short keys", "[compiler]\nkey_length = 2\n", ErrBadValue},
		{"absolute dir", "[output]\ndir = \"/tmp/out\"\n", ErrBadValue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tc.content)
			_, err := LoadManifest(path)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadManifestSyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, "[compiler\n")
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestKeyPathRelativeToProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "")
	m, err := LoadManifest(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	file := filepath.Join(root, "views", "page.yaml")
	if got := KeyPath(file, m); got != "views/page.yaml" {
		t.Fatalf("key path = %q", got)
	}
}

func TestKeyPathFallsBackToWorktree(t *testing.T) {
	root := t.TempDir()
	if _, err := git.PlainInit(root, false); err != nil {
		t.Fatalf("git init: %v", err)
	}
	file := filepath.Join(root, "a", "b.yaml")
	writeFile(t, file, "")
	if got := KeyPath(file, Default()); got != "a/b.yaml" {
		t.Fatalf("key path = %q", got)
	}
	if wt, ok := WorktreeRoot(filepath.Join(root, "a")); !ok || wt != root {
		t.Fatalf("worktree root = %q, %v", wt, ok)
	}
}

func TestDigest(t *testing.T) {
	a := DigestOf([]byte("a"))
	b := DigestOf([]byte("b"))
	if a.IsZero() || a == b {
		t.Fatalf("digests should differ and be non-zero")
	}
	if Combine(a, b) == Combine(b, a) {
		t.Fatalf("combine must depend on order")
	}
	if len(a.String()) != 64 {
		t.Fatalf("hex digest %q", a.String())
	}
}
