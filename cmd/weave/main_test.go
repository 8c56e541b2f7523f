package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"weave/internal/ast"
	"weave/internal/idom"
)

const pageDoc = `file: views/page.twig
root:
  type: Template
  body:
    - type: Text
      value: hi
`

const pageSketch = `import {text} from "weave-idom";
export const _template = {};
_template.render = function (_context) { text("hi"); };
export default function Page(props) { return _template.render(props); }`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

// run executes the CLI with args and returns stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root, a := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.ExecuteContext(context.Background())
	a.cleanup()
	return stdout.String(), stderr.String(), err
}

func TestCompileToStdout(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"page.yaml": pageDoc})

	stdout, stderr, err := run(t, "compile", "--ui", "off", "--no-cache", "--format", "sketch", "--stdout",
		filepath.Join(dir, "page.yaml"))
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	if diff := cmp.Diff(pageSketch+"\n", stdout); diff != "" {
		t.Errorf("stdout (-want +got):\n%s", diff)
	}
	if !strings.Contains(stderr, "compiled 1 of 1 documents") {
		t.Errorf("missing summary in stderr:\n%s", stderr)
	}
}

func TestCompileUsesManifest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"weave.toml": `[output]
format = "json"
dir = "dist"

[cache]
dir = ".cache"
`,
		"views/page.yaml": pageDoc,
	})

	if _, stderr, err := run(t, "compile", "--ui", "off", dir); err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	out := filepath.Join(dir, "dist", "views", "page.json")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected %s: %v", out, err)
	}
	doc, err := ast.Decode(data, 0)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got := ast.Sketch(doc.Root); got != pageSketch {
		t.Errorf("written program:\n%s", got)
	}

	// второй прогон берёт программу из кэша и не подбирает dist/
	_, stderr, err := run(t, "compile", "--ui", "off", dir)
	if err != nil {
		t.Fatalf("second compile: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "compiled 1 of 1 documents (1 cached)") {
		t.Errorf("expected a cache hit:\n%s", stderr)
	}
}

func TestCompileReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"good.yaml": pageDoc,
		"bad.yaml":  "type: Text\nvalue: hi\n",
	})
	stdout, stderr, err := run(t, "compile", "--ui", "off", "--no-cache", "--stdout", "--format", "sketch", dir)
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	if !strings.Contains(stderr, "ERROR TPL1006: document has no template root") {
		t.Errorf("missing diagnostic:\n%s", stderr)
	}
	if !strings.Contains(stderr, "compiled 1 of 2 documents, 1 failed") {
		t.Errorf("missing summary:\n%s", stderr)
	}
	if stdout != pageSketch+"\n" {
		t.Errorf("successful document not printed:\n%s", stdout)
	}
}

func TestCompileQuietJSONDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.yaml": "type: Text\n"})
	_, stderr, err := run(t, "--quiet", "compile", "--ui", "off", "--no-cache", "--stdout", "--diag-format", "json", dir)
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	if !strings.Contains(stderr, `"TPL1006"`) {
		t.Errorf("json diagnostics missing code:\n%s", stderr)
	}
	if strings.Contains(stderr, "compiled") {
		t.Errorf("quiet run printed a summary:\n%s", stderr)
	}
}

func TestCompileRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"page.yaml": pageDoc})
	cases := [][]string{
		{"compile", "--format", "xml", dir},
		{"compile", "--ui", "maybe", dir},
		{"compile", "--diag-format", "sarif", dir},
		{"--color", "sometimes", "compile", dir},
		{"--trace-level", "loud", "compile", dir},
	}
	for _, args := range cases {
		if _, _, err := run(t, args...); err == nil || errors.Is(err, errFailed) {
			t.Errorf("%v: expected a usage error, got %v", args, err)
		}
	}
}

func TestCompileWithTimings(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"page.yaml": pageDoc})
	_, stderr, err := run(t, "--timings", "compile", "--ui", "off", "--no-cache", "--stdout", dir)
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	for _, want := range []string{"timings:", "analyse", "convert", "total"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("timings output lacks %q:\n%s", want, stderr)
		}
	}
}

func TestDump(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"page.yaml": pageDoc})
	path := filepath.Join(dir, "page.yaml")

	stdout, _, err := run(t, "dump", path)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.HasPrefix(stdout, "Template\n") || !strings.Contains(stdout, `Text value="hi"`) {
		t.Errorf("tree dump:\n%s", stdout)
	}

	stdout, _, err = run(t, "dump", "--compiled", "--format", "sketch", path)
	if err != nil {
		t.Fatalf("dump --compiled: %v", err)
	}
	if stdout != pageSketch+"\n" {
		t.Errorf("compiled dump:\n%s", stdout)
	}

	if _, _, err := run(t, "dump", "--format", "xml", path); err == nil {
		t.Errorf("unknown dump format accepted")
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := run(t, "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	for _, want := range []string{`"tool": "weave"`, `"git_commit": "unknown"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("version output lacks %s:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "build_date") {
		t.Errorf("date shown without --date:\n%s", stdout)
	}
}

func TestResolveExtensions(t *testing.T) {
	exts, err := resolveExtensions(nil)
	if err != nil || len(exts) != 1 || exts[0].Name != idom.Name {
		t.Fatalf("default extensions = %v, %v", exts, err)
	}
	exts, err = resolveExtensions([]string{"idom", " idom"})
	if err != nil || len(exts) != 1 {
		t.Fatalf("duplicates not folded: %v, %v", exts, err)
	}
	if _, err := resolveExtensions([]string{"jsx"}); err == nil {
		t.Errorf("unknown extension accepted")
	}
}

func TestParseSwitch(t *testing.T) {
	for in, want := range map[string]switchMode{"": switchAuto, "AUTO": switchAuto, " on ": switchOn, "off": switchOff} {
		got, err := parseSwitch("ui", in)
		if err != nil || got != want {
			t.Errorf("parseSwitch(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := parseSwitch("ui", "maybe"); err == nil || !strings.Contains(err.Error(), "--ui") {
		t.Errorf("invalid mode accepted: %v", err)
	}
	if !switchOn.enabled(os.Stderr) || switchOff.enabled(os.Stderr) {
		t.Errorf("explicit modes ignored")
	}
}

func TestProfilingFlags(t *testing.T) {
	dir := t.TempDir()
	cpu := filepath.Join(dir, "cpu.pprof")
	if _, _, err := run(t, "--cpu-profile", cpu, "version"); err != nil {
		t.Fatalf("version: %v", err)
	}
	if _, err := os.Stat(cpu); err != nil {
		t.Errorf("cpu profile not written: %v", err)
	}
}

func TestCompileWritesTrace(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"page.yaml": pageDoc})
	out := filepath.Join(t.TempDir(), "run.ndjson")
	_, stderr, err := run(t, "--trace", out, "--trace-level", "detail",
		"compile", "--ui", "off", "--no-cache", "--stdout", dir)
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"name":"compile_files"`, `"scope":"template"`, `"name":"analyse"`, `"name":"convert"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("trace lacks %s:\n%s", want, data)
		}
	}
}
