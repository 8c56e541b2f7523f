package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"weave/internal/ast"
)

// Output formats understood by WriteProgram.
const (
	FormatYAML   = ast.FormatYAML
	FormatJSON   = ast.FormatJSON
	FormatSketch = "sketch"
)

// outputExt maps a format to the extension of written files.
var outputExt = map[string]string{
	FormatYAML:   ".yaml",
	FormatJSON:   ".json",
	FormatSketch: ".js",
}

// ValidFormat reports whether format is a known output format.
func ValidFormat(format string) bool {
	_, ok := outputExt[format]
	return ok
}

// WriteProgram prints the compiled program of res.
func WriteProgram(w io.Writer, res *Result, format string) error {
	if res.Program == nil {
		return fmt.Errorf("%s: nothing to write", res.Path)
	}
	if format == FormatSketch {
		_, err := io.WriteString(w, ast.Sketch(res.Program))
		return err
	}
	return ast.Encode(w, &ast.Document{File: res.KeyPath, Root: res.Program}, format)
}

// OutputPath places the output for doc under dir, mirroring its position
// below root.
func OutputPath(doc, root, dir, format string) string {
	rel := filepath.Base(doc)
	if root != "" {
		if r, err := filepath.Rel(root, doc); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(dir, rel+outputExt[format])
}

// WriteOutputs writes every successful result below dir and returns the
// written paths in input order.
func WriteOutputs(results []Result, root, dir, format string, opts Options) ([]string, error) {
	if !ValidFormat(format) {
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	var written []string
	for i := range results {
		res := &results[i]
		if res.Program == nil || res.Bag.HasErrors() {
			continue
		}
		idx := -1
		if opts.Timer != nil {
			idx = opts.Timer.Begin("write")
		}
		start := time.Now()
		out := OutputPath(res.Path, root, dir, format)
		err := writeFile(out, res, format)
		if opts.Timer != nil {
			opts.Timer.End(idx, res.Path)
		}
		if err != nil {
			emit(opts.Progress, Event{File: res.Path, Stage: StageWrite, Status: StatusError, Err: err})
			return written, err
		}
		emit(opts.Progress, Event{File: res.Path, Stage: StageWrite, Status: StatusDone, Elapsed: time.Since(start)})
		written = append(written, out)
	}
	return written, nil
}

func writeFile(path string, res *Result, format string) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path) // #nosec G304 -- output path is derived from inputs
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteProgram(f, res, format)
}
