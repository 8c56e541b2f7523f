package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/source"
)

// documentExts are the serialized AST formats the driver reads.
var documentExts = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// IsDocument reports whether path looks like a serialized AST document.
func IsDocument(path string) bool {
	return documentExts[strings.ToLower(filepath.Ext(path))]
}

// ListDocuments returns every AST document below dir, sorted for a
// deterministic order. Hidden directories and the output dir are skipped.
func ListDocuments(dir, skip string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || (skip != "" && sameDir(path, skip))) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsDocument(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func sameDir(a, b string) bool {
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	return errA == nil && errB == nil && aa == bb
}

// document is one loaded input, ready to compile.
type document struct {
	path string
	raw  []byte
	doc  *ast.Document
	file source.FileID
	err  *diag.Diagnostic
}

// loadDocument reads and decodes path. Spans are bound to the template
// source named by the document, or to an empty stand-in for the document
// itself. Must run before workers start: it mutates files.
func loadDocument(files *source.FileSet, path string) *document {
	d := &document{path: path}
	raw, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		d.file = files.AddVirtual(path, nil)
		d.fail(diag.IOLoadFailure, fmt.Sprintf("failed to load %s: %v", path, err))
		return d
	}
	d.raw = raw

	doc, err := ast.Decode(raw, 0)
	if err != nil {
		d.file = files.AddVirtual(path, raw)
		msg := fmt.Sprintf("failed to decode %s: %v", path, err)
		var de *ast.DecodeError
		if errors.As(err, &de) {
			msg = fmt.Sprintf("failed to decode %s:%d:%d: %s", path, de.Line, de.Column, de.Msg)
		}
		d.fail(diag.IODecodeFailure, msg)
		return d
	}
	d.doc = doc

	if doc.Source != "" {
		src := doc.Source
		if !filepath.IsAbs(src) {
			src = filepath.Join(filepath.Dir(path), src)
		}
		id, err := files.Load(src)
		if err != nil {
			d.file = files.AddVirtual(path, nil)
			d.fail(diag.IOLoadFailure, fmt.Sprintf("failed to load template source %s: %v", src, err))
			return d
		}
		d.file = id
		rebind(doc.Root, id, false)
		return d
	}
	d.file = files.AddVirtual(path, nil)
	rebind(doc.Root, d.file, true)
	return d
}

// rebind moves every span of root to file; offsets are dropped when they
// point into nothing.
func rebind(root *ast.Node, file source.FileID, clear bool) {
	ast.Walk(root, func(n *ast.Node) bool {
		if clear {
			n.Span = source.Span{File: file}
		} else {
			n.Span.File = file
		}
		return true
	})
}

func (d *document) fail(code diag.Code, msg string) {
	dg := diag.NewError(code, source.Span{File: d.file}, msg)
	d.err = &dg
}
