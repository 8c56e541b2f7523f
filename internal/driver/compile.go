package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"weave/internal/ast"
	"weave/internal/compiler"
	"weave/internal/diag"
	"weave/internal/observ"
	"weave/internal/project"
	"weave/internal/project/dag"
	"weave/internal/source"
	"weave/internal/trace"
	"weave/internal/traverse"
)

// Options configure a batch compile.
type Options struct {
	Compiler   compiler.Options
	Extensions []compiler.Extension
	// Jobs limits parallel workers; zero means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	// Cache is optional; nil disables caching.
	Cache    *DiskCache
	Timer    *observ.Timer
	Progress ProgressSink
	// Manifest anchors key paths and the file set base dir.
	Manifest *project.Manifest
}

// Result is the outcome for one document. Program is nil when Bag has
// errors.
type Result struct {
	Path    string
	KeyPath string
	FileID  source.FileID
	Name    string
	Program *ast.Node
	// Statements counts top-level statements of Program.
	Statements uint32
	Bag        *diag.Bag
	Cached     bool
}

// CompileFiles compiles every document in paths. Documents fail one by one:
// their errors land in their bags and the returned error is reserved for
// cancellation.
func CompileFiles(ctx context.Context, paths []string, opts Options) (*source.FileSet, []Result, error) {
	files := source.NewFileSet()
	if opts.Manifest != nil && opts.Manifest.Root != "" {
		files.SetBaseDir(opts.Manifest.Root)
	}
	if len(paths) == 0 {
		return files, nil, nil
	}

	tr := trace.FromContext(ctx)
	run := trace.Begin(tr, trace.ScopeDriver, "compile_files", trace.CurrentSpan(ctx).SpanID).
		WithExtra("files", fmt.Sprint(len(paths)))
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: run.ID()})

	// FileSet is not safe for concurrent writes: load everything up front.
	docs := make([]*document, len(paths))
	for i, path := range paths {
		idx := -1
		if opts.Timer != nil {
			idx = opts.Timer.Begin("load")
		}
		start := time.Now()
		docs[i] = loadDocument(files, path)
		if opts.Timer != nil {
			opts.Timer.End(idx, path)
		}
		ev := Event{File: path, Stage: StageLoad, Status: StatusDone, Elapsed: time.Since(start)}
		if docs[i].err != nil {
			ev.Status = StatusError
			ev.Err = errors.New(docs[i].err.Message)
		}
		emit(opts.Progress, ev)
	}

	// lowering rewrites roots in place: read parents first
	units := make([]dag.Unit, len(docs))
	for i, d := range docs {
		units[i] = inheritance(d)
	}

	comp := compiler.New(opts.Compiler, opts.Extensions...)
	optsKey := optionsDigest(comp)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i := range docs {
		g.Go(func() error {
			res, err := compileOne(gctx, comp, files, docs[i], optsKey, opts)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		run.End("cancelled")
		return files, results, err
	}
	reportCycles(units, results)
	run.End("")
	return files, results, nil
}

func compileOne(ctx context.Context, comp *compiler.Compiler, files *source.FileSet, d *document, optsKey project.Digest, opts Options) (Result, error) {
	res := Result{Path: d.path, FileID: d.file, Bag: diag.NewBag(opts.MaxDiagnostics)}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if d.err != nil {
		res.Bag.Add(*d.err)
		return res, nil
	}

	keyFile := d.path
	if d.doc.Source != "" {
		keyFile = files.Get(d.file).Path
	}
	res.KeyPath = project.KeyPath(keyFile, opts.Manifest)

	start := time.Now()
	emit(opts.Progress, Event{File: d.path, Stage: StageCompile, Status: StatusWorking})

	key := cacheKey(files, d, res.KeyPath, optsKey)
	if opts.Cache != nil {
		var payload DiskPayload
		if ok, err := opts.Cache.Get(key, &payload); err == nil && ok {
			if doc, err := ast.Decode(payload.Program, d.file); err == nil {
				res.Name = payload.Name
				res.Program = doc.Root
				res.Statements = payload.Statements
				res.Cached = true
				for _, dg := range restoreDiagnostics(payload.Diagnostics, d.file) {
					res.Bag.Add(dg)
				}
				emit(opts.Progress, Event{File: d.path, Stage: StageCompile, Status: StatusCached, Elapsed: time.Since(start)})
				return res, nil
			}
		}
	}

	unitPath := d.path
	if d.doc.File != "" {
		unitPath = d.doc.File
	}
	st, err := comp.Compile(ctx, compiler.Unit{
		Root:     d.doc.Root,
		Files:    files,
		FileID:   d.file,
		Path:     unitPath,
		KeyPath:  res.KeyPath,
		Reporter: diag.BagReporter{Bag: res.Bag},
		Timer:    opts.Timer,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return res, err
		}
		res.Bag.Add(failure(err, d))
		emit(opts.Progress, Event{File: d.path, Stage: StageCompile, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return res, nil
	}

	res.Name = st.Name
	res.Program = st.Program
	n, err := safecast.Conv[uint32](len(st.Program.Children(ast.FieldBody)))
	if err != nil {
		return res, fmt.Errorf("%s: %w", d.path, err)
	}
	res.Statements = n

	if opts.Cache != nil && !res.Bag.HasErrors() {
		var buf bytes.Buffer
		if err := ast.Encode(&buf, &ast.Document{Root: st.Program}, ast.FormatJSON); err == nil {
			// кэш best-effort: ошибка записи не ломает компиляцию
			_ = opts.Cache.Put(key, &DiskPayload{
				Name:        res.Name,
				KeyPath:     res.KeyPath,
				Program:     buf.Bytes(),
				Statements:  res.Statements,
				Diagnostics: cacheDiagnostics(res.Bag.Items()),
			})
		}
	}
	emit(opts.Progress, Event{File: d.path, Stage: StageCompile, Status: StatusDone, Elapsed: time.Since(start)})
	return res, nil
}

// failure turns a compile error into the unit's diagnostic.
func failure(err error, d *document) diag.Diagnostic {
	if de, ok := diag.AsError(err); ok {
		return de.Diagnostic
	}
	span := source.Span{File: d.file}
	if d.doc != nil && d.doc.Root != nil {
		span = d.doc.Root.Span
	}
	var inv *traverse.InvariantError
	if errors.As(err, &inv) {
		return diag.NewError(diag.CmpInvariant, span, inv.Error()).
			WithAdvice("a compiler extension misused the traversal API")
	}
	return diag.NewError(diag.CmpInvariant, span, err.Error())
}

// optionsDigest covers everything besides the inputs that shapes output.
func optionsDigest(c *compiler.Compiler) project.Digest {
	o := c.Options()
	return project.DigestOf(fmt.Appendf(nil, "schema=%d runtime=%s idom=%s ctx=%s keylen=%d ext=%s",
		diskCacheSchemaVersion, o.RuntimeModule, o.IdomModule, o.ContextName, o.KeyLength,
		strings.Join(c.Extensions(), ",")))
}

func cacheKey(files *source.FileSet, d *document, keyPath string, optsKey project.Digest) project.Digest {
	var src project.Digest
	if d.doc.Source != "" {
		src = project.Digest(files.Get(d.file).Hash)
	}
	return project.Combine(project.DigestOf(d.raw), src, optsKey, project.DigestOf([]byte(keyPath)))
}
