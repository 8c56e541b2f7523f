package compiler

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/observ"
	"weave/internal/source"
	"weave/internal/trace"
	"weave/internal/traverse"
)

// Extension contributes handlers to either pass. Its handlers run after the
// core handlers registered for the same kind and phase.
type Extension struct {
	Name    string
	Analyse *traverse.Visitor[*State]
	Convert *traverse.Visitor[*State]
}

// Compiler holds the merged dispatch tables. It is immutable after New and
// may compile many units concurrently.
type Compiler struct {
	opts       Options
	analyse    *traverse.Table[*State]
	convert    *traverse.Table[*State]
	extensions []string
}

// New merges the core passes with exts, in order.
func New(opts Options, exts ...Extension) *Compiler {
	analyse := []*traverse.Table[*State]{traverse.Explode(analyseVisitor())}
	convert := []*traverse.Table[*State]{traverse.Explode(convertVisitor())}
	names := make([]string, 0, len(exts))
	for _, ext := range exts {
		analyse = append(analyse, traverse.Explode(ext.Analyse))
		convert = append(convert, traverse.Explode(ext.Convert))
		names = append(names, ext.Name)
	}
	return &Compiler{
		opts:       opts.withDefaults(),
		analyse:    traverse.Merge(analyse...),
		convert:    traverse.Merge(convert...),
		extensions: names,
	}
}

// Options returns the effective options.
func (c *Compiler) Options() Options { return c.opts }

// Extensions lists the merged extension names.
func (c *Compiler) Extensions() []string { return c.extensions }

// Unit is one template to compile.
type Unit struct {
	Root   *ast.Node
	Files  *source.FileSet
	FileID source.FileID
	// Path names the unit in traces; its stem names the component.
	Path string
	// KeyPath seeds element keys; defaults to Path.
	KeyPath string
	// Name overrides the component name.
	Name     string
	Reporter diag.Reporter
	Timer    *observ.Timer
}

// Compile runs analyse then convert over u.Root. The first error aborts the
// compile; there is no partial output.
func (c *Compiler) Compile(ctx context.Context, u Unit) (*State, error) {
	keyPath := u.KeyPath
	if keyPath == "" {
		keyPath = u.Path
	}
	st := NewState(c.opts, keyPath)
	st.Files = u.Files
	st.FileID = u.FileID
	if u.Reporter != nil {
		st.Reporter = u.Reporter
	}
	st.Name = u.Name
	if st.Name == "" {
		st.Name = componentName(strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path)))
	}
	// default export занимает имя компонента
	st.MarkUsed(st.Name)

	if u.Root == nil || u.Root.Kind != ast.KindTemplate {
		span := source.Span{File: u.FileID}
		if u.Root != nil {
			span = u.Root.Span
		}
		return nil, st.Error(diag.TplMissingTemplate, "document has no template root", span, "")
	}

	tr := trace.FromContext(ctx)
	mod := trace.Begin(tr, trace.ScopeTemplate, "compile", trace.CurrentSpan(ctx).SpanID).WithExtra("unit", u.Path)
	st.Session.Tracer = tr
	st.Session.SpanID = mod.ID()

	passes := []struct {
		name  string
		table *traverse.Table[*State]
	}{
		{"analyse", c.analyse},
		{"convert", c.convert},
	}
	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			mod.End("cancelled")
			return nil, err
		}
		idx := -1
		if u.Timer != nil {
			idx = u.Timer.Begin(pass.name)
		}
		sp := trace.Begin(tr, trace.ScopePass, pass.name, mod.ID())
		err := st.Session.Traverse(u.Root, pass.table.Bind(st))
		if err != nil {
			sp.End("error")
		} else {
			sp.End("")
		}
		if u.Timer != nil {
			u.Timer.End(idx, u.Path)
		}
		if err != nil {
			mod.End("error")
			return nil, err
		}
	}
	if err := st.checkLowered(); err != nil {
		mod.End("error")
		return nil, err
	}
	mod.End(fmt.Sprintf("%d statements", len(st.Program.Children(ast.FieldBody))))
	return st, nil
}

// checkLowered rejects output that still holds template constructs, i.e.
// kinds no core handler or extension converted.
func (s *State) checkLowered() error {
	var bad *ast.Node
	ast.Walk(s.Program, func(n *ast.Node) bool {
		if bad != nil {
			return false
		}
		if ast.IsTemplateOnly(n.Kind) {
			bad = n
			return false
		}
		return true
	})
	if bad == nil {
		return nil
	}
	return s.Error(diag.TplUnsupported, fmt.Sprintf("%s has no lowering", bad.Kind), bad.Span,
		fmt.Sprintf("compile with an extension that converts %s", bad.Kind))
}
