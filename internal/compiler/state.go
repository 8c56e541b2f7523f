package compiler

import (
	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/diagfmt"
	"weave/internal/source"
	"weave/internal/traverse"
)

// Path data keys shared by analyse and convert.
const (
	dataBinding     = "binding"
	dataImports     = "imports"
	dataLoopKey     = "loop.key"
	dataLoopValue   = "loop.value"
	dataEmbedObject = "embed.object"
)

// State is everything one compilation unit shares between its passes. It is
// not safe for concurrent use; every unit gets its own.
type State struct {
	Options Options
	Files   *source.FileSet
	FileID  source.FileID
	// Program accumulates the output module.
	Program  *ast.Node
	Session  *traverse.Session
	Reporter diag.Reporter
	// Name is the default-exported component name.
	Name string

	imports   map[string]*importEntry
	importEnd int

	used map[string]bool
	uids map[string]int
	keys *keyGen

	spaceless int
	extends   bool
	parentObj string
	blocks    map[*ast.Node]map[string]source.Span
	// macros by source name; root-scope bindings may be shadowed by
	// self-imports of the same name
	macros map[string]*traverse.Binding
}

// NewState prepares a state for one unit. keyPath seeds GenerateKey.
func NewState(opts Options, keyPath string) *State {
	opts = opts.withDefaults()
	sess := traverse.NewSession()
	sess.ContextName = opts.ContextName
	return &State{
		Options:  opts,
		Program:  ast.JSProgram(),
		Session:  sess,
		Reporter: diag.NopReporter,
		imports:  make(map[string]*importEntry),
		used:     make(map[string]bool),
		uids:     make(map[string]int),
		keys:     newKeyGen(keyPath, opts.KeyLength),
		blocks:   make(map[*ast.Node]map[string]source.Span),
		macros:   make(map[string]*traverse.Binding),
	}
}

// macro returns the template's macro declared as name.
func (s *State) macro(name string) (*traverse.Binding, bool) {
	mb, ok := s.macros[name]
	return mb, ok
}

// Error builds the error that aborts the compile. The message carries a
// source excerpt when the span points into a known file.
func (s *State) Error(code diag.Code, msg string, span source.Span, advice string) error {
	d := diag.NewError(code, span, msg)
	if advice != "" {
		d = d.WithAdvice(advice)
	}
	return s.fail(d)
}

func (s *State) fail(d diag.Diagnostic) error {
	e := &diag.Error{Diagnostic: d}
	if s.Files != nil && d.Primary != source.NoSpan && s.Files.Get(d.Primary.File) != nil {
		e.Rendered = diagfmt.Excerpt(s.Files, d)
	}
	return e
}

// Warn reports a non-fatal diagnostic to the injected sink.
func (s *State) Warn(code diag.Code, msg string, span source.Span, advice string) {
	b := diag.ReportWarning(s.Reporter, code, span, msg)
	if advice != "" {
		b.WithAdvice(advice)
	}
	b.Emit()
}

func (s *State) contextName() string {
	return s.Options.ContextName
}

// emit appends a statement to the output program.
func (s *State) emit(n *ast.Node) {
	s.Program.Append(ast.FieldBody, n)
}

func (s *State) runtime(name string) *ast.Node {
	return ast.JSIdent(s.AddImportFrom(s.Options.RuntimeModule, name, name))
}
