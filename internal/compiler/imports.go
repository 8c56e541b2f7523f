package compiler

import (
	"weave/internal/ast"
)

type importEntry struct {
	decl       *ast.Node
	nsDecl     *ast.Node
	sideEffect *ast.Node
	named      map[string]string // exported -> local
	namespace  string
}

// exportDefault keys default imports in the named table.
const exportDefault = "default"

func (s *State) entry(src string) *importEntry {
	e, ok := s.imports[src]
	if !ok {
		e = &importEntry{named: make(map[string]string)}
		s.imports[src] = e
	}
	return e
}

// insertImport keeps import declarations at the top of the program, in the
// order they were first requested.
func (s *State) insertImport(decl *ast.Node) {
	s.Program.Splice(ast.FieldBody, s.importEnd, 0, decl)
	s.importEnd++
}

// AddImportFrom returns the local name bound to exported from src, adding
// `import { exported as local } from src` on first use. hint seeds the local
// name; it defaults to exported.
func (s *State) AddImportFrom(src, exported, hint string) string {
	e := s.entry(src)
	if local, ok := e.named[exported]; ok {
		return local
	}
	if hint == "" {
		hint = exported
	}
	local := s.GenerateUid(hint)
	var spec *ast.Node
	if exported == exportDefault {
		spec = ast.JSImportDefault(local)
	} else {
		spec = ast.JSImportSpec(exported, local)
	}
	// неймспейс-импорт живёт в отдельной декларации, сюда не смешиваем
	switch {
	case e.decl == nil && e.sideEffect != nil:
		e.decl = e.sideEffect
		e.decl.Append(ast.FieldSpecifiers, spec)
	case e.decl == nil:
		e.decl = ast.JSImport(src, spec)
		s.insertImport(e.decl)
	default:
		e.decl.Append(ast.FieldSpecifiers, spec)
	}
	e.named[exported] = local
	return local
}

// AddDefaultImportFrom is AddImportFrom for the default export.
func (s *State) AddDefaultImportFrom(src, hint string) string {
	return s.AddImportFrom(src, exportDefault, hint)
}

// AddNamespaceImportFrom returns the local of `import * as local from src`.
func (s *State) AddNamespaceImportFrom(src, hint string) string {
	e := s.entry(src)
	if e.namespace != "" {
		return e.namespace
	}
	if hint == "" {
		hint = "_ns"
	}
	e.namespace = s.GenerateUid(hint)
	e.nsDecl = ast.JSImport(src, ast.JSImportNamespace(e.namespace))
	s.insertImport(e.nsDecl)
	return e.namespace
}

// EnsureImportFrom makes sure src is loaded, adding a bare `import src` when
// nothing else imports it yet.
func (s *State) EnsureImportFrom(src string) {
	e := s.entry(src)
	if e.decl != nil || e.nsDecl != nil || e.sideEffect != nil {
		return
	}
	e.sideEffect = ast.JSImport(src)
	s.insertImport(e.sideEffect)
}
