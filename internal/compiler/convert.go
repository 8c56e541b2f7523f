package compiler

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/traverse"
)

func convertVisitor() *traverse.Visitor[*State] {
	return traverse.NewVisitor[*State]("convert").
		Enter(ast.KindTemplate, convertTemplateEnter).
		Exit(ast.KindTemplate, convertTemplateExit).
		Exit(ast.KindIdentifier, convertIdentifier).
		Exit(ast.AliasExpression, markHost).
		Exit(ast.KindObjectProperty, markHost).
		Exit(ast.KindSetAssignment, convertSetAssignment).
		Exit(ast.KindSet, convertSet).
		Exit(ast.KindBlock, convertBlock).
		Exit(ast.KindBlockCall, convertBlockCall).
		Exit(ast.KindMacro, convertMacro).
		Enter(ast.AliasImport, convertImport).
		Enter(ast.KindSpaceless, spacelessEnter).
		Exit(ast.KindSpaceless, spacelessExit).
		Enter(ast.KindText, spacelessText).
		Exit(ast.KindIf, convertIf).
		Exit(ast.KindFor, convertFor).
		Exit(ast.KindInclude, convertInclude).
		Enter(ast.KindEmbed, convertEmbedEnter).
		Exit(ast.KindEmbed, convertEmbedExit).
		Exit(ast.KindFilter, convertFilter)
}

func markHost(p *traverse.Path, _ *State) error {
	ast.MarkHost(p.Node)
	return nil
}

func convertTemplateEnter(p *traverse.Path, s *State) error {
	init := ast.JSObject()
	if parent := p.Node.Child(ast.FieldParent); parent != nil {
		s.parentObj = s.AddImportFrom(parent.Value, templateObject, "_parent")
		s.extends = true
		init = ast.JSCall(ast.JSMember(ast.JSIdent("Object"), "create"), ast.JSIdent(s.parentObj))
	}
	s.emit(ast.JSExport(ast.JSVar("const", ast.JSIdent(templateObject), init)))
	return nil
}

func convertTemplateExit(p *traverse.Path, s *State) error {
	ctx := s.contextName()
	body := s.hoist(p.Scope)
	body = append(body, p.Node.Children(ast.FieldBody)...)
	if s.extends {
		// дочерний шаблон рендерит родителя со своими блоками
		render := ast.JSMember(ast.JSMember(ast.JSIdent(s.parentObj), "render"), "call")
		body = append(body, ast.JSReturn(ast.JSCall(render, ast.JSThis(), ast.JSIdent(ctx))))
	}
	p.Node.SetChildren(ast.FieldBody, nil)

	s.emit(ast.JSExprStmt(ast.JSAssign(
		ast.JSMember(ast.JSIdent(templateObject), "render"),
		ast.JSFuncExpr([]*ast.Node{ast.JSIdent(ctx)}, body...),
	)))
	s.emit(ast.JSExportDefault(ast.JSFunc(s.Name, []*ast.Node{ast.JSIdent("props")},
		ast.JSReturn(ast.JSCall(ast.JSMember(ast.JSIdent(templateObject), "render"), ast.JSIdent("props"))),
	)))
	return nil
}

// useScope is the scope an expression is evaluated in. A loop sequence runs
// before the loop body exists, so it reads through the loop's parent.
func useScope(p *traverse.Path) *traverse.Scope {
	sc := p.Scope
	if sc == nil || sc.Node.Kind != ast.KindFor || sc.Parent == nil {
		return sc
	}
	for cur := p; cur != nil; cur = cur.ParentPath {
		if cur.Parent == sc.Node {
			if cur.Field == ast.FieldSequence {
				return sc.Parent
			}
			break
		}
	}
	return sc
}

// read lowers a use of b seen from scope sc.
func (s *State) read(b *traverse.Binding, sc *traverse.Scope) *ast.Node {
	switch b.Kind {
	case traverse.BindingVar:
		if b.Scope.EscapesContext() {
			return ast.JSMember(ast.JSIdent(sc.ContextName()), b.Name)
		}
	case traverse.BindingGlobal, traverse.BindingContext:
		return ast.JSMember(ast.JSIdent(sc.ContextName()), b.Name)
	case traverse.BindingParam:
		if b.Scope.IsRoot() && b.Name == s.contextName() {
			return ast.JSIdent(sc.ContextName())
		}
	}
	return ast.JSIdent(b.LocalName)
}

func convertIdentifier(p *traverse.Path, s *State) error {
	if p.Node.IsHost() {
		return nil
	}
	b, _ := p.Data(dataBinding).(*traverse.Binding)
	if b == nil {
		return nil
	}
	if b.Import != nil && b.Import.Self && b.Import.Namespace {
		return s.Error(diag.TplUnsupported, fmt.Sprintf("%q can only be used to call macros", b.Name), p.Node.Span,
			fmt.Sprintf("write %s.macro_name(...)", b.Name))
	}
	return p.ReplaceWithJS(s.read(b, useScope(p)))
}

func convertSetAssignment(p *traverse.Path, s *State) error {
	b, _ := p.Data(dataBinding).(*traverse.Binding)
	if b == nil {
		return nil
	}
	value := p.Node.Child(ast.FieldValue)
	if value == nil {
		value = ast.JSNull()
	}
	var target *ast.Node
	if b.Scope.EscapesContext() {
		target = ast.JSMember(ast.JSIdent(p.Scope.ContextName()), b.Name)
	} else {
		target = ast.JSIdent(b.LocalName)
	}
	return p.ReplaceWithJS(ast.JSExprStmt(ast.JSAssign(target, value)))
}

func convertSet(p *traverse.Path, _ *State) error {
	return spliceBody(p, p.Node.Children(ast.FieldAssignments))
}

// spliceBody puts nodes in place of p, or drops p when there are none.
func spliceBody(p *traverse.Path, nodes []*ast.Node) error {
	switch {
	case len(nodes) == 0:
		return p.Remove()
	case p.Listed():
		_, err := p.ReplaceWithMultipleJS(nodes...)
		return err
	case len(nodes) == 1:
		return p.ReplaceWithJS(nodes[0])
	}
	return p.ReplaceWithJS(ast.JSBlock(nodes...))
}

// blockFunc names the render function of block name: "title" -> "renderTitle".
func blockFunc(name string) string {
	return "render" + cases.Title(language.Und, cases.NoLower).String(normalizeIdent(name))
}

func convertBlock(p *traverse.Path, s *State) error {
	sc := p.Scope
	fn := blockFunc(p.Node.Name)
	owner := templateObject
	embed := p.FindParentKind(ast.KindEmbed)
	if embed != nil {
		if obj, ok := embed.Data(dataEmbedObject).(string); ok {
			owner = obj
		}
	}

	body := s.hoist(sc)
	body = append(body, p.Node.Children(ast.FieldBody)...)
	s.emit(ast.JSExprStmt(ast.JSAssign(
		ast.JSMember(ast.JSIdent(owner), fn),
		ast.JSFuncExpr([]*ast.Node{ast.JSIdent(s.contextName())}, body...),
	)))

	override := p.Parent != nil && p.Parent.Kind == ast.KindEmbed && p.Field == ast.FieldBlocks
	if override || (s.extends && embed == nil && p.FindParentKind(ast.KindBlock) == nil) {
		return p.Remove()
	}
	ctx := s.contextName()
	if sc.Parent != nil {
		ctx = sc.Parent.ContextName()
	}
	return p.ReplaceWithJS(callBlock(fn, ctx))
}

func callBlock(fn, ctx string) *ast.Node {
	return ast.JSExprStmt(ast.JSCall(ast.JSMember(ast.JSThis(), fn), ast.JSIdent(ctx)))
}

func convertBlockCall(p *traverse.Path, _ *State) error {
	return p.ReplaceWithJS(callBlock(blockFunc(p.Node.Name), p.Scope.ContextName()))
}

func convertMacro(p *traverse.Path, s *State) error {
	mb, _ := p.Data(dataBinding).(*traverse.Binding)
	if mb == nil {
		return s.Error(diag.TplUnsupported, "macro was not analysed", p.Node.Span, "")
	}
	sc := p.Scope

	var names []string
	for _, prm := range p.Node.Children(ast.FieldParams) {
		names = append(names, prm.Name)
	}
	params := make([]*ast.Node, 0, len(names)+1)
	for _, n := range names {
		params = append(params, ast.JSIdent(n))
	}
	if vb := sc.OwnBinding(varargsName); vb != nil && vb.Kind == traverse.BindingParam && vb.Referenced() {
		params = append(params, ast.JSRest(ast.JSIdent(varargsName)))
		names = append(names, varargsName)
	}

	var body []*ast.Node
	if sc.OwnsContext() && (sc.EscapesContext() || sc.ContextRead()) {
		props := make([]*ast.Node, len(names))
		for i, n := range names {
			props[i] = ast.JSProperty(n, ast.JSIdent(n))
		}
		body = append(body, ast.JSVar("const", ast.JSIdent(sc.ContextName()), ast.JSObject(props...)))
	}
	body = append(body, s.hoist(sc)...)
	body = append(body, p.Node.Children(ast.FieldBody)...)

	s.emit(ast.JSExport(ast.JSFunc(mb.LocalName, params, body...)))
	return p.Remove()
}

// hoist returns the declarations a scope needs at the top of its lowered
// body. It runs at scope exit, once escape flags are final.
func (s *State) hoist(sc *traverse.Scope) []*ast.Node {
	if sc == nil {
		return nil
	}
	var out []*ast.Node
	if sc.OwnsContext() && sc.Node.Kind != ast.KindMacro {
		sub := ast.JSCall(s.runtime("createSubContext"), ast.JSIdent(sc.ParentContextName()))
		out = append(out, ast.JSVar("const", ast.JSIdent(sc.ContextName()), sub))
	}
	for _, b := range sc.Bindings() {
		switch {
		case b.Contextual && !sc.EscapesContext():
			out = append(out, ast.JSVar("let", ast.JSIdent(b.LocalName), nil))
		case b.Kind == traverse.BindingConst && b.Init != nil:
			out = append(out, ast.JSVar("const", ast.JSIdent(b.LocalName), b.Init))
		}
	}
	return out
}
