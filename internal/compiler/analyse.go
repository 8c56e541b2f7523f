package compiler

import (
	"fmt"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/source"
	"weave/internal/traverse"
)

const varargsName = "varargs"

func analyseVisitor() *traverse.Visitor[*State] {
	return traverse.NewVisitor[*State]("analyse").
		Enter(ast.KindTemplate, analyseTemplate).
		Enter(ast.KindIdentifier, analyseIdentifier).
		Exit(ast.KindSetAssignment, analyseSetAssignment).
		Enter(ast.KindBlock, analyseBlock).
		Enter(ast.KindBlockCall, analyseBlockCall).
		Enter(ast.KindMacro, analyseMacro).
		Exit(ast.KindCallExpression, analyseCall).
		Enter(ast.AliasInclude, analyseInclude).
		Enter(ast.AliasImport, analyseImport).
		Exit(ast.AliasScope, analyseScopeExit)
}

func analyseTemplate(p *traverse.Path, s *State) error {
	if !p.Scope.IsRoot() {
		return s.Error(diag.TplUnsupported, "nested template roots are not supported", p.Node.Span, "")
	}
	if parent := p.Node.Child(ast.FieldParent); parent != nil && parent.Kind != ast.KindStringLiteral {
		return s.Error(diag.TplDynamicSource, "extends needs a string literal", parent.Span, "")
	}
	ctx := s.contextName()
	p.Scope.RegisterBinding(ctx, p, traverse.BindingParam)
	s.MarkUsed(ctx)
	s.MarkUsed(templateObject)
	return nil
}

type identRole uint8

const (
	roleReference identRole = iota
	roleDeclaration
	roleLoopVar
	roleName
)

// identRoleOf classifies an identifier by the slot it sits in.
func identRoleOf(p *traverse.Path) identRole {
	if p.Parent == nil {
		return roleReference
	}
	switch p.Parent.Kind {
	case ast.KindSetAssignment:
		if p.Field == ast.FieldTarget {
			return roleDeclaration
		}
	case ast.KindFor:
		if p.Field == ast.FieldKey || p.Field == ast.FieldValue {
			return roleLoopVar
		}
	case ast.KindMacro:
		if p.Field == ast.FieldParams {
			return roleDeclaration
		}
	case ast.KindImport, ast.KindFrom:
		if p.Field == ast.FieldAlias || p.Field == ast.FieldSource {
			return roleDeclaration
		}
	case ast.KindImportName:
		return roleDeclaration
	case ast.KindMemberExpression:
		if p.Field == ast.FieldProperty && !p.Parent.Has(ast.FlagComputed) {
			return roleName
		}
	case ast.KindObjectProperty:
		if p.Field == ast.FieldKey {
			return roleName
		}
	}
	return roleReference
}

func analyseIdentifier(p *traverse.Path, s *State) error {
	if p.Node.IsHost() {
		return nil
	}
	switch identRoleOf(p) {
	case roleReference:
		b := p.Scope.Reference(p.Node.Name, p)
		p.SetData(dataBinding, b)
	case roleLoopVar:
		return declareLoopVar(p, s)
	}
	return nil
}

func declareLoopVar(p *traverse.Path, s *State) error {
	sc := p.Scope
	name := p.Node.Name
	if sc.Parent != nil {
		if prev := sc.Parent.GetBinding(name); prev != nil && shadowsDeclared(prev, s) {
			what := "an import"
			if prev.Kind == traverse.BindingParam {
				what = "a macro parameter"
			}
			s.Warn(diag.TplShadowedName, fmt.Sprintf("loop variable %q shadows %s", name, what), p.Node.Span, "rename the loop variable")
		}
	}
	b := sc.RegisterBinding(name, p, traverse.BindingVar)
	b.LocalName = s.GenerateUid(name)
	sc.MarkMutated()
	key := dataLoopValue
	if p.Field == ast.FieldKey {
		key = dataLoopKey
	}
	p.ParentPath.SetData(key, b)
	return nil
}

func shadowsDeclared(prev *traverse.Binding, s *State) bool {
	if prev.Import != nil {
		return true
	}
	return prev.Kind == traverse.BindingParam && prev.Name != s.contextName()
}

func analyseSetAssignment(p *traverse.Path, s *State) error {
	target := p.Node.Child(ast.FieldTarget)
	if target == nil {
		return s.Error(diag.TplUnsupported, "set without a target", p.Node.Span, "")
	}
	sc := p.Scope
	b := sc.OwnBinding(target.Name)
	// повторный set в той же области переиспользует привязку
	if b == nil || b.Kind != traverse.BindingVar || !b.Contextual {
		b = sc.RegisterBinding(target.Name, p, traverse.BindingVar)
		b.Contextual = true
		b.LocalName = s.GenerateUid(target.Name)
	}
	sc.MarkMutated()
	p.SetData(dataBinding, b)
	return nil
}

func analyseBlock(p *traverse.Path, s *State) error {
	p.Scope.MarkEscapes()

	ns := p.FindParent(func(pp *traverse.Path) bool {
		return pp.Node.Kind == ast.KindEmbed || pp.Node.Kind == ast.KindTemplate
	})
	var key *ast.Node
	if ns != nil {
		key = ns.Node
	}
	seen := s.blocks[key]
	if seen == nil {
		seen = make(map[string]source.Span)
		s.blocks[key] = seen
	}
	name := p.Node.Name
	if first, dup := seen[name]; dup {
		d := diag.NewError(diag.TplDuplicateBlock, p.Node.Span, fmt.Sprintf("block %q is defined twice", name)).
			WithNote(first, "first defined here").
			WithAdvice("rename one of the blocks")
		return s.fail(d)
	}
	seen[name] = p.Node.Span
	return nil
}

func analyseBlockCall(p *traverse.Path, _ *State) error {
	p.Scope.MarkEscapes()
	return nil
}

func analyseMacro(p *traverse.Path, s *State) error {
	if p.Parent == nil || p.Parent.Kind != ast.KindTemplate || p.Field != ast.FieldBody {
		return s.Error(diag.TplMacroPosition, fmt.Sprintf("macro %q must be declared at template level", p.Node.Name), p.Node.Span,
			"move the macro out of the enclosing block or statement")
	}
	sc := p.Scope
	mb := sc.Parent.RegisterBinding(p.Node.Name, p, traverse.BindingMacro)
	mb.LocalName = s.GenerateUid(p.Node.Name)
	s.macros[p.Node.Name] = mb
	p.SetData(dataBinding, mb)

	for _, param := range p.Node.Children(ast.FieldParams) {
		sc.RegisterBinding(param.Name, nil, traverse.BindingParam)
		s.MarkUsed(param.Name)
	}
	sc.RegisterBinding(varargsName, nil, traverse.BindingParam)
	s.MarkUsed(varargsName)
	// у макроса свой контекст: объект из параметров
	return sc.MintContextName(s.GenerateUid(s.contextName()))
}

// calleeBinding returns the binding of `name(...)` or `alias.name(...)`.
func calleeBinding(p *traverse.Path) *traverse.Binding {
	callee := p.Node.Child(ast.FieldCallee)
	if callee == nil {
		return nil
	}
	cp := p.Get(ast.FieldCallee)
	switch callee.Kind {
	case ast.KindIdentifier:
		b, _ := cp.Data(dataBinding).(*traverse.Binding)
		return b
	case ast.KindMemberExpression:
		if obj := callee.Child(ast.FieldObject); obj != nil && obj.Kind == ast.KindIdentifier {
			b, _ := cp.Get(ast.FieldObject).Data(dataBinding).(*traverse.Binding)
			return b
		}
	}
	return nil
}

func analyseCall(p *traverse.Path, _ *State) error {
	if p.Node.IsHost() {
		return nil
	}
	if b := calleeBinding(p); b != nil && (b.Kind == traverse.BindingMacro || b.Import != nil) {
		p.Scope.MarkEscapes()
	}
	return nil
}

func analyseInclude(p *traverse.Path, s *State) error {
	src := p.Node.Child(ast.FieldSource)
	if src == nil || src.Kind != ast.KindStringLiteral {
		span := p.Node.Span
		if src != nil {
			span = src.Span
		}
		return s.Error(diag.TplDynamicSource, fmt.Sprintf("%s source must be a string literal", p.Node.Kind), span, "")
	}
	if !p.Node.Has(ast.FlagContextFree) {
		p.Scope.MarkEscapes()
	}
	return nil
}

func analyseImport(p *traverse.Path, s *State) error {
	switch p.Scope.Node.Kind {
	case ast.KindTemplate, ast.KindMacro, ast.KindBlock:
	default:
		return s.Error(diag.TplImportPosition, "imports are only allowed in a template, macro or block", p.Node.Span,
			"move the import to the top of the template")
	}
	src := p.Node.Child(ast.FieldSource)
	self := ast.IsSelfSource(src)
	if !self && (src == nil || src.Kind != ast.KindStringLiteral) {
		span := p.Node.Span
		if src != nil {
			span = src.Span
		}
		return s.Error(diag.TplDynamicSource, "import source must be a string literal or _self", span, "")
	}
	var from string
	if !self {
		from = src.Value
	}

	var bindings []*traverse.Binding
	if p.Node.Kind == ast.KindImport {
		alias := p.Node.Child(ast.FieldAlias)
		b := p.Scope.RegisterBinding(alias.Name, p, traverse.BindingConst)
		b.Import = &traverse.ImportOrigin{Source: from, Self: self, Namespace: true}
		bindings = append(bindings, b)
	} else {
		for _, item := range p.GetList(ast.FieldImports) {
			imported := item.Node.Child(ast.FieldImported).Name
			local := item.Node.Child(ast.FieldLocal).Name
			kind := traverse.BindingFunction
			if self {
				kind = traverse.BindingMacro
			}
			b := p.Scope.RegisterBinding(local, item, kind)
			b.Import = &traverse.ImportOrigin{Source: from, Export: imported, Self: self}
			bindings = append(bindings, b)
		}
	}
	p.SetData(dataImports, bindings)
	return nil
}

// analyseScopeExit bubbles the escape flag and gives a mutated escaping scope
// its own context alias.
func analyseScopeExit(p *traverse.Path, s *State) error {
	sc := p.Scope
	if sc == nil {
		return nil
	}
	sc.PropagateEscape()
	if !sc.IsRoot() && sc.Mutated() && sc.EscapesContext() && !sc.OwnsContext() {
		return sc.MintContextName(s.GenerateUid(s.contextName()))
	}
	return nil
}
