package compiler

import (
	"fmt"

	"weave/internal/ast"
	"weave/internal/diag"
	"weave/internal/traverse"
)

// convertImport resolves every binding an import introduced, then drops the
// import node. External sources become host imports; _self imports point at
// the macros of this template.
func convertImport(p *traverse.Path, s *State) error {
	bindings, _ := p.Data(dataImports).([]*traverse.Binding)
	for _, b := range bindings {
		origin := b.Import
		switch {
		case origin.Self && origin.Namespace:
			if err := s.rewriteSelfMembers(b); err != nil {
				return err
			}
		case origin.Self:
			mac, ok := s.macro(origin.Export)
			if !ok {
				span := p.Node.Span
				if b.Path != nil && b.Path.Node != nil {
					span = b.Path.Node.Span
				}
				return s.Error(diag.TplUnknownSelfMacro, fmt.Sprintf("this template has no macro %q", origin.Export), span, "")
			}
			b.LocalName = mac.LocalName
		case origin.Namespace:
			b.LocalName = s.AddNamespaceImportFrom(origin.Source, b.Name)
		default:
			b.LocalName = s.AddImportFrom(origin.Source, origin.Export, b.Name)
		}
	}
	return p.Remove()
}

// rewriteSelfMembers turns every `alias.macro` use into the macro's own name.
func (s *State) rewriteSelfMembers(b *traverse.Binding) error {
	for _, ref := range b.ReferencePaths() {
		mp := ref.ParentPath
		if mp == nil || mp.Node == nil || mp.Node.Kind != ast.KindMemberExpression ||
			ref.Field != ast.FieldObject || mp.Node.Has(ast.FlagComputed) {
			span := b.Path.Node.Span
			if ref.Node != nil {
				span = ref.Node.Span
			}
			return s.Error(diag.TplUnsupported, fmt.Sprintf("%q can only be used to call macros", b.Name), span,
				fmt.Sprintf("write %s.macro_name(...)", b.Name))
		}
		prop := mp.Node.Child(ast.FieldProperty)
		mac, ok := s.macro(prop.Name)
		if !ok {
			return s.Error(diag.TplUnknownSelfMacro, fmt.Sprintf("this template has no macro %q", prop.Name), mp.Node.Span, "")
		}
		if err := mp.ReplaceWithJS(ast.JSIdent(mac.LocalName)); err != nil {
			return err
		}
	}
	return nil
}
