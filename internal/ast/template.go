package ast

import "weave/internal/source"

// SelfSource is the import source naming the current template.
const SelfSource = "_self"

func init() {
	stmt := []AliasTag{AliasStatement}
	register(KindTemplate, "Template", []AliasTag{AliasScope, AliasFunction}, One(FieldParent), Many(FieldBody))
	register(KindText, "Text", stmt)
	register(KindPrint, "Print", stmt, One(FieldValue))
	register(KindSet, "Set", stmt, Many(FieldAssignments))
	register(KindSetAssignment, "SetAssignment", nil, One(FieldTarget), One(FieldValue))
	register(KindBlock, "Block", []AliasTag{AliasStatement, AliasScope, AliasFunction}, Many(FieldBody))
	register(KindBlockCall, "BlockCall", stmt)
	register(KindMacro, "Macro", []AliasTag{AliasStatement, AliasScope, AliasFunction}, Many(FieldParams), Many(FieldBody))
	register(KindImport, "Import", []AliasTag{AliasStatement, AliasImport}, One(FieldSource), One(FieldAlias))
	register(KindFrom, "From", []AliasTag{AliasStatement, AliasImport}, One(FieldSource), Many(FieldImports))
	register(KindImportName, "ImportName", nil, One(FieldImported), One(FieldLocal))
	register(KindInclude, "Include", []AliasTag{AliasStatement, AliasInclude}, One(FieldSource), One(FieldArgument))
	register(KindEmbed, "Embed", []AliasTag{AliasStatement, AliasInclude}, One(FieldSource), One(FieldArgument), Many(FieldBlocks))
	register(KindSpaceless, "Spaceless", stmt, Many(FieldBody))
	register(KindIf, "If", stmt, One(FieldTest), Many(FieldConsequent), Many(FieldAlternate))
	register(KindFor, "For", []AliasTag{AliasStatement, AliasScope}, One(FieldSequence), One(FieldKey), One(FieldValue), Many(FieldBody))
	register(KindFilter, "Filter", []AliasTag{AliasExpression}, One(FieldTarget), Many(FieldArguments))
	register(KindElement, "Element", stmt, Many(FieldAttributes), Many(FieldChildren))
	register(KindAttribute, "Attribute", nil, One(FieldValue))
}

// NewTemplate builds a template root; parent is the `extends` source or nil.
func NewTemplate(parent *Node, body ...*Node) *Node {
	return New(KindTemplate, source.NoSpan).SetChild(FieldParent, parent).SetChildren(FieldBody, body)
}

func Text(value string) *Node {
	n := New(KindText, source.NoSpan)
	n.Value = value
	return n
}

func Print(value *Node) *Node {
	return New(KindPrint, source.NoSpan).SetChild(FieldValue, value)
}

// Set builds `{% set a = x, b = y %}` from SetAssign nodes.
func Set(assignments ...*Node) *Node {
	return New(KindSet, source.NoSpan).SetChildren(FieldAssignments, assignments)
}

func SetAssign(name string, value *Node) *Node {
	return New(KindSetAssignment, source.NoSpan).SetChild(FieldTarget, Ident(name)).SetChild(FieldValue, value)
}

func Block(name string, body ...*Node) *Node {
	n := New(KindBlock, source.NoSpan).SetChildren(FieldBody, body)
	n.Name = name
	return n
}

func BlockCall(name string) *Node {
	n := New(KindBlockCall, source.NoSpan)
	n.Name = name
	return n
}

func Macro(name string, params []string, body ...*Node) *Node {
	n := New(KindMacro, source.NoSpan)
	n.Name = name
	ps := make([]*Node, len(params))
	for i, p := range params {
		ps[i] = Ident(p)
	}
	return n.SetChildren(FieldParams, ps).SetChildren(FieldBody, body)
}

// Import builds `{% import source as alias %}`; source may be Ident(SelfSource).
func Import(src *Node, alias string) *Node {
	return New(KindImport, source.NoSpan).SetChild(FieldSource, src).SetChild(FieldAlias, Ident(alias))
}

// From builds `{% from source import a as b, c %}`.
func From(src *Node, names ...*Node) *Node {
	return New(KindFrom, source.NoSpan).SetChild(FieldSource, src).SetChildren(FieldImports, names)
}

// ImportName builds one `imported as local` entry; local defaults to imported.
func ImportName(imported, local string) *Node {
	if local == "" {
		local = imported
	}
	return New(KindImportName, source.NoSpan).SetChild(FieldImported, Ident(imported)).SetChild(FieldLocal, Ident(local))
}

func Include(src, argument *Node, contextFree bool) *Node {
	n := New(KindInclude, source.NoSpan).SetChild(FieldSource, src).SetChild(FieldArgument, argument)
	if contextFree {
		n.Flags |= FlagContextFree
	}
	return n
}

func Embed(src, argument *Node, contextFree bool, blocks ...*Node) *Node {
	n := New(KindEmbed, source.NoSpan).
		SetChild(FieldSource, src).
		SetChild(FieldArgument, argument).
		SetChildren(FieldBlocks, blocks)
	if contextFree {
		n.Flags |= FlagContextFree
	}
	return n
}

func Spaceless(body ...*Node) *Node {
	return New(KindSpaceless, source.NoSpan).SetChildren(FieldBody, body)
}

func If(test *Node, consequent, alternate []*Node) *Node {
	return New(KindIf, source.NoSpan).
		SetChild(FieldTest, test).
		SetChildren(FieldConsequent, consequent).
		SetChildren(FieldAlternate, alternate)
}

// For builds `{% for key, value in sequence %}`; key may be empty.
func For(key, value string, sequence *Node, body ...*Node) *Node {
	n := New(KindFor, source.NoSpan)
	if key != "" {
		n.SetChild(FieldKey, Ident(key))
	}
	return n.SetChild(FieldValue, Ident(value)).SetChild(FieldSequence, sequence).SetChildren(FieldBody, body)
}

// Filter builds `target|name(arguments...)`.
func Filter(name string, target *Node, arguments ...*Node) *Node {
	n := New(KindFilter, source.NoSpan).SetChild(FieldTarget, target).SetChildren(FieldArguments, arguments)
	n.Name = name
	return n
}

func Element(tag string, attributes []*Node, children ...*Node) *Node {
	n := New(KindElement, source.NoSpan).SetChildren(FieldAttributes, attributes).SetChildren(FieldChildren, children)
	n.Name = tag
	return n
}

func Attr(name string, value *Node) *Node {
	n := New(KindAttribute, source.NoSpan).SetChild(FieldValue, value)
	n.Name = name
	return n
}

// IsSelfSource reports whether n names the current template.
func IsSelfSource(n *Node) bool {
	return n != nil && n.Kind == KindIdentifier && n.Name == SelfSource
}
