// Package idom lowers text, prints and HTML elements into incremental DOM
// calls: text, elementOpen, elementClose and elementVoid.
package idom

import (
	"fmt"

	"weave/internal/ast"
	"weave/internal/compiler"
	"weave/internal/diag"
	"weave/internal/traverse"
)

// Name is the extension name reported by the compiler.
const Name = "idom"

const staticsData = "idom.statics"

// voidTags never have children or a closing tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Extension returns the incremental DOM lowering.
func Extension() compiler.Extension {
	return compiler.Extension{
		Name: Name,
		Analyse: traverse.NewVisitor[*compiler.State]("idom.analyse").
			Enter(ast.KindElement, checkElement),
		Convert: traverse.NewVisitor[*compiler.State]("idom.convert").
			Exit(ast.KindText, convertText).
			Exit(ast.KindPrint, convertPrint).
			Exit(ast.KindElement, convertElement),
	}
}

func checkElement(p *traverse.Path, s *compiler.State) error {
	tag := p.Node.Name
	if tag == "" {
		return s.Error(diag.TplUnsupported, "element without a tag name", p.Node.Span, "")
	}
	if voidTags[tag] && len(p.Node.Children(ast.FieldChildren)) > 0 {
		return s.Error(diag.TplUnsupported, fmt.Sprintf("<%s> is a void element and cannot have children", tag), p.Node.Span,
			fmt.Sprintf("move the content after <%s>", tag))
	}
	seen := make(map[string]bool)
	for _, attr := range p.Node.Children(ast.FieldAttributes) {
		if seen[attr.Name] {
			return s.Error(diag.TplUnsupported, fmt.Sprintf("attribute %q is set twice on <%s>", attr.Name, tag), attr.Span, "")
		}
		seen[attr.Name] = true
	}
	if statics, _ := splitAttributes(p.Node.Children(ast.FieldAttributes)); len(statics) > 0 {
		// массив статических атрибутов создаётся один раз на функцию
		b := p.Scope.RegisterBinding(s.GenerateUid("_statics"), nil, traverse.BindingConst)
		b.Init = ast.JSArray(statics...)
		p.SetData(staticsData, b)
	}
	return nil
}

func helper(s *compiler.State, name string) *ast.Node {
	return ast.JSIdent(s.AddImportFrom(s.Options.IdomModule, name, ""))
}

func convertText(p *traverse.Path, s *compiler.State) error {
	return p.ReplaceWithJS(ast.JSExprStmt(ast.JSCall(helper(s, "text"), ast.JSString(p.Node.Value))))
}

func convertPrint(p *traverse.Path, s *compiler.State) error {
	value := p.Node.Child(ast.FieldValue)
	if value == nil {
		return p.Remove()
	}
	return p.ReplaceWithJS(ast.JSExprStmt(ast.JSCall(helper(s, "text"), value)))
}

// splitAttributes separates literal attributes, which go into the hoisted
// statics array, from attributes computed at render time.
func splitAttributes(attrs []*ast.Node) (statics, dynamic []*ast.Node) {
	for _, attr := range attrs {
		value := attr.Child(ast.FieldValue)
		switch {
		case value == nil:
			statics = append(statics, ast.JSString(attr.Name), ast.JSString(""))
		case value.Kind == ast.KindStringLiteral:
			statics = append(statics, ast.JSString(attr.Name), ast.JSString(value.Value))
		default:
			dynamic = append(dynamic, ast.JSString(attr.Name), value)
		}
	}
	return statics, dynamic
}

func convertElement(p *traverse.Path, s *compiler.State) error {
	tag := p.Node.Name
	_, dynamic := splitAttributes(p.Node.Children(ast.FieldAttributes))

	staticsRef := ast.JSNull()
	if b, ok := p.Data(staticsData).(*traverse.Binding); ok {
		staticsRef = ast.JSIdent(b.LocalName)
	}
	args := []*ast.Node{ast.JSString(tag), ast.JSString(s.GenerateKey()), staticsRef}
	args = append(args, dynamic...)

	children := p.Node.Children(ast.FieldChildren)
	if voidTags[tag] || len(children) == 0 {
		return p.ReplaceWithJS(ast.JSExprStmt(ast.JSCall(helper(s, "elementVoid"), args...)))
	}

	out := make([]*ast.Node, 0, len(children)+2)
	out = append(out, ast.JSExprStmt(ast.JSCall(helper(s, "elementOpen"), args...)))
	out = append(out, children...)
	out = append(out, ast.JSExprStmt(ast.JSCall(helper(s, "elementClose"), ast.JSString(tag))))
	if p.Listed() {
		_, err := p.ReplaceWithMultipleJS(out...)
		return err
	}
	return p.ReplaceWithJS(ast.JSBlock(out...))
}
