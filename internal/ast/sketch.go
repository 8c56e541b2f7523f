package ast

import (
	"strconv"
	"strings"
)

// Sketch renders a host program as JavaScript-like text, one top-level
// statement per line with nested blocks kept inline. It is a preview, not a
// printer: no precedence handling, no escaping beyond string quoting.
func Sketch(n *Node) string {
	return sketch(n)
}

func sketch(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindProgram:
		lines := make([]string, 0, len(n.Children(FieldBody)))
		for _, st := range n.Children(FieldBody) {
			lines = append(lines, sketch(st))
		}
		return strings.Join(lines, "\n")
	case KindImportDeclaration:
		src := strconv.Quote(n.Child(FieldSource).Value)
		specs := n.Children(FieldSpecifiers)
		if len(specs) == 0 {
			return "import " + src + ";"
		}
		var parts, named []string
		for _, sp := range specs {
			switch sp.Kind {
			case KindImportDefaultSpecifier:
				parts = append(parts, sketch(sp.Child(FieldLocal)))
			case KindImportNamespaceSpecifier:
				parts = append(parts, "* as "+sketch(sp.Child(FieldLocal)))
			default:
				imported, local := sketch(sp.Child(FieldImported)), sketch(sp.Child(FieldLocal))
				if imported == local {
					named = append(named, imported)
				} else {
					named = append(named, imported+" as "+local)
				}
			}
		}
		if len(named) > 0 {
			parts = append(parts, "{"+strings.Join(named, ", ")+"}")
		}
		return "import " + strings.Join(parts, ", ") + " from " + src + ";"
	case KindExportNamedDeclaration:
		return "export " + sketch(n.Child(FieldDeclaration))
	case KindExportDefaultDeclaration:
		return "export default " + sketch(n.Child(FieldDeclaration))
	case KindVariableDeclaration:
		return sketchDecl(n) + ";"
	case KindFunctionDeclaration:
		return "function " + sketch(n.Child(FieldID)) + "(" + sketchList(n.Children(FieldParams)) + ") " + sketch(n.Child(FieldBody))
	case KindFunctionExpression:
		return "function (" + sketchList(n.Children(FieldParams)) + ") " + sketch(n.Child(FieldBody))
	case KindBlockStatement:
		body := n.Children(FieldBody)
		if len(body) == 0 {
			return "{}"
		}
		parts := make([]string, len(body))
		for i, st := range body {
			parts[i] = sketch(st)
		}
		return "{ " + strings.Join(parts, " ") + " }"
	case KindExpressionStatement:
		return sketch(n.Child(FieldExpression)) + ";"
	case KindReturnStatement:
		return "return " + sketch(n.Child(FieldArgument)) + ";"
	case KindIfStatement:
		out := "if (" + sketch(n.Child(FieldTest)) + ") " + sketch(n.Child(FieldConsequent))
		if alt := n.Child(FieldAlternate); alt != nil {
			out += " else " + sketch(alt)
		}
		return out
	case KindForOfStatement:
		return "for (" + sketchDecl(n.Child(FieldLeft)) + " of " + sketch(n.Child(FieldRight)) + ") " + sketch(n.Child(FieldBody))
	case KindAssignmentExpression:
		return sketch(n.Child(FieldLeft)) + " = " + sketch(n.Child(FieldRight))
	case KindMemberExpression:
		if n.Has(FlagComputed) {
			return sketch(n.Child(FieldObject)) + "[" + sketch(n.Child(FieldProperty)) + "]"
		}
		return sketch(n.Child(FieldObject)) + "." + sketch(n.Child(FieldProperty))
	case KindCallExpression:
		return sketch(n.Child(FieldCallee)) + "(" + sketchList(n.Children(FieldArguments)) + ")"
	case KindBinaryExpression:
		return sketch(n.Child(FieldLeft)) + " " + n.Op + " " + sketch(n.Child(FieldRight))
	case KindUnaryExpression:
		return n.Op + sketch(n.Child(FieldArgument))
	case KindConditionalExpression:
		return sketch(n.Child(FieldTest)) + " ? " + sketch(n.Child(FieldConsequent)) + " : " + sketch(n.Child(FieldAlternate))
	case KindObjectExpression:
		props := n.Children(FieldProperties)
		if len(props) == 0 {
			return "{}"
		}
		return "{" + sketchList(props) + "}"
	case KindObjectProperty:
		return sketch(n.Child(FieldKey)) + ": " + sketch(n.Child(FieldValue))
	case KindArrayExpression, KindArrayPattern:
		return "[" + sketchList(n.Children(FieldElements)) + "]"
	case KindRestElement:
		return "..." + sketch(n.Child(FieldArgument))
	case KindIdentifier:
		return n.Name
	case KindStringLiteral:
		return strconv.Quote(n.Value)
	case KindNumericLiteral, KindBooleanLiteral:
		return n.Value
	case KindNullLiteral:
		return "null"
	case KindThisExpression:
		return "this"
	}
	return "<" + n.Kind.String() + ">"
}

func sketchList(nodes []*Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = sketch(n)
	}
	return strings.Join(parts, ", ")
}

func sketchDecl(n *Node) string {
	var parts []string
	for _, d := range n.Children(FieldDeclarations) {
		s := sketch(d.Child(FieldID))
		if init := d.Child(FieldInit); init != nil {
			s += " = " + sketch(init)
		}
		parts = append(parts, s)
	}
	return n.Value + " " + strings.Join(parts, ", ")
}
