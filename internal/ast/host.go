package ast

import "weave/internal/source"

// Host variable declaration kinds, stored in VariableDeclaration.Value.
const (
	DeclConst = "const"
	DeclLet   = "let"
	DeclVar   = "var"
)

func init() {
	stmt := []AliasTag{AliasStatement}
	decl := []AliasTag{AliasStatement, AliasHostDeclaration}
	register(KindProgram, "Program", nil, Many(FieldBody))
	register(KindImportDeclaration, "ImportDeclaration", decl, Many(FieldSpecifiers), One(FieldSource))
	register(KindImportSpecifier, "ImportSpecifier", nil, One(FieldImported), One(FieldLocal))
	register(KindImportDefaultSpecifier, "ImportDefaultSpecifier", nil, One(FieldLocal))
	register(KindImportNamespaceSpecifier, "ImportNamespaceSpecifier", nil, One(FieldLocal))
	register(KindExportNamedDeclaration, "ExportNamedDeclaration", decl, One(FieldDeclaration))
	register(KindExportDefaultDeclaration, "ExportDefaultDeclaration", decl, One(FieldDeclaration))
	register(KindFunctionDeclaration, "FunctionDeclaration", decl, One(FieldID), Many(FieldParams), One(FieldBody))
	register(KindFunctionExpression, "FunctionExpression", []AliasTag{AliasExpression}, One(FieldID), Many(FieldParams), One(FieldBody))
	register(KindBlockStatement, "BlockStatement", stmt, Many(FieldBody))
	register(KindExpressionStatement, "ExpressionStatement", stmt, One(FieldExpression))
	register(KindVariableDeclaration, "VariableDeclaration", decl, Many(FieldDeclarations))
	register(KindVariableDeclarator, "VariableDeclarator", nil, One(FieldID), One(FieldInit))
	register(KindAssignmentExpression, "AssignmentExpression", []AliasTag{AliasExpression}, One(FieldLeft), One(FieldRight))
	register(KindReturnStatement, "ReturnStatement", stmt, One(FieldArgument))
	register(KindIfStatement, "IfStatement", stmt, One(FieldTest), One(FieldConsequent), One(FieldAlternate))
	register(KindForOfStatement, "ForOfStatement", stmt, One(FieldLeft), One(FieldRight), One(FieldBody))
	register(KindArrayPattern, "ArrayPattern", nil, Many(FieldElements))
	register(KindRestElement, "RestElement", nil, One(FieldArgument))
	register(KindThisExpression, "ThisExpression", []AliasTag{AliasExpression})
}

func host(kind Kind) *Node {
	n := New(kind, source.NoSpan)
	n.Flags |= FlagHost | FlagGenerated
	return n
}

// MarkHost flags n as part of the output program and returns it.
// Template-only kinds are left untouched: they still await lowering.
func MarkHost(n *Node) *Node {
	if n != nil && !IsTemplateOnly(n.Kind) {
		n.Flags |= FlagHost
	}
	return n
}

// IsTemplateOnly reports kinds that never appear in the output program.
func IsTemplateOnly(k Kind) bool {
	return k >= KindTemplate && k <= KindAttribute
}

func JSProgram(body ...*Node) *Node {
	return host(KindProgram).SetChildren(FieldBody, body)
}

func JSIdent(name string) *Node {
	n := host(KindIdentifier)
	n.Name = name
	return n
}

func JSString(value string) *Node {
	n := host(KindStringLiteral)
	n.Value = value
	return n
}

func JSNumber(value string) *Node {
	n := host(KindNumericLiteral)
	n.Value = value
	return n
}

func JSNull() *Node { return host(KindNullLiteral) }

func JSThis() *Node { return host(KindThisExpression) }

// JSMember builds object.property.
func JSMember(object *Node, property string) *Node {
	return host(KindMemberExpression).SetChild(FieldObject, object).SetChild(FieldProperty, JSIdent(property))
}

// JSIndex builds object[property].
func JSIndex(object, property *Node) *Node {
	n := host(KindMemberExpression).SetChild(FieldObject, object).SetChild(FieldProperty, property)
	n.Flags |= FlagComputed
	return n
}

func JSCall(callee *Node, args ...*Node) *Node {
	return host(KindCallExpression).SetChild(FieldCallee, callee).SetChildren(FieldArguments, args)
}

func JSAssign(left, right *Node) *Node {
	n := host(KindAssignmentExpression).SetChild(FieldLeft, left).SetChild(FieldRight, right)
	n.Op = "="
	return n
}

func JSBinary(op string, left, right *Node) *Node {
	n := host(KindBinaryExpression).SetChild(FieldLeft, left).SetChild(FieldRight, right)
	n.Op = op
	return n
}

func JSObject(properties ...*Node) *Node {
	return host(KindObjectExpression).SetChildren(FieldProperties, properties)
}

func JSProperty(key string, value *Node) *Node {
	return host(KindObjectProperty).SetChild(FieldKey, JSIdent(key)).SetChild(FieldValue, value)
}

func JSArray(elements ...*Node) *Node {
	return host(KindArrayExpression).SetChildren(FieldElements, elements)
}

func JSExprStmt(expr *Node) *Node {
	return host(KindExpressionStatement).SetChild(FieldExpression, expr)
}

// JSVar builds `kind id = init;`; init may be nil.
func JSVar(kind string, id, init *Node) *Node {
	n := host(KindVariableDeclaration)
	n.Value = kind
	return n.SetChildren(FieldDeclarations, []*Node{
		host(KindVariableDeclarator).SetChild(FieldID, id).SetChild(FieldInit, init),
	})
}

func JSBlock(body ...*Node) *Node {
	return host(KindBlockStatement).SetChildren(FieldBody, body)
}

// JSFunc builds a function declaration; body statements are wrapped in a block.
func JSFunc(name string, params []*Node, body ...*Node) *Node {
	n := host(KindFunctionDeclaration)
	if name != "" {
		n.SetChild(FieldID, JSIdent(name))
	}
	return n.SetChildren(FieldParams, params).SetChild(FieldBody, JSBlock(body...))
}

func JSFuncExpr(params []*Node, body ...*Node) *Node {
	return host(KindFunctionExpression).SetChildren(FieldParams, params).SetChild(FieldBody, JSBlock(body...))
}

func JSReturn(argument *Node) *Node {
	return host(KindReturnStatement).SetChild(FieldArgument, argument)
}

func JSIf(test, consequent, alternate *Node) *Node {
	return host(KindIfStatement).
		SetChild(FieldTest, test).
		SetChild(FieldConsequent, consequent).
		SetChild(FieldAlternate, alternate)
}

func JSForOf(left, right, body *Node) *Node {
	return host(KindForOfStatement).SetChild(FieldLeft, left).SetChild(FieldRight, right).SetChild(FieldBody, body)
}

func JSArrayPattern(elements ...*Node) *Node {
	return host(KindArrayPattern).SetChildren(FieldElements, elements)
}

func JSRest(argument *Node) *Node {
	return host(KindRestElement).SetChild(FieldArgument, argument)
}

func JSImport(src string, specifiers ...*Node) *Node {
	return host(KindImportDeclaration).SetChildren(FieldSpecifiers, specifiers).SetChild(FieldSource, JSString(src))
}

// JSImportSpec builds `imported as local`.
func JSImportSpec(imported, local string) *Node {
	return host(KindImportSpecifier).SetChild(FieldImported, JSIdent(imported)).SetChild(FieldLocal, JSIdent(local))
}

func JSImportDefault(local string) *Node {
	return host(KindImportDefaultSpecifier).SetChild(FieldLocal, JSIdent(local))
}

func JSImportNamespace(local string) *Node {
	return host(KindImportNamespaceSpecifier).SetChild(FieldLocal, JSIdent(local))
}

func JSExport(declaration *Node) *Node {
	return host(KindExportNamedDeclaration).SetChild(FieldDeclaration, declaration)
}

func JSExportDefault(declaration *Node) *Node {
	return host(KindExportDefaultDeclaration).SetChild(FieldDeclaration, declaration)
}
