package ast

import "weave/internal/source"

func init() {
	expr := []AliasTag{AliasExpression}
	lit := []AliasTag{AliasExpression, AliasLiteral}
	register(KindIdentifier, "Identifier", expr)
	register(KindStringLiteral, "StringLiteral", lit)
	register(KindNumericLiteral, "NumericLiteral", lit)
	register(KindBooleanLiteral, "BooleanLiteral", lit)
	register(KindNullLiteral, "NullLiteral", lit)
	register(KindArrayExpression, "ArrayExpression", expr, Many(FieldElements))
	register(KindObjectExpression, "ObjectExpression", expr, Many(FieldProperties))
	register(KindObjectProperty, "ObjectProperty", nil, One(FieldKey), One(FieldValue))
	register(KindMemberExpression, "MemberExpression", expr, One(FieldObject), One(FieldProperty))
	register(KindCallExpression, "CallExpression", expr, One(FieldCallee), Many(FieldArguments))
	register(KindBinaryExpression, "BinaryExpression", expr, One(FieldLeft), One(FieldRight))
	register(KindUnaryExpression, "UnaryExpression", expr, One(FieldArgument))
	register(KindConditionalExpression, "ConditionalExpression", expr, One(FieldTest), One(FieldConsequent), One(FieldAlternate))
}

// Шаблонные выражения: без FlagHost.

func Ident(name string) *Node {
	n := New(KindIdentifier, source.NoSpan)
	n.Name = name
	return n
}

func Str(value string) *Node {
	n := New(KindStringLiteral, source.NoSpan)
	n.Value = value
	return n
}

func Num(value string) *Node {
	n := New(KindNumericLiteral, source.NoSpan)
	n.Value = value
	return n
}

func Bool(v bool) *Node {
	n := New(KindBooleanLiteral, source.NoSpan)
	n.Value = "false"
	if v {
		n.Value = "true"
	}
	return n
}

func Null() *Node { return New(KindNullLiteral, source.NoSpan) }

// Member builds object.property with a non-computed identifier property.
func Member(object *Node, property string) *Node {
	return New(KindMemberExpression, source.NoSpan).SetChild(FieldObject, object).SetChild(FieldProperty, Ident(property))
}

// Index builds object[property].
func Index(object, property *Node) *Node {
	n := New(KindMemberExpression, source.NoSpan).SetChild(FieldObject, object).SetChild(FieldProperty, property)
	n.Flags |= FlagComputed
	return n
}

func Call(callee *Node, args ...*Node) *Node {
	return New(KindCallExpression, source.NoSpan).SetChild(FieldCallee, callee).SetChildren(FieldArguments, args)
}

func Binary(op string, left, right *Node) *Node {
	n := New(KindBinaryExpression, source.NoSpan).SetChild(FieldLeft, left).SetChild(FieldRight, right)
	n.Op = op
	return n
}

func Unary(op string, argument *Node) *Node {
	n := New(KindUnaryExpression, source.NoSpan).SetChild(FieldArgument, argument)
	n.Op = op
	return n
}

func Conditional(test, consequent, alternate *Node) *Node {
	return New(KindConditionalExpression, source.NoSpan).
		SetChild(FieldTest, test).
		SetChild(FieldConsequent, consequent).
		SetChild(FieldAlternate, alternate)
}

func Array(elements ...*Node) *Node {
	return New(KindArrayExpression, source.NoSpan).SetChildren(FieldElements, elements)
}

func Object(properties ...*Node) *Node {
	return New(KindObjectExpression, source.NoSpan).SetChildren(FieldProperties, properties)
}

// Property builds key: value with an identifier key.
func Property(key string, value *Node) *Node {
	return New(KindObjectProperty, source.NoSpan).SetChild(FieldKey, Ident(key)).SetChild(FieldValue, value)
}
