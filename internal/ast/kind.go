package ast

// Kind is the closed set of node types understood by the compiler.
type Kind uint8

const (
	KindInvalid Kind = iota

	// шаблонные конструкции
	KindTemplate
	KindText
	KindPrint
	KindSet
	KindSetAssignment
	KindBlock
	KindBlockCall
	KindMacro
	KindImport
	KindFrom
	KindImportName
	KindInclude
	KindEmbed
	KindSpaceless
	KindIf
	KindFor
	KindFilter
	KindElement
	KindAttribute

	// выражения, общие для шаблона и хоста
	KindIdentifier
	KindStringLiteral
	KindNumericLiteral
	KindBooleanLiteral
	KindNullLiteral
	KindArrayExpression
	KindObjectExpression
	KindObjectProperty
	KindMemberExpression
	KindCallExpression
	KindBinaryExpression
	KindUnaryExpression
	KindConditionalExpression

	// хост (JS module)
	KindProgram
	KindImportDeclaration
	KindImportSpecifier
	KindImportDefaultSpecifier
	KindImportNamespaceSpecifier
	KindExportNamedDeclaration
	KindExportDefaultDeclaration
	KindFunctionDeclaration
	KindFunctionExpression
	KindBlockStatement
	KindExpressionStatement
	KindVariableDeclaration
	KindVariableDeclarator
	KindAssignmentExpression
	KindReturnStatement
	KindIfStatement
	KindForOfStatement
	KindArrayPattern
	KindRestElement
	KindThisExpression

	kindCount
)

// KindCount is the size of per-kind dispatch tables.
const KindCount = int(kindCount)

func (k Kind) String() string {
	if int(k) < len(registry.names) && registry.names[k] != "" {
		return registry.names[k]
	}
	return "Invalid"
}

// Matches implements Selector.
func (k Kind) Matches(other Kind) bool { return k == other }

// Kinds implements Selector.
func (k Kind) Kinds() []Kind { return []Kind{k} }

// AliasTag groups kinds so handlers can be registered once for many of them.
type AliasTag uint8

const (
	AliasInvalid AliasTag = iota
	// Statement covers everything allowed in a template or host body.
	AliasStatement
	// Expression covers value-producing nodes.
	AliasExpression
	// Scope marks scope-introducing nodes.
	AliasScope
	// Function marks scopes that lower into their own host function.
	AliasFunction
	AliasLiteral
	// Include covers constructs that render another template.
	AliasInclude
	AliasImport
	AliasHostDeclaration

	aliasCount
)

var aliasNames = [...]string{
	AliasInvalid:         "Invalid",
	AliasStatement:       "Statement",
	AliasExpression:      "Expression",
	AliasScope:           "Scope",
	AliasFunction:        "Function",
	AliasLiteral:         "Literal",
	AliasInclude:         "Include",
	AliasImport:          "Import",
	AliasHostDeclaration: "HostDeclaration",
}

func (a AliasTag) String() string {
	if int(a) < len(aliasNames) {
		return aliasNames[a]
	}
	return "Invalid"
}

// Matches implements Selector.
func (a AliasTag) Matches(k Kind) bool {
	if int(k) >= len(registry.aliases) {
		return false
	}
	for _, tag := range registry.aliases[k] {
		if tag == a {
			return true
		}
	}
	return false
}

// Kinds implements Selector.
func (a AliasTag) Kinds() []Kind {
	if int(a) >= len(registry.members) {
		return nil
	}
	return registry.members[a]
}

// Selector picks the kinds a visitor handler applies to.
type Selector interface {
	Matches(k Kind) bool
	// Kinds expands the selector into concrete kinds, in declaration order.
	Kinds() []Kind
}

type anySelector struct{}

func (anySelector) Matches(k Kind) bool { return k > KindInvalid && k < kindCount }

func (anySelector) Kinds() []Kind {
	out := make([]Kind, 0, KindCount-1)
	for k := KindInvalid + 1; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (anySelector) String() string { return "Any" }

// Any selects every kind.
var Any Selector = anySelector{}

// AliasByName resolves an alias tag from its display name.
func AliasByName(name string) (AliasTag, bool) {
	for i, n := range aliasNames {
		if n == name && AliasTag(i) != AliasInvalid {
			return AliasTag(i), true
		}
	}
	return AliasInvalid, false
}
