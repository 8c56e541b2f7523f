package ast

import "fmt"

// Field names a child slot declared for a kind.
type Field string

const (
	FieldBody         Field = "body"
	FieldParent       Field = "parent"
	FieldValue        Field = "value"
	FieldAssignments  Field = "assignments"
	FieldTarget       Field = "target"
	FieldParams       Field = "params"
	FieldSource       Field = "source"
	FieldAlias        Field = "alias"
	FieldImports      Field = "imports"
	FieldImported     Field = "imported"
	FieldLocal        Field = "local"
	FieldArgument     Field = "argument"
	FieldBlocks       Field = "blocks"
	FieldTest         Field = "test"
	FieldConsequent   Field = "consequent"
	FieldAlternate    Field = "alternate"
	FieldKey          Field = "key"
	FieldSequence     Field = "sequence"
	FieldArguments    Field = "arguments"
	FieldAttributes   Field = "attributes"
	FieldChildren     Field = "children"
	FieldElements     Field = "elements"
	FieldProperties   Field = "properties"
	FieldObject       Field = "object"
	FieldProperty     Field = "property"
	FieldCallee       Field = "callee"
	FieldLeft         Field = "left"
	FieldRight        Field = "right"
	FieldSpecifiers   Field = "specifiers"
	FieldDeclaration  Field = "declaration"
	FieldID           Field = "id"
	FieldExpression   Field = "expression"
	FieldDeclarations Field = "declarations"
	FieldInit         Field = "init"
)

// FieldSpec describes one traversable slot: a single child or a list.
type FieldSpec struct {
	Name Field
	List bool
}

// One declares a single-child slot.
func One(name Field) FieldSpec { return FieldSpec{Name: name} }

// Many declares a list slot.
func Many(name Field) FieldSpec { return FieldSpec{Name: name, List: true} }

var registry struct {
	names   [kindCount]string
	aliases [kindCount][]AliasTag
	members [aliasCount][]Kind
	fields  [kindCount][]FieldSpec
	byName  map[string]Kind
}

// Define assigns the display name used in dumps and serialized documents.
func Define(k Kind, name string) {
	if k <= KindInvalid || k >= kindCount {
		panic(fmt.Sprintf("ast: define of out-of-range kind %d", k))
	}
	if registry.byName == nil {
		registry.byName = make(map[string]Kind, KindCount)
	}
	if prev, ok := registry.byName[name]; ok && prev != k {
		panic(fmt.Sprintf("ast: kind name %q already taken by %d", name, prev))
	}
	registry.names[k] = name
	registry.byName[name] = k
}

// Alias adds k to each alias set. Repeated tags are ignored.
func Alias(k Kind, tags ...AliasTag) {
	for _, tag := range tags {
		if tag.Matches(k) {
			continue
		}
		registry.aliases[k] = append(registry.aliases[k], tag)
		registry.members[tag] = append(registry.members[tag], k)
	}
}

// Fields declares the traversable child slots of k, in traversal order.
// Anything not declared here is invisible to traversal.
func Fields(k Kind, specs ...FieldSpec) {
	registry.fields[k] = append(registry.fields[k][:0], specs...)
}

// FieldsOf returns the declared slots of k. Callers must not modify the slice.
func FieldsOf(k Kind) []FieldSpec {
	if k >= kindCount {
		return nil
	}
	return registry.fields[k]
}

// AliasesOf returns the alias tags of k.
func AliasesOf(k Kind) []AliasTag {
	if k >= kindCount {
		return nil
	}
	return registry.aliases[k]
}

// KindByName resolves a kind from its display name.
func KindByName(name string) (Kind, bool) {
	k, ok := registry.byName[name]
	return k, ok
}

// FieldByName finds the declared slot called name on k and its position.
func FieldByName(k Kind, name string) (FieldSpec, int, bool) {
	for i, spec := range FieldsOf(k) {
		if string(spec.Name) == name {
			return spec, i, true
		}
	}
	return FieldSpec{}, -1, false
}

func fieldIndex(k Kind, f Field) int {
	for i, spec := range FieldsOf(k) {
		if spec.Name == f {
			return i
		}
	}
	return -1
}

// Is reports whether n is non-nil and matches sel by exact kind or alias.
func Is(n *Node, sel Selector) bool {
	return n != nil && sel != nil && sel.Matches(n.Kind)
}

func register(k Kind, name string, tags []AliasTag, specs ...FieldSpec) {
	Define(k, name)
	Alias(k, tags...)
	Fields(k, specs...)
}
