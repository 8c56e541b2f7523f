package traverse

import "weave/internal/ast"

// BindingKind tells how an identifier came into scope.
type BindingKind uint8

const (
	// BindingContext is a value read from the ambient rendering context.
	BindingContext BindingKind = iota
	BindingParam
	BindingVar
	BindingConst
	BindingMacro
	BindingFunction
	BindingGlobal
)

func (k BindingKind) String() string {
	switch k {
	case BindingContext:
		return "context"
	case BindingParam:
		return "param"
	case BindingVar:
		return "var"
	case BindingConst:
		return "const"
	case BindingMacro:
		return "macro"
	case BindingFunction:
		return "function"
	case BindingGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// ImportOrigin records where an imported binding comes from.
type ImportOrigin struct {
	Source string
	// Export is the exported name; empty for namespace imports.
	Export    string
	Self      bool
	Namespace bool
}

// Binding is the single record every use of a name resolves to.
type Binding struct {
	ID    uint32
	Name  string
	Scope *Scope
	Path  *Path
	Kind  BindingKind

	// Contextual bindings store either in a local or on the context object,
	// depending on whether the owning scope escapes.
	Contextual bool
	// LocalName is the identifier emitted for local storage.
	LocalName string
	Import    *ImportOrigin
	// Init is emitted as `const LocalName = Init` when the owning scope exits.
	Init *ast.Node

	references int
	refPaths   []*Path
}

// Reference records a use site.
func (b *Binding) Reference(p *Path) {
	b.refPaths = append(b.refPaths, p)
	b.references = len(b.refPaths)
}

func (b *Binding) References() int { return b.references }

// ReferencePaths returns the use sites in visit order. Callers must not modify it.
func (b *Binding) ReferencePaths() []*Path { return b.refPaths }

// Referenced reports whether any use site was recorded.
func (b *Binding) Referenced() bool { return b.references > 0 }

func (b *Binding) String() string {
	return b.Kind.String() + " " + b.Name
}
