package ast

import (
	"fmt"

	"weave/internal/source"
)

// Flags carry per-node markers that are not child slots.
type Flags uint16

const (
	// FlagHost marks nodes that already belong to the output program.
	FlagHost Flags = 1 << iota
	// FlagComputed marks obj[prop] member access and computed object keys.
	FlagComputed
	// FlagContextFree marks include/embed written with `only`.
	FlagContextFree
	// FlagGenerated marks nodes synthesized by lowering.
	FlagGenerated
)

var flagNames = [...]struct {
	flag Flags
	name string
}{
	{FlagHost, "host"},
	{FlagComputed, "computed"},
	{FlagContextFree, "only"},
	{FlagGenerated, "generated"},
}

// FlagByName resolves a flag from its serialized name.
func FlagByName(name string) (Flags, bool) {
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.flag, true
		}
	}
	return 0, false
}

// Names lists the set flags in declaration order.
func (f Flags) Names() []string {
	var out []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			out = append(out, fn.name)
		}
	}
	return out
}

// Slot stores one declared child field.
type Slot struct {
	Node *Node
	List []*Node
}

// Node is a tagged variant. Its child slots follow FieldsOf(Kind).
type Node struct {
	Kind  Kind
	Span  source.Span
	Name  string
	Value string
	Op    string
	Flags Flags
	// Meta holds annotations; never traversed.
	Meta map[string]any

	slots []Slot
	gen   uint32
}

// New allocates a node with empty slots for every declared field of kind.
func New(kind Kind, sp source.Span) *Node {
	return &Node{
		Kind:  kind,
		Span:  sp,
		slots: make([]Slot, len(FieldsOf(kind))),
	}
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch {
	case n.Name != "":
		return fmt.Sprintf("%s(%s)", n.Kind, n.Name)
	case n.Value != "":
		return fmt.Sprintf("%s(%q)", n.Kind, n.Value)
	default:
		return n.Kind.String()
	}
}

// Has reports whether all bits of f are set.
func (n *Node) Has(f Flags) bool {
	return n != nil && n.Flags&f == f
}

// IsHost reports whether n already belongs to the output program.
func (n *Node) IsHost() bool { return n.Has(FlagHost) }

// Is matches n against a kind or alias.
func (n *Node) Is(sel Selector) bool { return Is(n, sel) }

// Generation changes whenever a child slot of n is rewritten.
func (n *Node) Generation() uint32 { return n.gen }

func (n *Node) slot(f Field, wantList bool) *Slot {
	idx := fieldIndex(n.Kind, f)
	if idx < 0 {
		return nil
	}
	if FieldsOf(n.Kind)[idx].List != wantList {
		panic(fmt.Sprintf("ast: %s.%s list=%v accessed as list=%v", n.Kind, f, !wantList, wantList))
	}
	if len(n.slots) < len(FieldsOf(n.Kind)) {
		grown := make([]Slot, len(FieldsOf(n.Kind)))
		copy(grown, n.slots)
		n.slots = grown
	}
	return &n.slots[idx]
}

// Child returns the single child stored in f, nil when empty or undeclared.
func (n *Node) Child(f Field) *Node {
	if n == nil {
		return nil
	}
	if s := n.slot(f, false); s != nil {
		return s.Node
	}
	return nil
}

// SetChild stores c in the single slot f. Undeclared fields panic.
func (n *Node) SetChild(f Field, c *Node) *Node {
	s := n.slot(f, false)
	if s == nil {
		panic(fmt.Sprintf("ast: %s has no field %q", n.Kind, f))
	}
	s.Node = c
	n.gen++
	return n
}

// Children returns the list stored in f. Callers must not modify it in place.
func (n *Node) Children(f Field) []*Node {
	if n == nil {
		return nil
	}
	if s := n.slot(f, true); s != nil {
		return s.List
	}
	return nil
}

// SetChildren replaces the list in f. Undeclared fields panic.
func (n *Node) SetChildren(f Field, list []*Node) *Node {
	s := n.slot(f, true)
	if s == nil {
		panic(fmt.Sprintf("ast: %s has no field %q", n.Kind, f))
	}
	s.List = list
	n.gen++
	return n
}

// Append adds nodes to the end of list field f.
func (n *Node) Append(f Field, nodes ...*Node) *Node {
	list := n.Children(f)
	out := make([]*Node, 0, len(list)+len(nodes))
	out = append(out, list...)
	out = append(out, nodes...)
	return n.SetChildren(f, out)
}

// At returns the child at index in list field f, or the single child when index < 0.
func (n *Node) At(f Field, index int) *Node {
	if index < 0 {
		return n.Child(f)
	}
	list := n.Children(f)
	if index >= len(list) {
		return nil
	}
	return list[index]
}

// SetAt overwrites one slot position in place.
func (n *Node) SetAt(f Field, index int, c *Node) {
	if index < 0 {
		n.SetChild(f, c)
		return
	}
	s := n.slot(f, true)
	if s == nil || index >= len(s.List) {
		panic(fmt.Sprintf("ast: %s.%s[%d] out of range", n.Kind, f, index))
	}
	s.List[index] = c
	n.gen++
}

// Splice replaces count items at index in list field f with nodes.
func (n *Node) Splice(f Field, index, count int, nodes ...*Node) {
	list := n.Children(f)
	if index < 0 || index > len(list) || index+count > len(list) {
		panic(fmt.Sprintf("ast: splice %s.%s[%d:%d] out of range (len %d)", n.Kind, f, index, index+count, len(list)))
	}
	out := make([]*Node, 0, len(list)-count+len(nodes))
	out = append(out, list[:index]...)
	out = append(out, nodes...)
	out = append(out, list[index+count:]...)
	n.SetChildren(f, out)
}

// SetMeta stores an annotation that traversal never sees.
func (n *Node) SetMeta(key string, v any) {
	if n.Meta == nil {
		n.Meta = make(map[string]any)
	}
	n.Meta[key] = v
}

// MetaString returns a string annotation or "".
func (n *Node) MetaString(key string) string {
	if n == nil || n.Meta == nil {
		return ""
	}
	s, _ := n.Meta[key].(string)
	return s
}

// Clone deep-copies n and its declared children. Meta is copied shallowly.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{
		Kind:  n.Kind,
		Span:  n.Span,
		Name:  n.Name,
		Value: n.Value,
		Op:    n.Op,
		Flags: n.Flags,
		slots: make([]Slot, len(n.slots)),
	}
	if n.Meta != nil {
		cp.Meta = make(map[string]any, len(n.Meta))
		for k, v := range n.Meta {
			cp.Meta[k] = v
		}
	}
	for i, s := range n.slots {
		cp.slots[i].Node = s.Node.Clone()
		if s.List != nil {
			cp.slots[i].List = make([]*Node, len(s.List))
			for j, c := range s.List {
				cp.slots[i].List[j] = c.Clone()
			}
		}
	}
	return cp
}

// Walk visits n and its declared descendants depth-first; returning false prunes.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, spec := range FieldsOf(n.Kind) {
		if spec.List {
			for _, c := range n.Children(spec.Name) {
				Walk(c, fn)
			}
			continue
		}
		Walk(n.Child(spec.Name), fn)
	}
}
