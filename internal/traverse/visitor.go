package traverse

import "weave/internal/ast"

// Phase selects enter or exit handlers.
type Phase uint8

const (
	PhaseEnter Phase = iota
	PhaseExit
)

func (ph Phase) String() string {
	if ph == PhaseExit {
		return "exit"
	}
	return "enter"
}

// Func is a typed handler; S is the compile state threaded through a pass.
type Func[S any] func(p *Path, state S) error

type registration[S any] struct {
	sel   ast.Selector
	phase Phase
	fn    Func[S]
}

// Visitor collects handler registrations by kind or alias. Explode turns it
// into a dispatch table once.
type Visitor[S any] struct {
	Name  string
	regs  []registration[S]
	table *Table[S]
}

func NewVisitor[S any](name string) *Visitor[S] {
	return &Visitor[S]{Name: name}
}

// Enter registers fns to run before the node's children.
func (v *Visitor[S]) Enter(sel ast.Selector, fns ...Func[S]) *Visitor[S] {
	return v.On(sel, PhaseEnter, fns...)
}

// Exit registers fns to run after the node's children.
func (v *Visitor[S]) Exit(sel ast.Selector, fns ...Func[S]) *Visitor[S] {
	return v.On(sel, PhaseExit, fns...)
}

func (v *Visitor[S]) On(sel ast.Selector, ph Phase, fns ...Func[S]) *Visitor[S] {
	for _, fn := range fns {
		if fn != nil {
			v.regs = append(v.regs, registration[S]{sel: sel, phase: ph, fn: fn})
		}
	}
	v.table = nil
	return v
}

// Table is the exploded form: per concrete kind, ordered enter/exit lists.
type Table[S any] struct {
	lists [2][ast.KindCount][]Func[S]
}

// Explode expands alias registrations into every member kind, keeping
// registration order. The result is cached, so exploding twice is free.
func Explode[S any](v *Visitor[S]) *Table[S] {
	if v == nil {
		return &Table[S]{}
	}
	if v.table != nil {
		return v.table
	}
	t := &Table[S]{}
	for _, r := range v.regs {
		for _, k := range r.sel.Kinds() {
			t.lists[r.phase][k] = append(t.lists[r.phase][k], r.fn)
		}
	}
	v.table = t
	return t
}

// Merge concatenates handler lists per kind and phase in argument order.
func Merge[S any](tables ...*Table[S]) *Table[S] {
	out := &Table[S]{}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for ph := range t.lists {
			for k, fns := range t.lists[ph] {
				if len(fns) == 0 {
					continue
				}
				out.lists[ph][k] = append(out.lists[ph][k], fns...)
			}
		}
	}
	return out
}

// Handlers returns the handlers for kind k in phase ph.
func (t *Table[S]) Handlers(k ast.Kind, ph Phase) []Func[S] {
	return t.lists[ph][k]
}

// Len counts registered handlers over all kinds and phases.
func (t *Table[S]) Len() int {
	n := 0
	for ph := range t.lists {
		for _, fns := range t.lists[ph] {
			n += len(fns)
		}
	}
	return n
}

// Bind closes the table over state, producing a traversal dispatcher.
func (t *Table[S]) Bind(state S) *Dispatcher {
	d := &Dispatcher{}
	for ph := range t.lists {
		for k, fns := range t.lists[ph] {
			if len(fns) == 0 {
				continue
			}
			hs := make([]Handler, len(fns))
			for i, fn := range fns {
				hs[i] = func(p *Path) error { return fn(p, state) }
			}
			d.lists[ph][k] = hs
		}
	}
	return d
}

// Handler is a handler already bound to its state.
type Handler func(p *Path) error

// Dispatcher drives one traversal.
type Dispatcher struct {
	lists [2][ast.KindCount][]Handler
}

func (d *Dispatcher) handlers(k ast.Kind, ph Phase) []Handler {
	if int(k) >= ast.KindCount {
		return nil
	}
	return d.lists[ph][k]
}

// Has reports whether any handler is registered for k.
func (d *Dispatcher) Has(k ast.Kind) bool {
	return len(d.handlers(k, PhaseEnter)) > 0 || len(d.handlers(k, PhaseExit)) > 0
}

// shouldVisit: a node is worth a path when it has handlers or anything to
// descend into. Empty optional slots are never visited.
func (d *Dispatcher) shouldVisit(n *ast.Node) bool {
	if n == nil {
		return false
	}
	if d.Has(n.Kind) {
		return true
	}
	for _, spec := range ast.FieldsOf(n.Kind) {
		if spec.List {
			if len(n.Children(spec.Name)) > 0 {
				return true
			}
			continue
		}
		if n.Child(spec.Name) != nil {
			return true
		}
	}
	return false
}
