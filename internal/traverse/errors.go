package traverse

import (
	"errors"
	"fmt"

	"weave/internal/ast"
)

var (
	// ErrNotList: a multi-node operation on a single-child slot.
	ErrNotList = errors.New("container is not a list")
	// ErrRemoved: the path was removed and is permanently dead.
	ErrRemoved = errors.New("path was removed")
	// ErrDetached: the node is no longer found under its parent.
	ErrDetached = errors.New("path is detached from its parent")
	// ErrNoParent: the operation needs a containing slot.
	ErrNoParent = errors.New("path has no parent")
	// ErrContextRead: a context alias would be minted after readers saw the old one.
	ErrContextRead = errors.New("context name already read")
)

// InvariantError reports misuse of the path API, i.e. a compiler bug rather
// than a template authoring mistake.
type InvariantError struct {
	Op   string
	Kind ast.Kind
	Err  error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("traverse: %s on %s: %v", e.Op, e.Kind, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }

func invariant(op string, n *ast.Node, err error) error {
	k := ast.KindInvalid
	if n != nil {
		k = n.Kind
	}
	return &InvariantError{Op: op, Kind: k, Err: err}
}
