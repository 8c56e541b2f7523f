package diag

import (
	"errors"
)

// Error is a diagnostic raised as a Go error. Structural template errors are
// returned as *Error and abort the compile; nothing recovers them locally.
type Error struct {
	Diagnostic
	// Rendered holds the message with a source excerpt, when a source was available.
	Rendered string
}

func (e *Error) Error() string {
	if e.Rendered != "" {
		return e.Rendered
	}
	return e.Code.ID() + ": " + e.Message
}

// AsError unwraps err into a *Error.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
