// Package diag defines the diagnostic model shared by the compile passes.
//
// Diagnostic is the central record: severity, a compact numeric Code with a
// stable string id (TPL/CMP/IO/PRJ prefixes), a message, the primary span, an
// optional advice line and secondary notes.
//
// Passes report non-fatal findings through a Reporter (BagReporter,
// FuncReporter, MultiReporter). Fatal template errors travel as *Error values
// up the traversal and abort the compile; there is no partial compile mode.
//
// Package diag does no formatting; rendering lives in internal/diagfmt.
package diag
