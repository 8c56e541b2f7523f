// Package compiler lowers a decoded template tree into a host program.
//
// A compile runs two traversals over the same tree with one Session, so both
// passes see the same paths, scopes and bindings:
//
//   - analyse declares bindings, records references and computes the
//     mutated/escapes flags of every scope, minting private context aliases
//     where a mutated scope escapes;
//   - convert lowers every template construct into host nodes, reading only
//     what analyse decided.
//
// Extensions add handlers to either pass; they run after the core handlers
// of the same kind and phase.
package compiler
