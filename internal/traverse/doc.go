// Package traverse is the mutation-safe tree walker under both compiler
// passes.
//
// A Session owns the per-unit state: canonical Paths cached by (parent,
// child) identity, Scopes kept in a side table keyed by node, and Bindings in
// an arena with a parent-pointer table for shadow chains. Handlers are
// registered on a Visitor by kind or alias, exploded into a per-kind table,
// merged with extension tables and bound to the pass state.
//
// Rewrites go through Path: ReplaceWith, ReplaceWithMultipleJS and Remove
// keep cached sibling paths in sync and queue produced nodes so they are
// visited before the next sibling.
package traverse
