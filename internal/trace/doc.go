// Package trace records what the compiler is doing while it runs.
//
// Scopes nest from coarse to fine: the driver batch, one span per
// template, the analyse and convert passes inside it, and node points
// for rewrites that requeue freshly produced nodes. The level picks how
// deep a tracer listens:
//
//	phase   driver + templates
//	detail  + passes
//	debug   + nodes
//	error   nothing live; the ring is dumped on a crash
//
// Sinks: Nop, StreamTracer (writes immediately), RingTracer (keeps the
// last N events), MultiTracer (both).
//
//	weave --trace=trace.ndjson --trace-level=detail compile views/
//
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "analyse", parent)
//	defer span.End("")
package trace
