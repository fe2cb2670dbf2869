// Package trace records what long-running bigrsa commands are doing.
//
// Prime search and key generation can spend seconds inside Miller–Rabin
// without printing anything; the tracer makes those phases visible.
//
//	bigrsa search --bits 512 --trace=- --trace-level=detail
//
// Tracers:
//
//   - Nop: used when tracing is off
//   - StreamTracer: writes each event as it happens
//   - RingTracer: keeps the last N events for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// Levels gate scopes: phase shows commands and phases, detail adds search
// workers, debug adds every rejected candidate.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "keygen", 0)
//	defer span.End("")
package trace
