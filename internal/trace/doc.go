// Package trace is the structured event log of dbc.
//
// Every phase of a build (loading, parsing, linking, clause resolution,
// instrumentation) and of an execution emits span and point events into a
// Tracer. Events are either written immediately (stream) or kept in a ring
// buffer that is dumped when a run fails.
//
//	dbc check --trace=- --trace-level=phase ./examples
//
// Levels select how deep the log goes:
//
//   - LevelOff: nothing
//   - LevelError: ring dump on failure only
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: one span per class
//   - LevelDebug: one event per instrumented method and per violation
//
// Tracers travel through the pipeline in a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "instrument", 0)
//	defer span.End("")
package trace
