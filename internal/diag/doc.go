// Package diag defines the diagnostic model shared by the front-end, the
// clause resolver and the instrumentation pass.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Note, Warning or Error. Any Error fails the build.
//   - Code – stable dotted identifier (missing.clause, wrong.param.type, ...)
//     an external sink can match against.
//   - Args – ordered string arguments; Message is rendered from them with the
//     code's template, so sinks may ignore Message and format Args themselves.
//   - Primary – source.Span of the offending clause reference or declaration.
//   - Notes – optional secondary spans.
//
// # Emitting diagnostics
//
// Phases emit through a Reporter and never stop on the first defect: every
// contract problem of a compilation is reported in one run. BagReporter
// collects into a Bag (limit, sort, dedup); DedupReporter filters repeats
// produced by inherited contracts.
//
// Rendering lives in internal/diagfmt.
package diag
