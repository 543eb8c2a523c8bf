// Package diag provides the shared diagnostic model and accumulation
// substrate used by the flowchart parser, the validators, and the
// downstream code generators.
//
// A Diagnostic is a structured finding with a severity tier, a category
// from the pipeline taxonomy, an optional source location, and an
// optional corrective suggestion. Handler is the single accumulation
// point for one run: it filters by a minimum severity, trips a circuit
// breaker once too many errors pile up, tracks retry attempts for
// recoverable findings, and renders reports.
//
// Components never construct a Handler themselves; the topmost
// orchestration layer builds one and passes it down, so parser and
// validators stay independently testable.
package diag
