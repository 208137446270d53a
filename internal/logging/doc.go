// Package logging provides slog construction and helpers shared across the
// pipeline: a console handler for interactive use, a JSON handler for
// machine-readable logs, and context-based correlation attributes keyed by
// run, stage, and sample.
package logging
