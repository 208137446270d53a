// Package config loads and validates the immutable pipeline configuration:
// paths, execution profile, the global resource budget, and per-stage tool
// parameters. Values come from a TOML file with CLI flag overrides applied by
// the command layer.
package config
