// Package testsupport provides shared helpers for package tests: temp-dir
// configurations, fixture read files, and a fake command runner.
package testsupport

import (
	"path/filepath"
	"testing"

	"bactpipe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Screening is disabled by default so tests need no sketch database.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "results")
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Screen.Enabled = false
	cfg.Resources.CPUs = 4
	cfg.Resources.MemoryMB = 4096
	for _, section := range []*int{
		&cfg.Fastp.Threads, &cfg.Screen.Threads, &cfg.Assembly.Threads, &cfg.Annotation.Threads,
	} {
		*section = 1
	}
	for _, section := range []*int{
		&cfg.Fastp.MemoryMB, &cfg.Screen.MemoryMB, &cfg.Assembly.MemoryMB,
		&cfg.Annotation.MemoryMB, &cfg.Report.MemoryMB,
	} {
		*section = 512
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithScreening enables the screen stage against the given sketch database.
func WithScreening(sketchDB string) ConfigOption {
	return func(c *config.Config) {
		c.Screen.Enabled = true
		c.Screen.SketchDB = sketchDB
	}
}

// WithBudget overrides the global resource budget.
func WithBudget(cpus, memoryMB int) ConfigOption {
	return func(c *config.Config) {
		c.Resources.CPUs = cpus
		c.Resources.MemoryMB = memoryMB
	}
}
