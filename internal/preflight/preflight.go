package preflight

import (
	"context"

	"bactpipe/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable readiness check for the run. Checks gated
// by a disabled feature are skipped.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	results = append(results, CheckBinary("fastp", cfg.Fastp.Binary))
	results = append(results, CheckBinary("shovill", cfg.Assembly.Binary))
	results = append(results, CheckBinary("prokka", cfg.Annotation.Binary))
	results = append(results, CheckBinary("multiqc", cfg.Report.Binary))

	if cfg.Screen.Enabled {
		results = append(results, CheckBinary("mash", cfg.Screen.Binary))
		results = append(results, CheckSketchDB(cfg.Screen.SketchDB))
	}

	return results
}

// Failed filters results down to the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, res := range results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}
