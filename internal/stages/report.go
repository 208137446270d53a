package stages

import (
	"path/filepath"

	"bactpipe/internal/config"
	"bactpipe/internal/stage"
)

// Report is the collect-barrier stage: one multiqc invocation over every
// sample's fastp, screen, and annotation reports, after all producer channels
// close.
func Report(cfg *config.Config, inputs []string) *stage.Stage {
	params := cfg.Report
	return &stage.Stage{
		Name:      "report",
		Inputs:    inputs,
		Barrier:   true,
		Resources: stage.Resources{CPUs: 1, MemoryMB: params.MemoryMB},
		Build: func(req stage.Request) (stage.Command, stage.Outputs, error) {
			outFile := filepath.Join(req.WorkDir, "multiqc_report.html")

			args := []string{
				"--outdir", req.WorkDir,
				"--filename", "multiqc_report.html",
				"--title", params.Title,
				"--force",
			}
			for _, item := range req.Inputs {
				args = append(args, item.Paths...)
			}

			cmd := stage.Command{
				Binary: params.Binary,
				Args:   args,
				Dir:    req.WorkDir,
			}
			return cmd, stage.Outputs{Artifacts: []string{outFile}}, nil
		},
	}
}
