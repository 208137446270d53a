package stages

import (
	"path/filepath"
	"strconv"

	"bactpipe/internal/config"
	"bactpipe/internal/stage"
)

// Screen runs mash screen on the trimmed reads against a reference sketch
// database. The report lands on stdout, captured into a per-sample tsv that
// feeds the aggregate report barrier.
func Screen(cfg *config.Config) *stage.Stage {
	params := cfg.Screen
	return &stage.Stage{
		Name:      "screen",
		Inputs:    []string{ChanTrimmed},
		Outputs:   []string{ChanScreenReports},
		Resources: stage.Resources{CPUs: params.Threads, MemoryMB: params.MemoryMB},
		Build: func(req stage.Request) (stage.Command, stage.Outputs, error) {
			reads, err := pairedReads(req)
			if err != nil {
				return stage.Command{}, stage.Outputs{}, err
			}
			report := filepath.Join(req.WorkDir, req.Sample+".screen.tsv")

			args := []string{"screen", "-p", strconv.Itoa(params.Threads)}
			if params.Winner {
				args = append(args, "-w")
			}
			args = append(args, params.SketchDB, reads[0], reads[1])

			cmd := stage.Command{
				Binary:     params.Binary,
				Args:       args,
				Dir:        req.WorkDir,
				StdoutFile: report,
			}
			return cmd, stage.Outputs{
				Forward: map[string][]string{ChanScreenReports: {report}},
			}, nil
		},
	}
}
