package stages

import (
	"path/filepath"
	"strconv"

	"bactpipe/internal/config"
	"bactpipe/internal/stage"
)

// Assembly runs shovill on the trimmed read pair. The contig FASTA is
// forwarded to annotation; the assembly log stays a terminal artifact.
func Assembly(cfg *config.Config) *stage.Stage {
	params := cfg.Assembly
	return &stage.Stage{
		Name:      "assembly",
		Inputs:    []string{ChanTrimmed},
		Outputs:   []string{ChanContigs},
		Resources: stage.Resources{CPUs: params.Threads, MemoryMB: params.MemoryMB},
		Build: func(req stage.Request) (stage.Command, stage.Outputs, error) {
			reads, err := pairedReads(req)
			if err != nil {
				return stage.Command{}, stage.Outputs{}, err
			}
			outDir := filepath.Join(req.WorkDir, "shovill")
			contigs := filepath.Join(outDir, "contigs.fa")
			logFile := filepath.Join(outDir, "shovill.log")

			cmd := stage.Command{
				Binary: params.Binary,
				Args: []string{
					"--R1", reads[0],
					"--R2", reads[1],
					"--outdir", outDir,
					"--cpus", strconv.Itoa(params.Threads),
					"--ram", strconv.Itoa(params.RAMGb),
					"--depth", strconv.Itoa(params.Depth),
					"--kmers", params.Kmers,
					"--force",
				},
				Dir: req.WorkDir,
			}
			return cmd, stage.Outputs{
				Forward:   map[string][]string{ChanContigs: {contigs}},
				Artifacts: []string{logFile},
			}, nil
		},
	}
}
