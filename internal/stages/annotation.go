package stages

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"bactpipe/internal/config"
	"bactpipe/internal/stage"
)

// Annotation runs prokka over a sample's contigs. The text summary feeds the
// aggregate report barrier; the remaining annotation files are artifacts.
func Annotation(cfg *config.Config) *stage.Stage {
	params := cfg.Annotation
	return &stage.Stage{
		Name:      "annotation",
		Inputs:    []string{ChanContigs},
		Outputs:   []string{ChanAnnotationReports},
		Resources: stage.Resources{CPUs: params.Threads, MemoryMB: params.MemoryMB},
		Build: func(req stage.Request) (stage.Command, stage.Outputs, error) {
			if len(req.Inputs) != 1 || len(req.Inputs[0].Paths) == 0 {
				return stage.Command{}, stage.Outputs{}, fmt.Errorf("sample %s: expected one contig item", req.Sample)
			}
			contigs := req.Inputs[0].Paths[0]
			outDir := filepath.Join(req.WorkDir, "prokka")
			prefix := req.Sample

			args := []string{
				"--outdir", outDir,
				"--prefix", prefix,
				"--cpus", strconv.Itoa(params.Threads),
				"--evalue", strconv.FormatFloat(params.Evalue, 'g', -1, 64),
				"--force",
			}
			if strings.TrimSpace(params.Genus) != "" {
				args = append(args, "--genus", params.Genus, "--usegenus")
			}
			args = append(args, contigs)

			cmd := stage.Command{
				Binary: params.Binary,
				Args:   args,
				Dir:    req.WorkDir,
			}
			return cmd, stage.Outputs{
				Forward: map[string][]string{
					ChanAnnotationReports: {filepath.Join(outDir, prefix+".txt")},
				},
				Artifacts: []string{
					filepath.Join(outDir, prefix+".gff"),
					filepath.Join(outDir, prefix+".faa"),
					filepath.Join(outDir, prefix+".fna"),
				},
			}, nil
		},
	}
}
