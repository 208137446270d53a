package stages

import (
	"fmt"
	"path/filepath"
	"strconv"

	"bactpipe/internal/config"
	"bactpipe/internal/stage"
)

// Fastp trims and quality-filters each sample's read pair. The trimmed pair
// is forwarded to the downstream stages; the JSON QC report is forwarded to
// the aggregate report barrier and the HTML rendering stays an artifact.
func Fastp(cfg *config.Config) *stage.Stage {
	params := cfg.Fastp
	return &stage.Stage{
		Name:      "fastp",
		Inputs:    []string{ChanRawReads},
		Outputs:   []string{ChanTrimmed, ChanFastpReports},
		Resources: stage.Resources{CPUs: params.Threads, MemoryMB: params.MemoryMB},
		Build: func(req stage.Request) (stage.Command, stage.Outputs, error) {
			reads, err := pairedReads(req)
			if err != nil {
				return stage.Command{}, stage.Outputs{}, err
			}
			outR1 := filepath.Join(req.WorkDir, req.Sample+"_R1.trimmed.fastq.gz")
			outR2 := filepath.Join(req.WorkDir, req.Sample+"_R2.trimmed.fastq.gz")
			jsonReport := filepath.Join(req.WorkDir, req.Sample+".fastp.json")
			htmlReport := filepath.Join(req.WorkDir, req.Sample+".fastp.html")

			cmd := stage.Command{
				Binary: params.Binary,
				Args: []string{
					"--in1", reads[0],
					"--in2", reads[1],
					"--out1", outR1,
					"--out2", outR2,
					"--thread", strconv.Itoa(params.Threads),
					"--qualified_quality_phred", strconv.Itoa(params.Quality),
					"--length_required", strconv.Itoa(params.MinLength),
					"--json", jsonReport,
					"--html", htmlReport,
				},
				Dir: req.WorkDir,
			}
			return cmd, stage.Outputs{
				Forward: map[string][]string{
					ChanTrimmed:      {outR1, outR2},
					ChanFastpReports: {jsonReport},
				},
				Artifacts: []string{htmlReport},
			}, nil
		},
	}
}

func pairedReads(req stage.Request) ([]string, error) {
	if len(req.Inputs) != 1 || len(req.Inputs[0].Paths) != 2 {
		return nil, fmt.Errorf("sample %s: expected one paired read item, got %d item(s)", req.Sample, len(req.Inputs))
	}
	return req.Inputs[0].Paths, nil
}
