package stages

import (
	"bactpipe/internal/config"
	"bactpipe/internal/stage"
)

// Channel names wiring the fixed pipeline DAG.
const (
	ChanRawReads          = "raw_reads"
	ChanTrimmed           = "trimmed"
	ChanFastpReports      = "fastp_reports"
	ChanContigs           = "contigs"
	ChanScreenReports     = "screen_reports"
	ChanAnnotationReports = "annotation_reports"
)

// Build assembles the validated stage graph for the run:
//
//	raw_reads → fastp → trimmed ⇉ {screen, assembly}
//	fastp → fastp_reports
//	assembly → contigs → annotation
//	{fastp_reports, screen_reports, annotation_reports} → report (collect barrier)
//
// Screening is optional; when disabled the report barrier waits on the fastp
// and annotation channels only.
func Build(cfg *config.Config) (*stage.Graph, error) {
	list := []*stage.Stage{
		Fastp(cfg),
		Assembly(cfg),
		Annotation(cfg),
	}
	reportInputs := []string{ChanFastpReports}
	if cfg.Screen.Enabled {
		list = append(list, Screen(cfg))
		reportInputs = append(reportInputs, ChanScreenReports)
	}
	reportInputs = append(reportInputs, ChanAnnotationReports)
	list = append(list, Report(cfg, reportInputs))
	return stage.NewGraph(ChanRawReads, list...)
}
