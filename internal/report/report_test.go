package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"bactpipe/internal/report"
	"bactpipe/internal/runrecord"
)

func ptrTime(t time.Time) *time.Time { return &t }
func ptrInt(v int) *int              { return &v }

func sampleData() report.Data {
	started := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return report.Data{
		RunID:      "run-1234",
		OutputRoot: "/data/results",
		Summary:    runrecord.Summary{RunID: "run-1234", Total: 3, Succeeded: 2, Failed: 1},
		Invocations: []runrecord.Invocation{
			{
				Stage: "fastp", Sample: "S1", Status: runrecord.StatusSucceeded,
				StartedAt: ptrTime(started), FinishedAt: ptrTime(started.Add(42 * time.Second)),
				ExitCode: ptrInt(0),
			},
			{
				Stage: "assembly", Sample: "S1", Status: runrecord.StatusFailed,
				StartedAt: ptrTime(started), FinishedAt: ptrTime(started.Add(3 * time.Minute)),
				ExitCode: ptrInt(1), ErrorMessage: "shovill exited with code 1: out of memory",
			},
			{
				Stage: "report", Sample: "global", Status: runrecord.StatusSucceeded,
				StartedAt: ptrTime(started), FinishedAt: ptrTime(started.Add(5 * time.Second)),
				ExitCode: ptrInt(0), PublishError: "copy multiqc_report.html: disk full",
			},
		},
	}
}

func TestRenderListsInvocationsAndFailures(t *testing.T) {
	var buf bytes.Buffer
	report.Render(&buf, sampleData())
	out := buf.String()

	for _, want := range []string{
		"== Run run-1234 ==",
		"Fastp",
		"Assembly",
		"SUCCEEDED",
		"FAILED",
		"42s",
		"Assembly / S1: shovill exited with code 1: out of memory",
		"Report / global: publish failed: copy multiqc_report.html: disk full",
		"3 invocations: 2 succeeded, 1 failed",
		"Results: /data/results",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}

	// Non-terminal writers never get ANSI sequences.
	if strings.Contains(out, "\x1b[") {
		t.Errorf("unexpected color codes in non-tty output\n%s", out)
	}
}

func TestRenderUnfinishedInvocation(t *testing.T) {
	data := report.Data{
		RunID:   "run-x",
		Summary: runrecord.Summary{Total: 1, Pending: 1},
		Invocations: []runrecord.Invocation{
			{Stage: "fastp", Sample: "S1", Status: runrecord.StatusPending},
		},
	}
	var buf bytes.Buffer
	report.Render(&buf, data)
	out := buf.String()

	if !strings.Contains(out, "PENDING") {
		t.Fatalf("missing pending status\n%s", out)
	}
	// Duration and exit code render as placeholders before completion.
	if !strings.Contains(out, "-") {
		t.Fatalf("missing placeholder cells\n%s", out)
	}
}

func TestStageLabel(t *testing.T) {
	cases := map[string]string{
		"fastp":        "Fastp",
		"assembly":     "Assembly",
		"some_barrier": "Some Barrier",
	}
	for in, want := range cases {
		if got := report.StageLabel(in); got != want {
			t.Errorf("StageLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
