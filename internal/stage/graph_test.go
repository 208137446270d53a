package stage_test

import (
	"errors"
	"strings"
	"testing"

	"bactpipe/internal/services"
	"bactpipe/internal/stage"
)

func noopBuild(stage.Request) (stage.Command, stage.Outputs, error) {
	return stage.Command{Binary: "true"}, stage.Outputs{}, nil
}

func perItem(name, in string, outs ...string) *stage.Stage {
	return &stage.Stage{
		Name:      name,
		Inputs:    []string{in},
		Outputs:   outs,
		Resources: stage.Resources{CPUs: 1, MemoryMB: 1},
		Build:     noopBuild,
	}
}

func TestNewGraphAcceptsPipelineShape(t *testing.T) {
	report := &stage.Stage{
		Name:      "report",
		Inputs:    []string{"screen_reports", "annotation_reports"},
		Barrier:   true,
		Resources: stage.Resources{CPUs: 1, MemoryMB: 1},
		Build:     noopBuild,
	}
	g, err := stage.NewGraph("raw_reads",
		perItem("fastp", "raw_reads", "trimmed"),
		perItem("screen", "trimmed", "screen_reports"),
		perItem("assembly", "trimmed", "contigs"),
		perItem("annotation", "contigs", "annotation_reports"),
		report,
	)
	if err != nil {
		t.Fatalf("NewGraph returned error: %v", err)
	}
	if got := g.Consumers("trimmed"); len(got) != 2 {
		t.Fatalf("expected 2 consumers of trimmed, got %d", len(got))
	}
	if got := g.Producers("contigs"); len(got) != 1 || got[0].Name != "assembly" {
		t.Fatalf("unexpected producers of contigs: %v", got)
	}
	names := g.ChannelNames()
	if len(names) != 5 {
		t.Fatalf("expected 5 channels, got %v", names)
	}
}

func TestNewGraphRejectsCycle(t *testing.T) {
	_, err := stage.NewGraph("raw_reads",
		perItem("b", "x", "y"),
		perItem("c", "y", "x"),
	)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNewGraphRejectsSharedOutputChannel(t *testing.T) {
	_, err := stage.NewGraph("raw_reads",
		perItem("a", "raw_reads", "merged"),
		perItem("b", "raw_reads", "merged"),
		perItem("c", "merged"),
	)
	if err == nil {
		t.Fatal("expected shared output channel error")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if !strings.Contains(err.Error(), "merged") {
		t.Fatalf("error does not name the shared channel: %v", err)
	}
}

func TestNewGraphRejectsUnproducedInput(t *testing.T) {
	_, err := stage.NewGraph("raw_reads", perItem("a", "missing", "x"), perItem("b", "x"))
	if err == nil {
		t.Fatal("expected unproduced input error")
	}
}

func TestNewGraphRejectsDanglingOutput(t *testing.T) {
	_, err := stage.NewGraph("raw_reads", perItem("a", "raw_reads", "orphan"))
	if err == nil {
		t.Fatal("expected dangling output error")
	}
}

func TestNewGraphRejectsMultiInputPerItemStage(t *testing.T) {
	bad := &stage.Stage{
		Name:   "bad",
		Inputs: []string{"raw_reads", "other"},
		Build:  noopBuild,
	}
	_, err := stage.NewGraph("raw_reads", perItem("a", "raw_reads", "other"), bad)
	if err == nil {
		t.Fatal("expected multi-input error for per-item stage")
	}
}

func TestOutputsAll(t *testing.T) {
	o := stage.Outputs{
		Forward: map[string][]string{
			"reports": {"a.json"},
			"items":   {"a.fa"},
		},
		Artifacts: []string{"a.html"},
	}
	got := o.All()
	want := []string{"a.fa", "a.json", "a.html"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
