package runrecord_test

import (
	"context"
	"testing"

	"bactpipe/internal/runrecord"
)

func openStore(t *testing.T) *runrecord.Store {
	t.Helper()
	store, err := runrecord.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInvocationLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.BeginRun(ctx, "run-1", 1, "/out"); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	inv := &runrecord.Invocation{ID: "inv-1", RunID: "run-1", Stage: "fastp", Sample: "ERR001"}
	if err := store.CreateInvocation(ctx, inv); err != nil {
		t.Fatalf("CreateInvocation: %v", err)
	}
	if err := store.MarkRunning(ctx, "inv-1"); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	if err := store.MarkSucceeded(ctx, "inv-1", []string{"/w/a.fastq.gz"}); err != nil {
		t.Fatalf("MarkSucceeded: %v", err)
	}

	list, err := store.ListInvocations(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListInvocations: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 invocation, got %d", len(list))
	}
	got := list[0]
	if got.Status != runrecord.StatusSucceeded {
		t.Fatalf("unexpected status %q", got.Status)
	}
	if got.ExitCode == nil || *got.ExitCode != 0 {
		t.Fatalf("unexpected exit code %v", got.ExitCode)
	}
	if len(got.Outputs) != 1 || got.Outputs[0] != "/w/a.fastq.gz" {
		t.Fatalf("unexpected outputs %v", got.Outputs)
	}
	if got.StartedAt == nil || got.FinishedAt == nil {
		t.Fatal("expected start and finish timestamps")
	}
	if got.Duration() < 0 {
		t.Fatal("negative duration")
	}
}

func TestSampleCompletedAndSummary(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.BeginRun(ctx, "run-1", 2, "/out"); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	for _, spec := range []struct {
		id, stage, sample string
		fail              bool
	}{
		{"inv-1", "fastp", "ERR001", false},
		{"inv-2", "fastp", "ERR002", false},
		{"inv-3", "assembly", "ERR001", true},
	} {
		inv := &runrecord.Invocation{ID: spec.id, RunID: "run-1", Stage: spec.stage, Sample: spec.sample}
		if err := store.CreateInvocation(ctx, inv); err != nil {
			t.Fatalf("CreateInvocation: %v", err)
		}
		if err := store.MarkRunning(ctx, spec.id); err != nil {
			t.Fatalf("MarkRunning: %v", err)
		}
		if spec.fail {
			if err := store.MarkFailed(ctx, spec.id, 2, "shovill crashed"); err != nil {
				t.Fatalf("MarkFailed: %v", err)
			}
		} else if err := store.MarkSucceeded(ctx, spec.id, nil); err != nil {
			t.Fatalf("MarkSucceeded: %v", err)
		}
	}

	done, err := store.SampleCompleted(ctx, "run-1", "ERR001", "fastp")
	if err != nil || !done {
		t.Fatalf("SampleCompleted(fastp) = (%v, %v), want true", done, err)
	}
	done, err = store.SampleCompleted(ctx, "run-1", "ERR001", "assembly")
	if err != nil || done {
		t.Fatalf("SampleCompleted(assembly) = (%v, %v), want false", done, err)
	}

	sum, err := store.Summary(ctx, "run-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Total != 3 || sum.Succeeded != 2 || sum.Failed != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.Success() {
		t.Fatal("expected overall failure")
	}
}

func TestPublishErrorDoesNotChangeStatus(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.BeginRun(ctx, "run-1", 1, "/out"); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	inv := &runrecord.Invocation{ID: "inv-1", RunID: "run-1", Stage: "fastp", Sample: "ERR001"}
	if err := store.CreateInvocation(ctx, inv); err != nil {
		t.Fatalf("CreateInvocation: %v", err)
	}
	if err := store.MarkSucceeded(ctx, "inv-1", nil); err != nil {
		t.Fatalf("MarkSucceeded: %v", err)
	}
	if err := store.SetPublishError(ctx, "inv-1", "copy failed: disk full"); err != nil {
		t.Fatalf("SetPublishError: %v", err)
	}

	list, err := store.ListInvocations(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListInvocations: %v", err)
	}
	if list[0].Status != runrecord.StatusSucceeded {
		t.Fatalf("status changed to %q", list[0].Status)
	}
	if list[0].PublishError == "" {
		t.Fatal("expected publish error recorded")
	}

	sum, err := store.Summary(ctx, "run-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !sum.Success() {
		t.Fatal("publish error must not change overall success")
	}
}
