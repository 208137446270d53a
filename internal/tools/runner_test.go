package tools_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"bactpipe/internal/stage"
	"bactpipe/internal/tools"
)

func TestRunCapturesStdoutFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	dir := t.TempDir()
	capture := filepath.Join(dir, "screen.tsv")

	res, err := tools.NewCommandRunner().Run(context.Background(), stage.Command{
		Binary:     "sh",
		Args:       []string{"-c", "echo hit"},
		Dir:        dir,
		StdoutFile: capture,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("unexpected exit code %d", res.ExitCode)
	}
	data, err := os.ReadFile(capture)
	if err != nil {
		t.Fatalf("read capture: %v", err)
	}
	if strings.TrimSpace(string(data)) != "hit" {
		t.Fatalf("unexpected capture %q", string(data))
	}
}

func TestRunReportsNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	res, err := tools.NewCommandRunner().Run(context.Background(), stage.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo broken >&2; exit 3"},
		Dir:    t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("expected exit 3, got %d", res.ExitCode)
	}
	if len(res.StderrTail) == 0 || !strings.Contains(res.StderrTail[0], "broken") {
		t.Fatalf("expected stderr tail, got %v", res.StderrTail)
	}
}

func TestRunMissingBinary(t *testing.T) {
	_, err := tools.NewCommandRunner().Run(context.Background(), stage.Command{
		Binary: "definitely-not-a-real-binary-4242",
		Dir:    t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}
