package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bactpipe/internal/logging"
	"bactpipe/internal/services"
)

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")

	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("pipeline started", logging.String("reads", "*.fastq.gz"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "pipeline started") {
		t.Fatalf("log output missing message: %q", string(data))
	}
	if !strings.Contains(string(data), "reads: *.fastq.gz") {
		t.Fatalf("log output missing attr: %q", string(data))
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestJSONFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("expected json output, got %q", string(data))
	}
}

func TestWithContextCarriesCorrelation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	base, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = logging.WithStage(ctx, "assembly")
	ctx = logging.WithSample(ctx, "SRR0001")

	logging.WithContext(ctx, base).Info("dispatched")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"run_id":"run-1"`, `"stage":"assembly"`, `"sample":"SRR0001"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}
