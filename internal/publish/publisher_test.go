package publish_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bactpipe/internal/publish"
	"bactpipe/internal/services"
	"bactpipe/internal/stage"
)

func TestPublishPerSampleLayout(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "ERR001.fastp.json")
	if err := os.WriteFile(src, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	pub := publish.New(filepath.Join(dir, "results"))
	if err := pub.Publish("fastp", "ERR001", []string{src}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	want := filepath.Join(dir, "results", "fastp", "ERR001", "ERR001.fastp.json")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected published file at %s: %v", want, err)
	}
}

func TestPublishGlobalLayout(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "multiqc_report.html")
	if err := os.WriteFile(src, []byte("<html></html>"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	pub := publish.New(filepath.Join(dir, "results"))
	if err := pub.Publish("report", stage.GlobalKey, []string{src}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	want := filepath.Join(dir, "results", "report", "multiqc_report.html")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected published report at %s: %v", want, err)
	}
}

func TestPublishMissingSourceIsPublishError(t *testing.T) {
	dir := t.TempDir()
	pub := publish.New(filepath.Join(dir, "results"))
	err := pub.Publish("fastp", "ERR001", []string{filepath.Join(dir, "absent.json")})
	if err == nil {
		t.Fatal("expected publish error")
	}
	if !errors.Is(err, services.ErrPublish) {
		t.Fatalf("expected ErrPublish marker, got %v", err)
	}
}
