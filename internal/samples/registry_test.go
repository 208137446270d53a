package samples_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bactpipe/internal/samples"
	"bactpipe/internal/services"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("@r\nACGT\n+\nIIII\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestDiscoverGroupsPairs(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"ERR001_R1.fastq.gz", "ERR001_R2.fastq.gz",
		"ERR002_1.fq", "ERR002_2.fq",
		"ERR003_S5_L001_R1_001.fastq.gz", "ERR003_S5_L001_R2_001.fastq.gz",
	)

	got, err := samples.Discover(filepath.Join(dir, "*"))
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(got))
	}

	seen := map[string]bool{}
	assigned := map[string]bool{}
	for _, s := range got {
		seen[s.Key] = true
		if s.Read1 == "" || s.Read2 == "" {
			t.Fatalf("sample %q missing a mate", s.Key)
		}
		for _, r := range s.Reads() {
			if assigned[r] {
				t.Fatalf("file %q assigned twice", r)
			}
			assigned[r] = true
		}
	}
	for _, key := range []string{"ERR001", "ERR002", "ERR003"} {
		if !seen[key] {
			t.Fatalf("missing sample %q in %v", key, got)
		}
	}
	if len(assigned) != 6 {
		t.Fatalf("expected all 6 files assigned, got %d", len(assigned))
	}
}

func TestDiscoverNoMatches(t *testing.T) {
	dir := t.TempDir()
	_, err := samples.Discover(filepath.Join(dir, "*.fastq.gz"))
	if err == nil {
		t.Fatal("expected error for empty match set")
	}
	if !errors.Is(err, services.ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
}

func TestDiscoverUnpairedFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "ERR001_R1.fastq.gz")

	_, err := samples.Discover(filepath.Join(dir, "*"))
	if err == nil {
		t.Fatal("expected error for unpaired file")
	}
	if !errors.Is(err, services.ErrAmbiguousGrouping) {
		t.Fatalf("expected ErrAmbiguousGrouping, got %v", err)
	}
}

func TestDiscoverUnrecognizedName(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "notes.txt")

	_, err := samples.Discover(filepath.Join(dir, "*"))
	if !errors.Is(err, services.ErrAmbiguousGrouping) {
		t.Fatalf("expected ErrAmbiguousGrouping, got %v", err)
	}
}

func TestDiscoverConflictingRole(t *testing.T) {
	dir := t.TempDir()
	// Same key and role through two naming schemes.
	writeFiles(t, dir, "ERR001_R1.fastq.gz", "ERR001_1.fastq.gz", "ERR001_R2.fastq.gz")

	_, err := samples.Discover(filepath.Join(dir, "*"))
	if !errors.Is(err, services.ErrAmbiguousGrouping) {
		t.Fatalf("expected ErrAmbiguousGrouping, got %v", err)
	}
}
