package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"bactpipe/internal/fileutil"
)

func TestCopyInto(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "contigs.fa")
	if err := os.WriteFile(src, []byte(">ctg1\nACGT\n"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	destDir := filepath.Join(dir, "results", "assembly")
	dst, err := fileutil.CopyInto(src, destDir)
	if err != nil {
		t.Fatalf("CopyInto returned error: %v", err)
	}
	if dst != filepath.Join(destDir, "contigs.fa") {
		t.Fatalf("unexpected destination %q", dst)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != ">ctg1\nACGT\n" {
		t.Fatalf("unexpected contents %q", string(data))
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := fileutil.CopyFile(filepath.Join(dir, "absent"), filepath.Join(dir, "dst"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}
