package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteReadPair creates an R1/R2 fastq pair for the sample under dir and
// returns the two paths.
func WriteReadPair(t testing.TB, dir, sample string) (string, string) {
	t.Helper()
	r1 := filepath.Join(dir, sample+"_R1.fastq.gz")
	r2 := filepath.Join(dir, sample+"_R2.fastq.gz")
	for _, path := range []string{r1, r2} {
		if err := os.WriteFile(path, []byte("@read\nACGT\n+\nIIII\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return r1, r2
}

// Touch creates an empty file at path, creating parent directories.
func Touch(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}
