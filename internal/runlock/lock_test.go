package runlock_test

import (
	"testing"

	"bactpipe/internal/runlock"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()

	first, err := runlock.Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}

	second, err := runlock.Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire after release returned error: %v", err)
	}
	_ = second.Release()
}
