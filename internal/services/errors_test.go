package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"bactpipe/internal/services"
)

func TestWrapTagsMarkerAndContext(t *testing.T) {
	cause := errors.New("exit status 2")
	err := services.Wrap(services.ErrExternalTool, "assembly", "run shovill", "command failed", cause)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"assembly", "run shovill", "command failed", "exit status 2"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "screen", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
}

func TestFatalClassification(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{services.Wrap(services.ErrNoInput, "", "discover", "no files matched", nil), true},
		{services.Wrap(services.ErrAmbiguousGrouping, "", "", "unpaired file", nil), true},
		{services.Wrap(services.ErrConfiguration, "", "", "project required", nil), true},
		{services.Wrap(services.ErrExternalTool, "fastp", "", "exit 1", nil), false},
		{services.Wrap(services.ErrPublish, "fastp", "copy", "disk full", nil), false},
		{fmt.Errorf("plain"), false},
	}
	for _, tc := range cases {
		if got := services.Fatal(tc.err); got != tc.fatal {
			t.Fatalf("Fatal(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}
