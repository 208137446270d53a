package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoInput marks a reads glob that matched nothing.
	ErrNoInput = errors.New("no input found")
	// ErrAmbiguousGrouping marks input files that cannot be paired into samples.
	ErrAmbiguousGrouping = errors.New("ambiguous sample grouping")
	// ErrConfiguration marks invalid or missing configuration, including
	// profile parameters required before anything is scheduled.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalTool marks a stage command that exited non-zero or did not
	// produce its declared outputs.
	ErrExternalTool = errors.New("external tool error")
	// ErrPublish marks a filesystem failure while copying artifacts into the
	// results tree. Distinct from ErrExternalTool: the computation succeeded.
	ErrPublish = errors.New("publish error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether err should abort the whole run before or instead of
// scheduling. Invocation and publish failures are local to one sample's path.
func Fatal(err error) bool {
	return errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrAmbiguousGrouping) ||
		errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
