package logging

import (
	"context"
	"log/slog"

	"bactpipe/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for run identifiers.
	FieldRunID = "run_id"
	// FieldStage is the standardized structured logging key for stage names.
	FieldStage = "stage"
	// FieldSample is the standardized structured logging key for sample keys.
	FieldSample = "sample"
	// FieldEventType is the standardized structured logging key for event markers
	// (stage_start, stage_complete, stage_failure, publish_failure, ...).
	FieldEventType = "event_type"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	attrs := make([]Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldRunID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		attrs = append(attrs, String(FieldStage, stage))
	}
	if sample, ok := services.SampleFromContext(ctx); ok {
		attrs = append(attrs, String(FieldSample, sample))
	}
	return attrs
}

// WithContext returns a logger carrying the context's correlation attributes.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	attrs := ContextFields(ctx)
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(Args(attrs...)...)
}

// WithStage annotates ctx for downstream logging and service calls.
func WithStage(ctx context.Context, stage string) context.Context {
	return services.WithStage(ctx, stage)
}

// WithSample annotates ctx with the sample key being processed.
func WithSample(ctx context.Context, sample string) context.Context {
	return services.WithSample(ctx, sample)
}
