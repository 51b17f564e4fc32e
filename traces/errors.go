// Package traces provides utilities for working with OpenTelemetry traces.
package traces

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// RecordError logs err and records it on the span in ctx, if any. It returns
// err unchanged so call sites can use it inline.
func RecordError(ctx context.Context, err error, options ...trace.EventOption) error {
	if err == nil {
		return nil
	}
	slog.Error("Error occurred", "error", err)
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, options...)
	return err
}
