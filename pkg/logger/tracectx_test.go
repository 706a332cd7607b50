package logger_test

import (
	"context"
	"testing"

	"github.com/Srinivas-559/chat-app/pkg/logger"

	"go.opentelemetry.io/otel/trace"
)

func TestAttrsFromCtx(t *testing.T) {
	if got := logger.AttrsFromCtx(context.Background()); got != nil {
		t.Fatalf("expected nil attrs without a span, got %v", got)
	}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	attrs := logger.AttrsFromCtx(ctx)
	if len(attrs) != 2 {
		t.Fatalf("expected trace_id and span_id, got %v", attrs)
	}
	if attrs[0].Value.String() != traceID.String() {
		t.Fatalf("trace_id mismatch: %v", attrs[0].Value)
	}
	if attrs[1].Value.String() != spanID.String() {
		t.Fatalf("span_id mismatch: %v", attrs[1].Value)
	}
}
