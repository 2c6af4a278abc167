package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestDisabledSpansAreNoop(t *testing.T) {
	if err := Init(false, nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	ctx, span := StartSpan(context.Background(), "noop")
	span.End()
	if _, ok := TraceID(ctx); ok {
		t.Fatalf("disabled tracing must not produce trace ids")
	}
}

func TestSpansExported(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(true, &buf); err != nil {
		t.Fatalf("init: %v", err)
	}
	ctx, span := StartSpan(context.Background(), "pipeline.features", attribute.Int("rows", 10))
	if _, ok := TraceID(ctx); !ok {
		t.Fatalf("expected a valid trace id")
	}
	span.End()
	if err := Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "pipeline.features") {
		t.Fatalf("span not exported: %s", buf.String())
	}
}
