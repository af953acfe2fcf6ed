package tracex

import (
	"context"
	"testing"
)

func TestTraceID_RoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "t-1")
	if got, ok := TraceIDFrom(ctx); !ok || got != "t-1" {
		t.Fatalf("期望 round-trip 成功，got=%q ok=%v", got, ok)
	}
}

func TestWithTick_生成可读的tick标识(t *testing.T) {
	ctx := WithTick(context.Background(), "m1", 42, "production")
	if got, _ := TraceIDFrom(ctx); got != "tick-m1-42" {
		t.Fatalf("trace_id got=%q", got)
	}
	if got, _ := SpanIDFrom(ctx); got != "production" {
		t.Fatalf("span_id got=%q", got)
	}
	if _, ok := TraceIDFrom(nil); ok {
		t.Fatalf("nil ctx 不应返回 trace_id")
	}
}
