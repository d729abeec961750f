package shared_test

import (
	"context"
	"testing"

	"github.com/basket/tasktrack/internal/shared"
)

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	if got := shared.TraceID(ctx); got != "-" {
		t.Fatalf("expected placeholder for empty context, got %q", got)
	}

	ctx = shared.WithTraceID(ctx, "abc-123")
	if got := shared.TraceID(ctx); got != "abc-123" {
		t.Fatalf("expected abc-123, got %q", got)
	}
}

func TestNewTraceIDUnique(t *testing.T) {
	a, b := shared.NewTraceID(), shared.NewTraceID()
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestUserID(t *testing.T) {
	ctx := context.Background()
	if got := shared.UserID(ctx); got != 0 {
		t.Fatalf("expected 0 for empty context, got %d", got)
	}
	ctx = shared.WithUserID(ctx, 42)
	if got := shared.UserID(ctx); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}
