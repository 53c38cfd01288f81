package commands

import (
	"context"
	"testing"
	"time"
)

func TestEnsureContextDefaultsNil(t *testing.T) {
	if ctx := EnsureContext(nil); ctx == nil {
		t.Fatal("expected a non-nil context")
	}
	parent := context.Background()
	if ctx := EnsureContext(parent); ctx != parent {
		t.Fatal("expected the supplied context to pass through")
	}
}

func TestWithCommandTimeoutSkipsNonPositive(t *testing.T) {
	ctx, cancel := WithCommandTimeout(context.Background(), 0)
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("expected no deadline for zero timeout")
	}

	ctx, cancel = WithCommandTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Fatal("expected a deadline for positive timeout")
	}
}

func TestEnsureLoggerDefaultsNil(t *testing.T) {
	if logger := EnsureLogger(nil); logger == nil {
		t.Fatal("expected a usable logger")
	}
}

func TestHandlerExecutesWithNilContext(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		if ctx == nil {
			t.Fatal("expected a non-nil context inside exec")
		}
		called = true
		return nil
	})

	if err := h.Execute(nil, testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected the wrapped function to run")
	}
}
