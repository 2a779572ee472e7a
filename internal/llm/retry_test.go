package llm

import (
	"context"
	"errors"
	"testing"
)

func TestIsRetryableTerminalOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if isRetryable(ctx, errors.New("status 500")) {
		t.Fatalf("expected cancelled-context errors to be terminal regardless of message")
	}
}

func TestIsRetryableTransientOn5xxAnd429(t *testing.T) {
	ctx := context.Background()
	for _, msg := range []string{"status 429", "status 500", "status 503"} {
		if !isRetryable(ctx, errors.New(msg)) {
			t.Fatalf("expected %q to be retryable", msg)
		}
	}
}

func TestIsRetryableTerminalOnOther4xx(t *testing.T) {
	ctx := context.Background()
	if isRetryable(ctx, errors.New("status 400")) {
		t.Fatalf("expected 400 to be terminal")
	}
}

func TestWithRetryRetriesOnceThenSucceeds(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		if calls == 1 {
			return errors.New("status 503")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success on retry, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly 2 calls (1 + 1 retry), got %d", calls)
	}
}

func TestWithRetryDoesNotRetryTerminalErrors(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		return errors.New("status 400")
	})
	if err == nil {
		t.Fatalf("expected error to propagate")
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call for a terminal error, got %d", calls)
	}
}
