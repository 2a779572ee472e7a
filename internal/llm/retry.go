package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// isRetryable classifies an LLM call failure as transient. Adapted from the
// teacher's structured-output OpenAI client's IsRetryable: context
// cancellation and explicit deadlines are terminal (retrying won't help),
// 429 and 5xx are transient, network-level errors are transient, and any
// other 4xx is terminal.
func isRetryable(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx.Err() != nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := err.Error()
	if strings.Contains(msg, "429") {
		return true
	}
	for _, code := range []string{"500", "502", "503", "504"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}

// withRetry runs fn once, and again after a fixed 500ms backoff if the first
// failure was transient — exactly one retry, not an unbounded loop. The
// retry is not logged.
func withRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if !isRetryable(ctx, err) {
		return err
	}

	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}

	return fn()
}
