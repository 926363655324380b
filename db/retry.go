package db

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn up to attempts times, waiting delay between failures. It
// returns nil on the first success. When every attempt fails the result
// wraps ErrAttemptsExhausted and the last error. A cancelled ctx stops the
// wait early and is reported together with the last error.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		return fmt.Errorf("retry: attempts must be positive, got %d", attempts)
	}
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if last = fn(attempt); last == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry interrupted after attempt %d: %w (last error: %w)", attempt, ctx.Err(), last)
		case <-t.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempts, last)
}
