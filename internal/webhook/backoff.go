package webhook

import (
	"context"
	"time"
)

// maxBackoff caps a single wait.
const maxBackoff = 30 * time.Second

// BackoffDelay is the wait after a failed attempt (1-indexed):
// 1s after the first, 2s after the second, 4s after the third, ...
func BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Second << (attempt - 1)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
