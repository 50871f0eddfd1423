package llm

import (
	"context"
	"math/rand"
	"time"
)

const (
	defaultMaxAttempts = 6
	maxBackoff         = 30 * time.Second
)

// retryableStatus reports whether an HTTP status warrants a retry.
func retryableStatus(code int) bool {
	return code == 429 || (code >= 500 && code < 600)
}

// backoffDelay returns the exponential delay with jitter for a 1-based attempt.
func backoffDelay(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt))*time.Second + time.Duration(rand.Int63n(int64(time.Second)))
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// sleepCtx waits for d or until ctx is done, returning ctx.Err() in that case.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
