package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"time"

	"github.com/valpere/newstran/internal/translator"
)

// MaxRetries bounds the attempts for a single chunk translation call.
const MaxRetries = 3

// IsRetryable reports whether a translation error is worth retrying.
// Provider rate limits and server errors qualify, as do call timeouts.
// Cancellation of the surrounding run does not.
func IsRetryable(err error) bool {
	var retryErr *translator.RetryableError
	if errors.As(err, &retryErr) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}
