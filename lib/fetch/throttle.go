package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// DefaultDelay is the pause between two requests when none is configured.
const DefaultDelay = 500 * time.Millisecond

// ErrNotStarted is returned when the next request slot lies beyond the
// context deadline. The request was never sent. It also matches
// context.DeadlineExceeded.
var ErrNotStarted = errors.New("request not started before the context deadline")

type throttled struct {
	inner   Fetcher
	limiter *rate.Limiter
}

// Throttle limits inner to one request per delay, shared across every
// goroutine that uses the returned Fetcher. A delay <= 0 disables it.
func Throttle(inner Fetcher, delay time.Duration) Fetcher {
	if delay <= 0 {
		return inner
	}
	return throttled{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

func (t throttled) Fetch(ctx context.Context, url string) (string, error) {
	err := t.limiter.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// rate.Limiter gives up early when the wait would outlast the deadline
		return "", fmt.Errorf("%w: %w", ErrNotStarted, context.DeadlineExceeded)
	}
	return t.inner.Fetch(ctx, url)
}
