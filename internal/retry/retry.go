// Package retry runs an attempt function under an exponential backoff
// policy with jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Policy decides whether a failed attempt is retried and how long to wait
// before the next one.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the wait after the first failed attempt. It doubles after
	// every further attempt.
	BaseDelay time.Duration

	// MaxDelay caps every wait, jitter included.
	MaxDelay time.Duration

	// Jitter is the upper bound of the random amount added to each wait.
	Jitter time.Duration

	// Retryable reports whether err is transient. Nil means nothing is retried.
	Retryable func(err error) bool

	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy returns 5 attempts with a 1s base delay doubling up to 10s
// and up to 1s of jitter. Retryable must still be set by the caller.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Jitter:      time.Second,
	}
}

// Validate checks the policy for usable values.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry: max attempts must be >= 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay < 0 || p.MaxDelay < 0 || p.Jitter < 0 {
		return errors.New("retry: delays must not be negative")
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("retry: max delay %s is below base delay %s", p.MaxDelay, p.BaseDelay)
	}
	return nil
}

// Backoff returns the wait after the given failed attempt (1-based),
// without jitter: BaseDelay * 2^(attempt-1), capped at MaxDelay.
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		if d >= p.MaxDelay {
			break
		}
		d *= 2
	}
	return min(d, p.MaxDelay)
}

// Delay returns Backoff(attempt) plus random jitter, capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	d := p.Backoff(attempt)
	if p.Jitter > 0 {
		d += rand.N(p.Jitter)
	}
	return min(d, p.MaxDelay)
}

// Do calls fn until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached. The last error is returned as is.
// If ctx ends while waiting, the last error is joined with ctx.Err().
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	attempts := max(p.MaxAttempts, 1)

	for attempt := 1; ; attempt++ {
		v, err := fn(ctx, attempt)
		if err == nil {
			return v, nil
		}

		if attempt >= attempts || p.Retryable == nil || !p.Retryable(err) {
			return zero, err
		}
		if ctx.Err() != nil {
			return zero, errors.Join(err, ctx.Err())
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if serr := p.sleep(ctx, delay); serr != nil {
			return zero, errors.Join(err, serr)
		}
	}
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
