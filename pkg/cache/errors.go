package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnavailable is returned when a remote backend cannot be reached.
	ErrUnavailable = errors.New("cache unavailable")

	// ErrCorrupt is returned when a stored entry cannot be decoded.
	ErrCorrupt = errors.New("corrupt cache entry")
)

// Backoff is the retry policy for commands sent to a remote backend.
type Backoff struct {
	// Attempts is the total number of tries. Values below 1 mean 1.
	Attempts int
	// Delay is the wait before the second try; it doubles after every
	// further failure.
	Delay time.Duration
}

// Do runs op until it succeeds, reports a permanent failure or the attempts
// are used up. op returns whether its error is worth another try. The final
// error wraps both ErrUnavailable and op's error.
func (b Backoff) Do(ctx context.Context, op func() (retry bool, err error)) error {
	delay := b.Delay
	for attempt := 1; ; attempt++ {
		retry, err := op()
		if err == nil {
			return nil
		}
		if !retry || attempt >= b.Attempts {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}
