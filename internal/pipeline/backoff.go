package pipeline

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// backoff is an exponential retry delay: 200ms doubling to a 5s cap.
type backoff struct {
	clock   clockwork.Clock
	current time.Duration
}

func newBackoff(clock clockwork.Clock) *backoff {
	return &backoff{clock: clock, current: initialBackoff}
}

func (b *backoff) reset() {
	b.current = initialBackoff
}

// wait sleeps for the current delay and then doubles it. It returns false if
// ctx is cancelled first.
func (b *backoff) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	timer := b.clock.NewTimer(b.current)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
	}

	b.current *= 2
	if b.current > maxBackoff {
		b.current = maxBackoff
	}
	return true
}
