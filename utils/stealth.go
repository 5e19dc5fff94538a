package utils

import (
	"context"
	"math/rand"
	"time"
)

// RandomDelay pauses for a random duration in [min, max]. It returns early
// with ctx.Err() when the context is cancelled.
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	return Sleep(ctx, RandomDuration(min, max))
}

// RandomDuration picks a duration in [min, max]. min >= max yields min.
func RandomDuration(min, max time.Duration) time.Duration {
	if min >= max {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
