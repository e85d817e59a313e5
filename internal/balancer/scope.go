package balancer

import (
	"context"
	"time"
)

// Do runs fn under the blocking admission policy: it retries StartTask
// every PollInterval until admitted or ctx is done. Once admitted, EndTask
// is guaranteed on every exit path, and fn's error is returned unchanged.
//
// Light work bypasses admission entirely and runs immediately.
//
// The Balancer imposes no deadline of its own; bound the wait by deriving
// ctx from context.WithTimeout.
func (b *Balancer) Do(ctx context.Context, w Weight, fn func(context.Context) error) error {
	if !w.Throttled() {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for !b.StartTask(w) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.cfg.PollInterval):
		}
	}
	defer b.EndTask(w)
	return fn(ctx)
}

// TryDo runs fn under the fail-fast policy: a single StartTask attempt.
// When capacity or cooldown denies admission it returns (false, nil) —
// being skipped is an expected outcome, not an error. On admission the
// work runs with the same EndTask guarantee as Do.
func (b *Balancer) TryDo(ctx context.Context, w Weight, fn func(context.Context) error) (bool, error) {
	if !w.Throttled() {
		return true, fn(ctx)
	}
	if !b.StartTask(w) {
		return false, nil
	}
	defer b.EndTask(w)
	return true, fn(ctx)
}
