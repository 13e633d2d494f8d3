package api

import (
	"context"
	"sync"
)

// refreshAttempt is one in-flight refresh; waiters block on done and then
// read err.
type refreshAttempt struct {
	done chan struct{}
	err  error
}

// refresher guarantees at most one refresh call is in flight. Callers that
// arrive while a refresh is running wait for it and share its result; this
// is the queue-and-replay guard from the browser interceptor.
type refresher struct {
	mu       sync.Mutex
	inflight *refreshAttempt
}

func (r *refresher) do(ctx context.Context, fn func(context.Context) error) error {
	r.mu.Lock()
	if att := r.inflight; att != nil {
		r.mu.Unlock()
		select {
		case <-att.done:
			return att.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	att := &refreshAttempt{done: make(chan struct{})}
	r.inflight = att
	r.mu.Unlock()

	att.err = fn(ctx)

	r.mu.Lock()
	r.inflight = nil
	r.mu.Unlock()
	close(att.done)

	return att.err
}
