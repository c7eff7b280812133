package check

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many isolated-transaction checks run their CPU-bound
// cryptographic verification concurrently. It holds no per-check state;
// Acquire/Release bracket the verification work, nothing else.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool that runs at most size checks at once. A size
// of zero or less defaults to 1, since an unsized pool would serialize
// nothing and a zero-weighted semaphore can never be acquired.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Run acquires a pool slot, runs fn, then releases the slot. It returns
// ctx.Err() without running fn if the context is done before a slot
// frees up.
func (p *Pool) Run(ctx context.Context, fn func() *Outcome) (*Outcome, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	return fn(), nil
}
