// Package workpool implements the bounded work-sharing partitioner of
// spec.md §2/§5: a fixed-capacity semaphore that caps in-flight
// goroutines to a configured worker count. Grounded on
// build.Compiler.Analyze's per-batch sync.WaitGroup fan-out, replaced
// with golang.org/x/sync/semaphore so the pipeline can bound
// concurrency instead of launching one goroutine per item unconditionally.
package workpool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds concurrent execution of work items to a fixed capacity.
type Pool struct {
	sem *semaphore.Weighted
}

// New constructs a Pool that admits at most size concurrent workers. A
// non-positive size is treated as 1.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Acquire blocks until a worker slot is available or ctx is done.
func (p *Pool) Acquire(ctx context.Context) error {
	return p.sem.Acquire(ctx, 1)
}

// Release returns a worker slot acquired via Acquire.
func (p *Pool) Release() {
	p.sem.Release(1)
}
