package server

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Spawner decides how an accepted connection gets its goroutine. Spawn may
// block the accept loop; it returns an error only when ctx ends first.
type Spawner interface {
	Spawn(ctx context.Context, fn func()) error
}

// Unbounded starts one goroutine per connection with no limit.
type Unbounded struct{}

func (Unbounded) Spawn(_ context.Context, fn func()) error {
	go fn()
	return nil
}

// Pool allows at most n connections in flight. The accept loop waits for a
// free slot before taking the next connection's goroutine.
type Pool struct {
	sem *semaphore.Weighted
}

func NewPool(n int64) *Pool {
	return &Pool{sem: semaphore.NewWeighted(n)}
}

func (p *Pool) Spawn(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	go func() {
		defer p.sem.Release(1)
		fn()
	}()
	return nil
}

// NewSpawner returns Unbounded for maxConns <= 0 and a Pool otherwise.
func NewSpawner(maxConns int) Spawner {
	if maxConns <= 0 {
		return Unbounded{}
	}
	return NewPool(int64(maxConns))
}
