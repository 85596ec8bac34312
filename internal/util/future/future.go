// Package future runs one piece of work in the background and hands its
// result to whoever waits for it.
package future

import (
	"context"
	"sync"
)

// Future holds the outcome of a single background call. It completes
// exactly once; every Wait after that returns the same result.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// Go starts fn in a goroutine. fn receives ctx and should give up when it
// is cancelled.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		v, err := fn(ctx)
		f.complete(v, err)
	}()
	return f
}

// Resolved returns a Future that has already completed with v.
func Resolved[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	f.complete(v, nil)
	return f
}

// Failed returns a Future that has already completed with err.
func Failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	var zero T
	f.complete(zero, err)
	return f
}

// Wait blocks until the Future completes or ctx is done. A cancelled wait
// returns ctx.Err() and leaves the background call running.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Ready reports whether the Future has completed.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
	})
}
