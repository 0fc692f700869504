package client

import (
	"context"
	"sync"
)

// Future is the pending result of an operation started by Async. It is
// resolved exactly once; every accessor observes the same value and error.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs fn on a new goroutine and returns a Future resolved with its result.
// A panic in fn is not recovered.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		v, err := fn(ctx)
		f.resolve(v, err)
	}()
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future is resolved or ctx is done. A ctx error does
// not resolve the future; the operation keeps its own context.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Resolved reports whether the future has been resolved.
func (f *Future[T]) Resolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Then calls exactly one of onSuccess or onFailure, exactly once, on a new
// goroutine after the future resolves. Either callback may be nil.
func (f *Future[T]) Then(onSuccess func(T), onFailure func(error)) {
	go func() {
		<-f.done
		if f.err != nil {
			if onFailure != nil {
				onFailure(f.err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(f.val)
		}
	}()
}
