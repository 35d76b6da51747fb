package client

import (
	"context"
	"sync"
)

// Future is the completion handle for an enqueued request. It is resolved
// exactly once.
type Future[T any] struct {
	id   string
	once sync.Once
	done chan struct{}
	resp Response[T]
}

func newFuture[T any](id string) *Future[T] {
	return &Future[T]{id: id, done: make(chan struct{})}
}

// ID is the task identifier used in logs and the request journal.
func (f *Future[T]) ID() string {
	return f.id
}

// Done is closed when the future resolves.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Resolved reports whether the future has a response.
func (f *Future[T]) Resolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future resolves or ctx ends.
func (f *Future[T]) Await(ctx context.Context) (Response[T], error) {
	select {
	case <-f.done:
		return f.resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get blocks until the future resolves. It never returns if the task was
// abandoned by a forced shutdown; use Await with a deadline in that case.
func (f *Future[T]) Get() Response[T] {
	<-f.done
	return f.resp
}

// complete resolves the future. Later calls are ignored and report false.
func (f *Future[T]) complete(resp Response[T]) bool {
	completed := false
	f.once.Do(func() {
		f.resp = resp
		close(f.done)
		completed = true
	})
	return completed
}
