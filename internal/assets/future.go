package assets

import "sync"

// Future is a one-shot result that is either resolved with a value or
// rejected with an error.
type Future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// NewFuture creates a pending future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved creates a future that is already complete.
func Resolved[T any](v T, err error) *Future[T] {
	f := NewFuture[T]()
	f.complete(v, err)
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.val = v
		f.err = err
		close(f.done)
	})
}

// Resolve completes the future with a value. Later completions are ignored.
func (f *Future[T]) Resolve(v T) {
	f.complete(v, nil)
}

// Reject completes the future with an error. Later completions are ignored.
func (f *Future[T]) Reject(err error) {
	var zero T
	f.complete(zero, err)
}

// Done is closed once the future completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Ready reports whether the future has completed, without blocking.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until completion and returns the result.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.val, f.err
}
