package application

import "context"

// Result is the outcome of a Task: either a value or an error.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the task succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Task is a remote operation running in its own goroutine.
// It resolves exactly once.
type Task[T any] struct {
	done chan struct{}
	res  Result[T]
}

// Go starts fn in the background. The context handed to fn keeps the
// caller's values but is never cancelled by the caller: once issued, a
// request runs to completion.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	detached := context.WithoutCancel(ctx)
	go func() {
		defer close(t.done)
		v, err := fn(detached)
		t.res = Result[T]{Value: v, Err: err}
	}()
	return t
}

// Resolved returns a task that is already complete.
func Resolved[T any](v T, err error) *Task[T] {
	t := &Task[T]{done: make(chan struct{}), res: Result[T]{Value: v, Err: err}}
	close(t.done)
	return t
}

// Done is closed once the task has resolved.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Await blocks until the task resolves or ctx is done. Giving up on the
// wait does not stop the task.
func (t *Task[T]) Await(ctx context.Context) Result[T] {
	select {
	case <-t.done:
		return t.res
	case <-ctx.Done():
		return Result[T]{Err: ctx.Err()}
	}
}

// Wait blocks until the task resolves.
func (t *Task[T]) Wait() Result[T] {
	<-t.done
	return t.res
}
