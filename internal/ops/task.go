package ops

import "context"

// Task is a handle on work that continues after an operation has returned.
// Callers are not required to wait on it; its failures are logged by the
// operation that started it.
type Task struct {
	done chan struct{}
	err  error
}

// runDetached runs fn in a new goroutine. fn keeps ctx's values but not its
// cancellation, so the work finishes even after the request that started it ends.
func runDetached(ctx context.Context, fn func(context.Context) error) *Task {
	t := &Task{done: make(chan struct{})}
	detached := context.WithoutCancel(ctx)
	go func() {
		defer close(t.done)
		t.err = fn(detached)
	}()
	return t
}

// Wait blocks until the task finishes and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Done is closed when the task finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
