package executor

import "time"

// reentrantPollInterval is how long the reentrant drain loop in
// Future.Wait/Get waits between steal attempts when no task is
// immediately available on the calling worker's sibling queues.
const reentrantPollInterval = 10 * time.Millisecond

// Future is a copyable handle sharing ownership of one sharedState. All
// copies observe the same eventual result.
type Future[T any] struct {
	state *sharedState[T]
}

// newFuture manufactures a Future over a freshly created sharedState.
func newFuture[T any](exec *Executor) (Future[T], *sharedState[T]) {
	s := newSharedState[T](exec)
	return Future[T]{state: s}, s
}

// Get blocks until the result is available and returns it, or returns
// the zero value and the captured error if the task failed.
//
// If the calling goroutine is one of the Executor's own workers, Get
// enters the reentrant drain loop (spec.md §4.5): it keeps stealing and
// running tasks from its own Executor while waiting, which is what
// allows a worker awaiting a Future produced by the same pool to avoid
// self-deadlock, including when the pool has exactly one worker.
func (f Future[T]) Get() (T, error) {
	if v, err, ok := f.state.snapshot(); ok {
		return v, err
	}

	if f.state.exec != nil && f.state.exec.isInExecutor() {
		for {
			if v, err, ok := f.state.snapshot(); ok {
				return v, err
			}
			if ran := f.state.exec.tryRunOne(); ran {
				continue
			}
			if f.state.waitOnce(reentrantPollInterval) {
				v, err, _ := f.state.snapshot()
				return v, err
			}
		}
	}

	f.state.waitBoundedBackoff()
	v, err, _ := f.state.snapshot()
	return v, err
}

// Wait blocks until the result is available, discarding the value and
// any error. It uses the same reentrant contract as Get.
func (f Future[T]) Wait() {
	_, _ = f.Get()
}

// IsSet reports whether the Future's result has already landed, without
// blocking.
func (f Future[T]) IsSet() bool {
	return f.state.isSet()
}

// Then schedules f to run on the Executor once this Future's result is
// available, passing the value (and any error). It returns a Future for
// f's own result. The continuation never runs inline on the goroutine
// that set the original result — it is always re-submitted to the
// Executor, per the locking discipline in spec.md §5.
func Then[T, R any](f Future[T], fn func(T, error) (R, error)) Future[R] {
	exec := f.state.exec
	out, outState := newFuture[R](exec)

	run := func(v T, err error) {
		exec.pushRaw(func() {
			rv, rerr := fn(v, err)
			outState.setResult(rv, rerr)
		})
	}

	f.state.addContinuation(run)
	return out
}
