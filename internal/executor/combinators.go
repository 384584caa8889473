package executor

import "sync/atomic"

// Waiter is satisfied by any Future[T] regardless of T, since Wait and
// IsSet don't depend on the type parameter in their signature. It lets
// the heterogeneous combinator WhenAllAny accept a slice
// of Futures with different result types, standing in for the source's
// variadic overloads over heterogeneous future types (spec.md §4.6).
type Waiter interface {
	Wait()
	IsSet() bool
}

// WhenAll returns a Future completed once every input Future is set.
// Continuations are attached to every input's sharedState under the
// fixed iteration order of futures (spec.md's "lock every input state
// in a fixed order" discipline, ported to Go's continuation-based
// addContinuation rather than explicit multi-lock, since sharedState's
// own lock already serializes each attach/transition independently). An
// empty input returns an already-set Future, per spec.md §8.
func WhenAll[T any](exec *Executor, futures []Future[T]) Future[struct{}] {
	out, outState := newFuture[struct{}](exec)

	if len(futures) == 0 {
		outState.setResult(struct{}{}, nil)
		return out
	}

	remaining := int64(len(futures))
	for _, f := range futures {
		f := f
		f.state.addContinuation(func(T, error) {
			if atomic.AddInt64(&remaining, -1) == 0 {
				outState.setResult(struct{}{}, nil)
			}
		})
	}
	return out
}

// WhenAny returns a Future carrying the index of the first input Future
// to complete. Exactly one continuation wins the race via setResult's
// CAS-like guard; the index write happens in the same call that wins
// the guard, so it happens-before the set-bit transition observers see
// (resolving the ordering ambiguity spec.md §9 flags for the source's
// variadic whenAny).
func WhenAny[T any](exec *Executor, futures []Future[T]) Future[int] {
	out, outState := newFuture[int](exec)

	for i, f := range futures {
		i, f := i, f
		f.state.addContinuation(func(T, error) {
			outState.setResult(i, nil)
		})
	}
	return out
}

// WhenAllAny is the heterogeneous-future-type counterpart of WhenAll.
// Because sharedState's addContinuation is only reachable through the
// generic Future[T] itself, a heterogeneous slice is fanned out with one
// pushed task per Waiter that blocks on Wait() and then decrements a
// shared counter; the last arrival completes the aggregate. This trades
// a true zero-cost continuation for a worker slot per input, which is
// the honest Go shape of "variadic overloads using the same locking
// pattern" (spec.md §4.6) once continuations are type-erased.
func WhenAllAny(exec *Executor, waiters []Waiter) Future[struct{}] {
	out, outState := newFuture[struct{}](exec)

	if len(waiters) == 0 {
		outState.setResult(struct{}{}, nil)
		return out
	}

	remaining := int64(len(waiters))
	for _, w := range waiters {
		w := w
		exec.pushRaw(func() {
			w.Wait()
			if atomic.AddInt64(&remaining, -1) == 0 {
				outState.setResult(struct{}{}, nil)
			}
		})
	}
	return out
}

// WaitAll blocks the calling goroutine until every future is set,
// reentering the Executor if the caller is itself a worker.
func WaitAll[T any](exec *Executor, futures []Future[T]) {
	WhenAll(exec, futures).Wait()
}

// WaitAny blocks until one future is set and returns its index.
func WaitAny[T any](exec *Executor, futures []Future[T]) int {
	idx, _ := WhenAny(exec, futures).Get()
	return idx
}

// WaitAndGet waits on each future in order and collects its value,
// short-circuiting on the first error encountered.
func WaitAndGet[T any](futures []Future[T]) ([]T, error) {
	values := make([]T, 0, len(futures))
	for _, f := range futures {
		v, err := f.Get()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// WaitAndGetAllExceptions waits on each future in order and collects
// any captured errors without rethrowing (spec.md §6).
func WaitAndGetAllExceptions[T any](futures []Future[T]) []error {
	var errs []error
	for _, f := range futures {
		if _, err := f.Get(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
