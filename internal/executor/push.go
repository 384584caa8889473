package executor

// Go methods cannot be generic, so the `push(callable, args...)` surface
// from spec.md §6 is exposed as a package-level generic function taking
// the already-bound closure, rather than as an Executor method — the
// Executor itself stays non-generic and only deals in bare Tasks.

// Push wraps fn in a packaged task: it is submitted to e, and its
// result (value or captured panic/error) is delivered through the
// returned Future. This is the generic counterpart of spec.md's
// `push(callable, args…) -> Future<R>`.
func Push[T any](e *Executor, fn func() (T, error)) (Future[T], error) {
	fut, state := newFuture[T](e)

	task := func() {
		v, err := invokeSafely(fn)
		state.setResult(v, err)
	}

	if err := e.Push(task); err != nil {
		return Future[T]{}, err
	}
	return fut, nil
}

// invokeSafely calls fn, converting any panic raised inside into a
// PanicError so it can be stored in the SharedState and resurface at
// Future.Get, matching the packaged-task exception-safety boundary in
// spec.md §4.5.
func invokeSafely[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}

// PanicError wraps a recovered panic value so it can travel through a
// Future exactly like a captured exception.
type PanicError struct {
	Value any
}

func (p *PanicError) Error() string {
	if err, ok := p.Value.(error); ok {
		return "task panicked: " + err.Error()
	}
	return "task panicked"
}
