package executor

import "sync"

var (
	defaultOnce sync.Once
	defaultExec *Executor
)

// Default returns the process-wide default Executor, constructing it
// (sized to runtime.NumCPU()) on first use. Combinators and callers that
// have no specific Executor to hand a Future may use this instead of
// threading one through explicitly (spec.md §9, "Global executor").
//
// Shutdown is the caller's responsibility: call StopDefault from the
// program's main before exit if the default was ever used, to avoid
// leaking its worker goroutines past process teardown in tests.
func Default() *Executor {
	defaultOnce.Do(func() {
		defaultExec = New(0, WithName("default"))
	})
	return defaultExec
}

// StopDefault joins the default Executor if one was ever created. It is
// a no-op if Default was never called.
func StopDefault() {
	if defaultExec != nil {
		defaultExec.Join()
	}
}
