package executor

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// Go has no equivalent of std::this_thread::get_id(), and goroutines
// are not OS threads, so the "thread-id -> worker index" map from
// spec.md §3/§4.6 is ported onto the runtime's own goroutine id, read
// off the goroutine's stack trace header. This is the same technique a
// handful of widely used Go libraries use for goroutine-scoped state
// when no explicit context is threaded through; it is
// read-only and only ever used to answer "is the calling goroutine one
// of my own workers", never to synchronize correctness-critical state.
var workerRegistry sync.Map // goroutine id (uint64) -> *workerEntry

type workerEntry struct {
	exec  *Executor
	index int
}

// registerWorker records the calling goroutine as worker `index` of e
// and returns the goroutine id used as the registry key, so it can be
// removed again on exit.
func registerWorker(e *Executor, index int) uint64 {
	id := goroutineID()
	workerRegistry.Store(id, &workerEntry{exec: e, index: index})
	return id
}

func unregisterWorker(id uint64) {
	workerRegistry.Delete(id)
}

// currentWorkerIndex reports the calling goroutine's worker index within
// e, if it is one of e's own workers.
func currentWorkerIndex(e *Executor) (int, bool) {
	v, ok := workerRegistry.Load(goroutineID())
	if !ok {
		return 0, false
	}
	entry := v.(*workerEntry)
	if entry.exec != e {
		return 0, false
	}
	return entry.index, true
}

// goroutineID extracts the numeric id from the header line of
// runtime.Stack, e.g. "goroutine 18 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]

	space := bytes.IndexByte(b, ' ')
	if space < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(b[:space]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
