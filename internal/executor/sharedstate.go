package executor

import (
	"sync"
	"time"
)

// result is the one-shot outcome slot for a sharedState, modelled as a
// small sum type rather than the tagged-value-plus-void-placeholder
// trick the teacher's reference design historically used (see
// spec.md §9, "Polymorphism of future results").
type result[T any] struct {
	value T
	err   error
	set   bool
}

// sharedState is the cell linking a task's outcome to its Futures and
// any continuations registered via Future.Then. It is always owned by a
// *sync.RWMutex-free sync.Mutex because the state transition must
// happen-before continuation fanout, and continuations never re-enter
// this lock (they only ever push work onto the Executor, per the
// locking discipline in spec.md §5).
type sharedState[T any] struct {
	mu            sync.Mutex
	cond          sync.Cond
	res           result[T]
	continuations []func(T, error)
	exec          *Executor
}

func newSharedState[T any](exec *Executor) *sharedState[T] {
	s := &sharedState[T]{exec: exec}
	s.cond.L = &s.mu
	return s
}

// setResult transitions unset -> set exactly once. Concurrent callers
// race on the CAS-like guard below; losers are no-ops, matching the
// "setExecuted" contract in spec.md §4.5.
func (s *sharedState[T]) setResult(v T, err error) {
	s.mu.Lock()
	if s.res.set {
		s.mu.Unlock()
		return
	}
	s.res.value = v
	s.res.err = err
	s.res.set = true
	conts := s.continuations
	s.continuations = nil
	s.mu.Unlock()

	s.cond.Broadcast()

	for _, c := range conts {
		c(v, err)
	}
}

func (s *sharedState[T]) isSet() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res.set
}

// snapshot returns the result if set.
func (s *sharedState[T]) snapshot() (T, error, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.res.value, s.res.err, s.res.set
}

// addContinuation registers f to run once the state transitions; f is
// then called inline by whichever goroutine sets the result. If the
// state is already set, f is called inline on the caller right away.
// Callers that want f's work on the Executor (as Then does) push it
// from inside f.
func (s *sharedState[T]) addContinuation(f func(T, error)) {
	s.mu.Lock()
	if s.res.set {
		v, err := s.res.value, s.res.err
		s.mu.Unlock()
		f(v, err)
		return
	}
	s.continuations = append(s.continuations, f)
	s.mu.Unlock()
}

// waitBoundedBackoff blocks on the state's condition variable using a
// bounded-backoff timed wait, starting around 100ms and capping near
// 1s, as a defence against missed wake-ups (spec.md §4.5). It returns
// once the state is set.
func (s *sharedState[T]) waitBoundedBackoff() {
	backoff := 100 * time.Millisecond
	const cap = time.Second

	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.res.set {
		timer := time.AfterFunc(backoff, func() {
			s.cond.Broadcast()
		})
		s.cond.Wait()
		timer.Stop()
		if backoff < cap {
			backoff *= 2
			if backoff > cap {
				backoff = cap
			}
		}
	}
}

// waitOnce performs a single bounded wait slice and reports whether the
// state became set, used by the reentrant drain loop in future.go so it
// can interleave tryRunOne attempts between short waits.
func (s *sharedState[T]) waitOnce(d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.res.set {
		return true
	}
	timer := time.AfterFunc(d, func() {
		s.cond.Broadcast()
	})
	s.cond.Wait()
	timer.Stop()
	return s.res.set
}
