package executor_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cinderforge/forge/internal/executor"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPushGet(t *testing.T) {
	exec := executor.New(4)
	defer exec.Join()

	fut, err := executor.Push(exec, func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}

	got, err := fut.Get()
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestPushCapturesError(t *testing.T) {
	exec := executor.New(2)
	defer exec.Join()

	wantErr := errors.New("boom")
	fut, err := executor.Push(exec, func() (int, error) {
		return 0, wantErr
	})
	if err != nil {
		t.Fatalf("Push returned error: %v", err)
	}

	_, gotErr := fut.Get()
	if !errors.Is(gotErr, wantErr) {
		t.Fatalf("got error %v, want %v", gotErr, wantErr)
	}
}

func TestThenChain(t *testing.T) {
	// Single worker chain of four doublings starting from 10 -> 160,
	// matching spec.md §8 scenario 6.
	exec := executor.New(1)
	defer exec.Join()

	fut, err := executor.Push(exec, func() (int, error) {
		return 10, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		fut = executor.Then(fut, func(v int, err error) (int, error) {
			if err != nil {
				return 0, err
			}
			return v * 2, nil
		})
	}

	got, err := fut.Get()
	if err != nil {
		t.Fatal(err)
	}
	if got != 160 {
		t.Fatalf("got %d, want 160", got)
	}
}

func TestThenSingleStep(t *testing.T) {
	exec := executor.New(1)
	defer exec.Join()

	fut, err := executor.Push(exec, func() (int, error) {
		v := 2
		v += 2
		return v, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	chained := executor.Then(fut, func(v int, err error) (int, error) {
		return v * 2, err
	})

	got, err := chained.Get()
	if err != nil {
		t.Fatal(err)
	}
	if got != 8 {
		t.Fatalf("got %d, want 8", got)
	}
}

func TestWhenAllCompletesAfterEvery(t *testing.T) {
	exec := executor.New(4)
	defer exec.Join()

	var futures []executor.Future[int]
	var counter int64
	for i := 0; i < 20; i++ {
		f, err := executor.Push(exec, func() (int, error) {
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&counter, 1)
			return 0, nil
		})
		if err != nil {
			t.Fatal(err)
		}
		futures = append(futures, f)
	}

	executor.WhenAll(exec, futures).Wait()

	if got := atomic.LoadInt64(&counter); got != 20 {
		t.Fatalf("counter = %d, want 20", got)
	}
}

func TestWhenAllEmpty(t *testing.T) {
	exec := executor.New(1)
	defer exec.Join()

	fut := executor.WhenAll(exec, []executor.Future[int]{})
	if !fut.IsSet() {
		t.Fatal("WhenAll over an empty slice should be already set")
	}
}

func TestWhenAnyReturnsCompletedIndex(t *testing.T) {
	exec := executor.New(4)
	defer exec.Join()

	block := make(chan struct{})
	slow, err := executor.Push(exec, func() (int, error) {
		<-block
		return 0, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	fast, err := executor.Push(exec, func() (int, error) {
		return 1, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	idx := executor.WaitAny(exec, []executor.Future[int]{slow, fast})
	if idx != 1 {
		t.Fatalf("got index %d, want 1 (the fast future)", idx)
	}
	close(block)
	slow.Wait()
}

func TestReentrantWaitSingleWorker(t *testing.T) {
	// A task on a single-worker pool that blocks on a Future produced
	// by the same pool must not deadlock (spec.md §8 property 6).
	exec := executor.New(1)
	defer exec.Join()

	inner, err := executor.Push(exec, func() (int, error) {
		return 7, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	outer, err := executor.Push(exec, func() (int, error) {
		v, err := inner.Get()
		if err != nil {
			return 0, err
		}
		return v * 10, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := outer.Get()
	if err != nil {
		t.Fatal(err)
	}
	if got != 70 {
		t.Fatalf("got %d, want 70", got)
	}
}

func TestHundredTasksOnSingleWorker(t *testing.T) {
	exec := executor.New(1)

	var counter int64
	for i := 0; i < 100; i++ {
		if _, err := executor.Push(exec, func() (struct{}, error) {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt64(&counter, 1)
			return struct{}{}, nil
		}); err != nil {
			t.Fatal(err)
		}
	}

	exec.Wait(executor.BlockIncoming)
	if got := atomic.LoadInt64(&counter); got != 100 {
		t.Fatalf("counter = %d, want 100", got)
	}
	exec.Join()
}

func TestPushAfterStopRejected(t *testing.T) {
	exec := executor.New(2)
	exec.Stop()
	exec.Join()

	_, err := executor.Push(exec, func() (int, error) { return 0, nil })
	if err == nil {
		t.Fatal("expected Push on a stopped executor to return an error")
	}
}

func TestWaitAfterStopReturnsImmediately(t *testing.T) {
	exec := executor.New(2)
	exec.Stop()

	done := make(chan struct{})
	go func() {
		exec.Wait(executor.BlockIncoming)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return promptly after Stop")
	}
	exec.Join()
}

func TestContinuationOrder(t *testing.T) {
	// A single worker means the queue each continuation lands on (via
	// Then's re-entry through the Executor) is strictly FIFO, so
	// registration order and execution order coincide: this isolates
	// the "continuations fire in registration order" guarantee
	// (spec.md §8 property 7) from work-stealing reordering, which
	// applies to unrelated submissions, not a single chain of
	// continuations off one Future.
	exec := executor.New(1)
	defer exec.Join()

	block := make(chan struct{})
	fut, err := executor.Push(exec, func() (int, error) {
		<-block
		return 1, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	results := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		executor.Then(fut, func(v int, err error) (int, error) {
			results <- i
			return i, err
		})
	}

	close(block)
	fut.Wait()

	got := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		got = append(got, <-results)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("continuations ran out of registration order: %v", got)
		}
	}
}
