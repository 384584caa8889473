// Package runner wires internal/graph, internal/task, internal/cache
// and internal/shell to internal/executor: it is where the executor
// actually gets exercised end to end, grounded on the teacher's
// file.SpokFile task-running flow (spokfile/file.go's Run/run pair).
package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/cinderforge/forge/internal/cache"
	"github.com/cinderforge/forge/internal/executor"
	"github.com/cinderforge/forge/internal/forgefile"
	"github.com/cinderforge/forge/internal/graph"
	"github.com/cinderforge/forge/internal/hash"
	"github.com/cinderforge/forge/internal/iostream"
	"github.com/cinderforge/forge/internal/logger"
	"github.com/cinderforge/forge/internal/settings"
	"github.com/cinderforge/forge/internal/shell"
	"github.com/cinderforge/forge/internal/task"
)

// Result is the outcome of running a single task.
type Result struct {
	Task    string
	Results shell.Results
	Skipped bool
}

// Results is a collection of per-task Results, in the dependency
// graph's Sort() order.
type Results []Result

// Ok reports whether every task in Results succeeded (or was skipped).
func (r Results) Ok() bool {
	for _, res := range r {
		if !res.Skipped && !res.Results.Ok() {
			return false
		}
	}
	return true
}

// Runner owns an Executor sized from Settings and runs a forgefile's
// task graph through it.
type Runner struct {
	exec    *executor.Executor
	shell   shell.Runner
	log     logger.Logger
	force   bool
	blake2b bool
}

// New builds a Runner, sizing its Executor from s.Workers (0 ->
// runtime.NumCPU(), matching the teacher's hash.Concurrent worker-count
// heuristic).
func New(s settings.Settings, log logger.Logger) *Runner {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		exec:  executor.New(workers, executor.WithName("forge-run")),
		shell: shell.NewIntegratedRunner(0),
		log:   log,
	}
}

// WithForce makes subsequent Run calls ignore the cache and always
// re-run every requested task.
func (r *Runner) WithForce(force bool) *Runner {
	r.force = force
	return r
}

// WithBlake2b switches the dependency digest to the blake2b+sha3
// variant instead of the default StrongFileHash composition.
func (r *Runner) WithBlake2b(b bool) *Runner {
	r.blake2b = b
	return r
}

// Stop joins the Runner's Executor, waiting for any in-flight workers
// to finish. Callers should defer this once a Runner is no longer
// needed.
func (r *Runner) Stop() {
	r.exec.Stop()
	r.exec.Join()
}

// runState is the per-Run bookkeeping schedule/runOne share: tasks are
// pushed to the executor lazily, the first time something depends on
// them, rather than all at once up front. futures is guarded by mu
// because schedule can be called concurrently from multiple in-flight
// tasks' own runOne calls.
type runState struct {
	mu      sync.Mutex
	futures map[string]executor.Future[Result]
}

// schedule returns the Future tracking name's task, pushing it to the
// executor the first time it's asked for and memoizing the result for
// every later caller (including a diamond dependency reached by more
// than one task).
func (r *Runner) schedule(ctx context.Context, f *forgefile.File, cached *cache.Cache, rs *runState, name string) (executor.Future[Result], error) {
	rs.mu.Lock()
	if fut, ok := rs.futures[name]; ok {
		rs.mu.Unlock()
		return fut, nil
	}

	t := f.Tasks[name]
	fut, err := executor.Push(r.exec, func() (Result, error) {
		return r.runOne(ctx, f, t, cached, rs)
	})
	if err != nil {
		rs.mu.Unlock()
		return executor.Future[Result]{}, err
	}
	rs.futures[name] = fut
	rs.mu.Unlock()
	return fut, nil
}

// Run builds the dependency graph for the requested tasks (to validate
// every name exists and the graph has no cycle), then schedules just the
// requested tasks. Each task's own runOne call is what schedules its
// named dependencies, on demand, the first time it needs one — not a
// level barrier computed up front. This is why a single worker
// (Settings.Workers == 1) can make forward progress at all: when a task
// calls Future.Get on a dependency that hasn't run yet, Get's reentrant
// drain loop steals that still-queued dependency and runs it on the
// calling goroutine itself, rather than blocking forever waiting for a
// second worker that doesn't exist.
func (r *Runner) Run(ctx context.Context, f *forgefile.File, requested ...string) (Results, error) {
	if err := f.ExpandGlobs(); err != nil {
		return nil, err
	}

	dag, err := r.buildGraph(f, requested)
	if err != nil {
		return nil, err
	}

	order, err := dag.Sort()
	if err != nil {
		return nil, err
	}

	cachePath := cache.Path(f.Dir)
	if !cache.Exists(cachePath) {
		r.log.Debug("cache at %s not found, initialising", cachePath)
		names := make([]string, 0, len(f.Tasks))
		for name := range f.Tasks {
			names = append(names, name)
		}
		if err := cache.Init(cachePath, names...); err != nil {
			return nil, err
		}
	}

	cached, err := cache.Load(cachePath)
	if err != nil {
		return nil, fmt.Errorf("could not load cache at %q: %w", cachePath, err)
	}

	rs := &runState{futures: make(map[string]executor.Future[Result])}

	topFutures := make([]executor.Future[Result], len(requested))
	for i, name := range requested {
		fut, err := r.schedule(ctx, f, cached, rs, name)
		if err != nil {
			return nil, fmt.Errorf("scheduling task %q: %w", name, err)
		}
		topFutures[i] = fut
	}

	var firstErr error
	for i, fut := range topFutures {
		if _, err := fut.Get(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("task %q: %w", requested[i], err)
		}
	}

	// By now every task reachable from requested has been scheduled (its
	// dependents' runOne calls needed its Future to proceed) and has
	// completed, so reading rs.futures under its own lock for the final
	// report is just bookkeeping, not a race with any still-running task.
	rs.mu.Lock()
	updateCache := true
	results := make(Results, 0, len(order))
	for _, name := range order {
		fut, ok := rs.futures[name]
		if !ok {
			continue // not reached: requested didn't transitively depend on it
		}
		res, _ := fut.Get()
		if len(f.Tasks[name].FileDependencies) == 0 && len(f.Tasks[name].GlobDependencies) == 0 {
			updateCache = false
		}
		results = append(results, res)
	}
	rs.mu.Unlock()

	if firstErr != nil {
		return results, firstErr
	}

	if !r.force && updateCache && results.Ok() {
		r.log.Debug("updating cache at %s", cachePath)
		if err := cached.Write(cachePath); err != nil {
			return results, err
		}
	}

	return results, nil
}

// runOne is pushed to the executor once per task: it schedules (and
// waits on) each named dependency's own Future on demand, then checks
// the cache and runs the task's commands on a miss. See Run's doc
// comment for why this on-demand scheduling, rather than a level
// barrier, is what makes single-worker runs progress at all.
func (r *Runner) runOne(ctx context.Context, f *forgefile.File, t task.Task, cached *cache.Cache, rs *runState) (Result, error) {
	for _, dep := range t.NamedDependencies {
		fut, err := r.schedule(ctx, f, cached, rs, dep)
		if err != nil {
			return Result{}, fmt.Errorf("scheduling dependency %q: %w", dep, err)
		}
		depResult, err := fut.Get()
		if err != nil {
			return Result{}, fmt.Errorf("dependency %q: %w", dep, err)
		}
		if !depResult.Skipped && !depResult.Results.Ok() {
			return Result{}, fmt.Errorf("dependency %q failed", dep)
		}
	}

	toHash := f.ResolvedFileDependencies(t)
	r.log.Debug("task %s depends on %d files", t.Name, len(toHash))

	var hasher interface{ Hash([]string) (string, error) }
	if r.force {
		hasher = hash.Always{}
	} else {
		hasher = hash.FileSet{Blake2b: r.blake2b}
	}

	current, err := hasher.Hash(toHash)
	if err != nil {
		return Result{}, err
	}

	previous, ok := cached.Get(t.Name)
	if !ok {
		return Result{}, fmt.Errorf("task %q not present in cache", t.Name)
	}

	r.log.Debug("task %s current digest %.15s cached digest %.15s", t.Name, current, previous)

	if !r.force && previous != "" && current == previous {
		return Result{Task: t.Name, Skipped: true}, nil
	}

	cached.Put(t.Name, current)

	shellResults, err := t.Run(r.shell, iostream.OS(), f.Env(), f.Dir)
	if err != nil {
		return Result{Task: t.Name, Results: shellResults}, err
	}
	return Result{Task: t.Name, Results: shellResults}, nil
}

// buildGraph builds the dependency graph for requested, validating
// that every requested task and every transitive dependency exists.
func (r *Runner) buildGraph(f *forgefile.File, requested []string) (*graph.Graph, error) {
	r.log.Debug("building dependency graph for requested tasks: %v", requested)
	dag := graph.New()

	var visit func(name string) error
	visit = func(name string) error {
		t, ok := f.Tasks[name]
		if !ok {
			err := fmt.Errorf("forgefile has no task %q", name)
			if closest := f.FindClosestTask(name); closest != "" {
				err = fmt.Errorf("forgefile has no task %q, did you mean %q?", name, closest)
			}
			return err
		}
		dag.AddVertex(name)
		for _, dep := range t.NamedDependencies {
			if _, ok := f.Tasks[dep]; !ok {
				err := fmt.Errorf("task %q declares a dependency on task %q, which does not exist", name, dep)
				if closest := f.FindClosestTask(dep); closest != "" {
					err = fmt.Errorf("task %q declares a dependency on task %q, which does not exist, did you mean %q?", name, dep, closest)
				}
				return err
			}
			if !dag.ContainsVertex(dep) {
				if err := visit(dep); err != nil {
					return err
				}
			}
			if err := dag.AddEdge(dep, name); err != nil {
				return err
			}
		}
		return nil
	}

	for _, name := range requested {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return dag, nil
}

// CachePath returns the on-disk cache path for a forgefile rooted at
// dir.
func CachePath(dir string) string {
	return cache.Path(dir)
}
