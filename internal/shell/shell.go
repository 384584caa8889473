// Package shell implements forge's command running functionality.
//
// We use https://github.com/mvdan/sh so forge is entirely self
// contained and does not need an external shell at all to run task
// commands.
//
// This implementation is based on a similar one in
// https://github.com/go-task/task at internal/execext/exec.go.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cinderforge/forge/internal/iostream"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// DefaultTimeout is the grace period an exec'd subprocess gets, once the
// command's context is cancelled, between the interrupt signal and the
// kill signal. It does not limit how long a command may run, and tasks
// have no setting of their own for it.
const DefaultTimeout = 15 * time.Second

// Runner is an interface representing something capable of running
// shell commands and returning Results.
type Runner interface {
	// Run runs cmd belonging to task with environment variables set and
	// dir as its working directory, respecting ctx's cancellation.
	Run(ctx context.Context, cmd string, stream iostream.IOStream, task string, env []string, dir string) (Result, error)
}

// Result holds the result of running a shell command.
type Result struct {
	Cmd    string `json:"cmd"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Status int    `json:"status"`
}

// Ok returns whether the result was successful.
func (r Result) Ok() bool {
	return r.Status == 0
}

// Results is a collection of shell results.
type Results []Result

// Ok reports whether every result in the collection was ok.
func (r Results) Ok() bool {
	for _, result := range r {
		if !result.Ok() {
			return false
		}
	}
	return true
}

// IntegratedRunner implements Runner using a 100% Go implementation of
// a shell interpreter — the most cross-compatible runner possible,
// since it does not depend on any external shell binary being present.
type IntegratedRunner struct {
	parser  *syntax.Parser
	timeout time.Duration
}

// NewIntegratedRunner returns a shell runner with no external
// dependency, using timeout as the interrupt-to-kill grace period for
// any exec'd subprocess (0 means DefaultTimeout).
func NewIntegratedRunner(timeout time.Duration) IntegratedRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return IntegratedRunner{
		parser:  syntax.NewParser(),
		timeout: timeout,
	}
}

// Run implements Runner for an IntegratedRunner. Command stdout and
// stderr are collected into the returned Result and also multiplexed to
// the writers in stream, so output can be captured and displayed at the
// same time. dir sets the command's working directory; an empty dir
// keeps the interpreter's own default (the process's current
// directory).
func (i IntegratedRunner) Run(ctx context.Context, cmd string, stream iostream.IOStream, task string, env []string, dir string) (Result, error) {
	prog, err := i.parser.Parse(strings.NewReader(cmd), "")
	if err != nil {
		return Result{}, fmt.Errorf("command %q in task %q not valid shell syntax: %w", cmd, task, err)
	}

	// os.Environ() is appended so that env vars explicitly set on the
	// task are layered on top of, not instead of, the process
	// environment.
	env = append(os.Environ(), env...)

	var result Result
	result.Cmd = cmd
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	stdoutMultiWriter := io.MultiWriter(stdout, stream.Stdout)
	stderrMultiWriter := io.MultiWriter(stderr, stream.Stderr)

	execHandler := func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return interp.DefaultExecHandler(i.timeout)
	}

	runner, err := interp.New(
		interp.Params("-e"),
		interp.Env(expand.ListEnviron(env...)),
		interp.ExecHandlers(execHandler),
		interp.OpenHandler(interp.DefaultOpenHandler()),
		interp.StdIO(nil, stdoutMultiWriter, stderrMultiWriter),
		interp.Dir(dir),
	)
	if err != nil {
		return Result{}, err
	}

	err = runner.Run(ctx, prog)
	if err != nil {
		var status interp.ExitStatus
		if !errors.As(err, &status) {
			return Result{}, err
		}
		result.Status = int(status)
	}

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	return result, nil
}
