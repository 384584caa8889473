// Package builtins implements the functions a forgefile's global
// variable assignments may call, and exports a lookup so other
// packages can resolve a builtin by name without depending on the
// package's internal registry shape.
package builtins

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cinderforge/forge/internal/iostream"
	"github.com/cinderforge/forge/internal/shell"
)

// Builtin is a forgefile builtin function.
type Builtin func(...string) (string, error)

// builtins maps a builtin's forgefile name to its implementation.
// Callers reach this through Get below.
var builtins = map[string]Builtin{
	"join": join,
	"exec": execute,
}

// join joins filepath parts with the OS-specific separator.
func join(parts ...string) (string, error) {
	return filepath.Join(parts...), nil
}

// execute runs an external command through forge's integrated shell
// interpreter and returns its trimmed stdout. The command's stderr, on
// a non-zero exit, is folded into the returned error. Reusing
// internal/shell here (rather than os/exec or a standalone argument
// splitter) means a forgefile's exec("...") builtin parses and runs
// exactly the same shell grammar a task's own commands do.
func execute(command ...string) (string, error) {
	if len(command) != 1 {
		return "", errors.New("exec takes the shell command as a single string argument")
	}

	runner := shell.NewIntegratedRunner(0)
	result, err := runner.Run(context.Background(), command[0], iostream.Null(), "builtin:exec", nil, "")
	if err != nil {
		return "", err
	}
	if !result.Ok() {
		return "", fmt.Errorf("command %q exited with status %d\nstderr: %s", command[0], result.Status, result.Stderr)
	}
	return strings.TrimSpace(result.Stdout), nil
}

// Get looks up a builtin by name.
func Get(name string) (Builtin, bool) {
	fn, ok := builtins[name]
	return fn, ok
}
