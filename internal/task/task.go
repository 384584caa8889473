// Package task turns a parsed forgefile AST task node into a concrete,
// runnable Task: expanding glob dependencies/outputs, interpolating
// global variables into commands, and checking any declared version
// constraints.
package task

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cinderforge/forge/internal/forgefile/ast"
	"github.com/cinderforge/forge/internal/hash"
	"github.com/cinderforge/forge/internal/iostream"
	"github.com/cinderforge/forge/internal/shell"
	"github.com/cinderforge/forge/internal/version"
)

// Task represents a single, concrete forge task.
type Task struct {
	Doc               string   // the task's docstring
	Name              string   // task name
	NamedDependencies []string // other tasks this one depends on, by name
	FileDependencies  []string // literal (non-glob) filepaths this task depends on, joined onto root
	GlobDependencies  []string // glob patterns not yet expanded, kept for a shared Globs cache
	RequiresGo        string   // declared "go<range>" requirement, e.g. "go>=1.21", empty if absent
	Commands          []string // shell commands to run, in order
	NamedOutputs      []string // other outputs identified by global variable name
	FileOutputs       []string // literal (non-glob) filepaths this task produces, joined onto root
	GlobOutputs       []string // glob patterns not yet expanded
}

// New parses a task AST node into a concrete Task. root is the
// absolute directory the forgefile lives in, used as the base for glob
// expansion; vars is the forgefile's already-evaluated global
// variables, used to interpolate `{{.NAME}}`-style template
// placeholders into the task's commands.
func New(t ast.Task, root string, vars map[string]string) (Task, error) {
	var (
		fileDeps, globDeps       []string
		namedDeps                []string
		commands                 []string
		fileOutputs, globOutputs []string
		namedOutputs             []string
	)

	for _, dep := range t.Dependencies {
		switch dep.Type() {
		case ast.NodeString:
			if strings.ContainsAny(dep.Literal(), "*?[") {
				globDeps = append(globDeps, dep.Literal())
			} else {
				fileDeps = append(fileDeps, filepath.Join(root, dep.Literal()))
			}
		case ast.NodeIdent:
			namedDeps = append(namedDeps, dep.Literal())
		default:
			return Task{}, fmt.Errorf("task %s: unknown dependency node: %s", t.Name.Name, dep)
		}
	}

	for _, cmd := range t.Commands {
		expanded, err := expandVars(cmd.Command, vars)
		if err != nil {
			return Task{}, fmt.Errorf("task %s: %w", t.Name.Name, err)
		}
		commands = append(commands, expanded)
	}

	requiresGo := t.Requires.Text
	if requiresGo != "" {
		if err := checkGoRequirement(t.Name.Name, requiresGo); err != nil {
			return Task{}, err
		}
	}

	for _, out := range t.Outputs {
		switch out.Type() {
		case ast.NodeString:
			if strings.ContainsAny(out.Literal(), "*?[") {
				globOutputs = append(globOutputs, out.Literal())
			} else {
				fileOutputs = append(fileOutputs, filepath.Join(root, out.Literal()))
			}
		case ast.NodeIdent:
			namedOutputs = append(namedOutputs, out.Literal())
		default:
			return Task{}, fmt.Errorf("task %s: unknown output node: %s", t.Name.Name, out)
		}
	}

	return Task{
		Doc:               strings.TrimSpace(t.Docstring.Text),
		Name:              t.Name.Name,
		NamedDependencies: namedDeps,
		FileDependencies:  fileDeps,
		GlobDependencies:  globDeps,
		RequiresGo:        requiresGo,
		Commands:          commands,
		NamedOutputs:      namedOutputs,
		FileOutputs:       fileOutputs,
		GlobOutputs:       globOutputs,
	}, nil
}

// checkGoRequirement validates a task's declared requires("go<range>")
// clause (e.g. "go>=1.21") against the Go toolchain forge itself is
// currently running under, using forge's own version range grammar
// rather than the go.mod/toolchain directive machinery.
func checkGoRequirement(taskName, requires string) error {
	expr, ok := strings.CutPrefix(requires, "go")
	if !ok {
		return fmt.Errorf("task %s: requires clause %q must start with \"go\"", taskName, requires)
	}

	rng, err := version.ParseRange(expr)
	if err != nil {
		return fmt.Errorf("task %s: invalid go version requirement %q: %w", taskName, requires, err)
	}

	running, err := version.Parse(strings.TrimPrefix(runtime.Version(), "go"))
	if err != nil {
		return fmt.Errorf("task %s: could not parse running go version %q: %w", taskName, runtime.Version(), err)
	}

	if !rng.Contains(running) {
		return fmt.Errorf("task %s requires %s, running %s", taskName, requires, runtime.Version())
	}
	return nil
}

// expandVars renders a command string as a text/template, substituting
// the forgefile's global variables.
func expandVars(command string, vars map[string]string) (string, error) {
	tmpl, err := template.New("command").Parse(command)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := tmpl.Execute(&out, vars); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Hash folds every one of the task's expanded file dependencies into a
// single digest via internal/hash.FileSet, replacing the teacher's
// plain SHA-1 sum (task.HashFiles) with the framed, multi-digest
// StrongFileHash composition.
func (t Task) Hash(blake2b bool) (string, error) {
	return hash.FileSet{Blake2b: blake2b}.Hash(t.FileDependencies)
}

// Run executes every one of the task's commands in order through
// runner, in dir, stopping at the first failure, and returns every
// result gathered so far.
func (t Task) Run(runner shell.Runner, stream iostream.IOStream, env []string, dir string) (shell.Results, error) {
	results := make(shell.Results, 0, len(t.Commands))
	for _, cmd := range t.Commands {
		result, err := runner.Run(context.Background(), cmd, stream, t.Name, env, dir)
		if err != nil {
			return results, fmt.Errorf("task %s: %w", t.Name, err)
		}
		results = append(results, result)
		if !result.Ok() {
			break
		}
	}
	return results, nil
}

// ExpandGlobs expands pattern from root and returns its absolute
// matches, used for both dependency and output glob patterns.
func ExpandGlobs(root, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, fmt.Errorf("could not expand glob pattern %q: %w", pattern, err)
	}
	abs := make([]string, 0, len(matches))
	for _, m := range matches {
		joined := filepath.Join(root, m)
		path, err := filepath.Abs(joined)
		if err != nil {
			return nil, fmt.Errorf("could not resolve %q to an absolute path: %w", joined, err)
		}
		abs = append(abs, path)
	}
	return abs, nil
}

// ByName sorts a slice of Task alphabetically by name.
type ByName []Task

func (a ByName) Len() int           { return len(a) }
func (a ByName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ByName) Less(i, j int) bool { return a[i].Name < a[j].Name }
